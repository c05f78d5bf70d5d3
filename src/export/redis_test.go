package export

import (
	"context"
	"math"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"redis_backup/src/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("greeting", "v"))
	mr.HSet("user:1", "a", "1", "b", "2")
	_, err := mr.Push("queue", "x", "y", "z")
	require.NoError(t, err)
	_, err = mr.SetAdd("tags", "p", "q")
	require.NoError(t, err)
	_, err = mr.ZAdd("board", 2.5, "m2")
	require.NoError(t, err)
	_, err = mr.ZAdd("board", 1.0, "m1")
	require.NoError(t, err)
	_, err = mr.XAdd("events", "*", []string{"kind", "login"})
	require.NoError(t, err)

	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	cfg := model.DefaultRedisConfig()
	cfg.Host = host
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	store, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	exportCfg := model.DefaultExportConfig()
	exportCfg.Output = filepath.Join(t.TempDir(), "backup_redis.json")
	exportCfg.ScanCount = 2

	res, err := NewExporter(store, exportCfg, zerolog.Nop()).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Keys)
	assert.Equal(t, 1, res.Unsupported)

	out := readOutput(t, exportCfg.Output)
	assert.Len(t, out, 5)
	assert.NotContains(t, out, "events")
	assert.Equal(t, []any{"x", "y", "z"}, out["queue"])
	assert.ElementsMatch(t, []any{"p", "q"}, out["tags"])
	assert.Equal(t, []any{[]any{"m1", 1.0}, []any{"m2", 2.5}}, out["board"])
}

func TestExportInfiniteScores(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("greeting", "v"))
	_, err := mr.ZAdd("board", math.Inf(1), "top")
	require.NoError(t, err)
	_, err = mr.ZAdd("board", math.Inf(-1), "bottom")
	require.NoError(t, err)
	_, err = mr.ZAdd("board", 3, "mid")
	require.NoError(t, err)

	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	cfg := model.DefaultRedisConfig()
	cfg.Host = host
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	store, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	exportCfg := model.DefaultExportConfig()
	exportCfg.Output = filepath.Join(t.TempDir(), "backup_redis.json")

	res, err := NewExporter(store, exportCfg, zerolog.Nop()).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Keys)

	out := readOutput(t, exportCfg.Output)
	assert.Equal(t, "v", out["greeting"])
	assert.Equal(t, []any{[]any{"bottom", "-inf"}, []any{"mid", 3.0}, []any{"top", "inf"}}, out["board"])
}
