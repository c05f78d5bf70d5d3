package export

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"redis_backup/src/model"
	"redis_backup/src/storage"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Store is the read side of the key-value store the exporter needs.
// storage.RedisStorage implements it.
type Store interface {
	ScanKeys(ctx context.Context, match string, count int64) model.KeyIterator
	Type(ctx context.Context, key string) (model.KeyType, error)
	GetString(ctx context.Context, key string) (string, error)
	GetHash(ctx context.Context, key string) (map[string]string, error)
	GetList(ctx context.Context, key string) ([]string, error)
	GetSet(ctx context.Context, key string) ([]string, error)
	GetSortedSet(ctx context.Context, key string) ([]model.ScoredMember, error)
}

// Result summarises a finished export
type Result struct {
	Path        string
	Keys        int
	Vanished    int
	Unsupported int
	Binary      int
	Elapsed     time.Duration
}

// Exporter copies one logical database into a Snapshot and writes it out
type Exporter struct {
	store      Store
	config     model.ExportConfig
	logger     zerolog.Logger
	newBackOff func() backoff.BackOff
}

// Connect opens the store described by cfg. Any failure is a connect stage error wrapping ErrConnection.
func Connect(ctx context.Context, cfg model.RedisConfig) (*storage.RedisStorage, error) {
	store, err := storage.NewRedisStorage(ctx, cfg)
	if err != nil {
		return nil, &StageError{Stage: StageConnect, Err: fmt.Errorf("%w: %w", ErrConnection, err)}
	}
	return store, nil
}

func NewExporter(store Store, config model.ExportConfig, logger zerolog.Logger) *Exporter {
	return &Exporter{
		store:      store,
		config:     config,
		logger:     logger,
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Export scans the store and writes the snapshot to the configured output path
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	start := time.Now()

	snap, err := e.Scan(ctx)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().Str("path", e.config.Output).Int("keys", snap.Len()).Msg("Writing snapshot")
	if err := WriteFile(e.config.Output, snap, e.config.Indent); err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}

	return &Result{
		Path:        e.config.Output,
		Keys:        snap.Len(),
		Vanished:    snap.Skipped(SkipVanished),
		Unsupported: snap.Skipped(SkipUnsupported),
		Binary:      snap.Skipped(SkipBinary),
		Elapsed:     time.Since(start),
	}, nil
}

// Scan drains the key iterator, reading every key with the command that matches its type
func (e *Exporter) Scan(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot()

	it := e.store.ScanKeys(ctx, e.config.Match, e.config.ScanCount)
	for it.Next(ctx) {
		key := it.Val()

		value, err := e.exportKey(ctx, key)
		switch {
		case err == nil && !isText(key, value):
			e.logger.Warn().Str("key", fmt.Sprintf("%q", key)).Msg("Skipping key with binary name or content")
			snap.Skip(SkipBinary)
		case err == nil:
			snap.Put(key, value)
		case errors.Is(err, model.ErrKeyNotFound):
			e.logger.Debug().Str("key", key).Msg("Key vanished during scan, skipping")
			snap.Skip(SkipVanished)
		case errors.Is(err, ErrUnsupportedType):
			e.logger.Warn().Str("key", key).Err(err).Msg("Skipping key")
			snap.Skip(SkipUnsupported)
		default:
			return nil, &StageError{Stage: StageScan, Err: err}
		}
	}
	if err := it.Err(); err != nil {
		return nil, &StageError{Stage: StageScan, Err: fmt.Errorf("failed to scan keys: %w", err)}
	}

	return snap, nil
}

// exportKey classifies key and reads its value
func (e *Exporter) exportKey(ctx context.Context, key string) (model.Value, error) {
	keyType, err := retry(ctx, e, key, func() (model.KeyType, error) {
		return e.store.Type(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	if keyType == model.TypeNone {
		return nil, model.ErrKeyNotFound
	}
	if !keyType.Supported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, keyType)
	}

	return e.readValue(ctx, key, keyType)
}

func (e *Exporter) readValue(ctx context.Context, key string, keyType model.KeyType) (model.Value, error) {
	switch keyType {
	case model.TypeString:
		return retry(ctx, e, key, func() (model.Value, error) {
			s, err := e.store.GetString(ctx, key)
			return model.StringValue(s), err
		})
	case model.TypeHash:
		return retry(ctx, e, key, func() (model.Value, error) {
			h, err := e.store.GetHash(ctx, key)
			if h == nil {
				h = map[string]string{}
			}
			return model.HashValue(h), err
		})
	case model.TypeList:
		return retry(ctx, e, key, func() (model.Value, error) {
			l, err := e.store.GetList(ctx, key)
			return model.ListValue(nonNil(l)), err
		})
	case model.TypeSet:
		return retry(ctx, e, key, func() (model.Value, error) {
			s, err := e.store.GetSet(ctx, key)
			return model.SetValue(nonNil(s)), err
		})
	case model.TypeSortedSet:
		return retry(ctx, e, key, func() (model.Value, error) {
			z, err := e.store.GetSortedSet(ctx, key)
			if z == nil {
				z = []model.ScoredMember{}
			}
			return model.SortedSetValue(z), err
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, keyType)
	}
}

// retry runs op up to ReadRetries extra times with exponential backoff.
// ErrKeyNotFound is final and never retried.
func retry[T any](ctx context.Context, e *Exporter, key string, op func() (T, error)) (T, error) {
	b := backoff.WithContext(backoff.WithMaxRetries(e.newBackOff(), uint64(max(e.config.ReadRetries, 0))), ctx)

	attempt := func() (T, error) {
		v, err := op()
		if errors.Is(err, model.ErrKeyNotFound) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		e.logger.Warn().Str("key", key).Err(err).Dur("retry_in", wait).Msg("Read failed, retrying")
	}

	return backoff.RetryNotifyWithData(attempt, b, notify)
}

// isText reports whether key and every string in value are valid UTF-8.
// JSON encoding would replace invalid bytes with U+FFFD and merge distinct keys.
func isText(key string, value model.Value) bool {
	if !utf8.ValidString(key) {
		return false
	}
	switch v := value.(type) {
	case model.StringValue:
		return utf8.ValidString(string(v))
	case model.HashValue:
		for field, val := range v {
			if !utf8.ValidString(field) || !utf8.ValidString(val) {
				return false
			}
		}
	case model.ListValue:
		return allValid(v)
	case model.SetValue:
		return allValid(v)
	case model.SortedSetValue:
		for _, m := range v {
			if !utf8.ValidString(m.Member) {
				return false
			}
		}
	}
	return true
}

func allValid(items []string) bool {
	for _, s := range items {
		if !utf8.ValidString(s) {
			return false
		}
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
