package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"redis_backup/src/model"

	"github.com/redis/go-redis/v9"
)

// RedisStorage is a read-only view of one logical Redis database
type RedisStorage struct {
	client *redis.Client
	addr   string
	db     int
}

// Options builds go-redis client options from the configuration.
// A non-empty URL wins over the host, port and db fields. Username and
// password, when set, override the credentials embedded in the URL.
func Options(cfg model.RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		if cfg.Username != "" {
			opts.Username = cfg.Username
		}
		if cfg.Password != "" {
			opts.Password = cfg.Password
		}
		if cfg.DialTimeout > 0 {
			opts.DialTimeout = cfg.DialTimeout
		}
		opts.MaxRetries = -1
		return opts, nil
	}

	return &redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		DB:          cfg.DB,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
		// a failed connect is fatal, no point retrying the dial
		MaxRetries: -1,
	}, nil
}

// NewRedisStorage connects to Redis and verifies the connection with PING
func NewRedisStorage(ctx context.Context, cfg model.RedisConfig) (*RedisStorage, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return &RedisStorage{
		client: client,
		addr:   opts.Addr,
		db:     opts.DB,
	}, nil
}

// Addr returns the host:port the storage is connected to
func (r *RedisStorage) Addr() string {
	return r.addr
}

// DB returns the selected logical database index
func (r *RedisStorage) DB() int {
	return r.db
}

// ScanKeys iterates the keyspace with SCAN. count is only a hint to the server.
func (r *RedisStorage) ScanKeys(ctx context.Context, match string, count int64) model.KeyIterator {
	return r.client.Scan(ctx, 0, match, count).Iterator()
}

// Type returns the TYPE of a key; "none" when it does not exist
func (r *RedisStorage) Type(ctx context.Context, key string) (model.KeyType, error) {
	t, err := r.client.Type(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get type of %q: %w", key, err)
	}
	return model.KeyType(t), nil
}

// GetString reads a string key
func (r *RedisStorage) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get %q: %w", key, err)
	}
	return val, nil
}

// GetHash reads every field of a hash key
func (r *RedisStorage) GetHash(ctx context.Context, key string) (map[string]string, error) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read hash %q: %w", key, err)
	}
	return fields, nil
}

// GetList reads a whole list, first to last element
func (r *RedisStorage) GetList(ctx context.Context, key string) ([]string, error) {
	items, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read list %q: %w", key, err)
	}
	return items, nil
}

// GetSet reads every member of a set
func (r *RedisStorage) GetSet(ctx context.Context, key string) ([]string, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read set %q: %w", key, err)
	}
	return members, nil
}

// GetSortedSet reads every member of a sorted set with its score, lowest score first
func (r *RedisStorage) GetSortedSet(ctx context.Context, key string) ([]model.ScoredMember, error) {
	zs, err := r.client.ZRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sorted set %q: %w", key, err)
	}

	members := make([]model.ScoredMember, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			member = fmt.Sprint(z.Member)
		}
		members = append(members, model.ScoredMember{Member: member, Score: z.Score})
	}
	return members, nil
}

// Close closes the Redis connection
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

