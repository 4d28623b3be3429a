package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// KV is the single local key-value store standing in for a database.
// Values are opaque text (JSON in practice).
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all entries. Backends that support it apply the writes atomically.
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendSQLite:
		return BackendSQLite, nil
	case BackendFile:
		return BackendFile, nil
	case BackendMemory:
		return BackendMemory, nil
	case BackendRedis:
		return BackendRedis, nil
	default:
		return "", fmt.Errorf("%w: %q (expected sqlite|file|memory|redis)", ErrUnknownBackend, s)
	}
}

type KVOptions struct {
	Backend  Backend
	Dir      string
	RedisURL string
}

// OpenKV opens the configured backend. Dir is required for sqlite and file.
func OpenKV(ctx context.Context, opts KVOptions) (KV, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, errors.New("open kv: sqlite backend needs a data dir")
		}
		return OpenSQLiteKV(ctx, filepath.Join(opts.Dir, sqliteFileName))
	case BackendFile:
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, errors.New("open kv: file backend needs a data dir")
		}
		return NewFileKV(filepath.Join(opts.Dir, "kv"))
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendRedis:
		return OpenRedisKV(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
