package store

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// FileKV stores one file per key under Dir. Each write is atomic on its own;
// SetMany is not atomic across keys.
type FileKV struct {
	Dir string

	mu sync.Mutex
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileKV{Dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	// Keys contain dashes and letters today, but escape anyway so a key can never
	// walk out of Dir.
	return filepath.Join(f.Dir, url.PathEscape(key)+".json")
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

func (f *FileKV) Set(ctx context.Context, key, value string) error {
	return f.SetMany(ctx, map[string]string{key: value})
}

func (f *FileKV) SetMany(ctx context.Context, entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := atomic.WriteFile(f.path(k), bytes.NewReader([]byte(v))); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileKV) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		if err := os.Remove(f.path(k)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (f *FileKV) Close() error { return nil }
