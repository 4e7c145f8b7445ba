package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
)

// FileStorage keeps the flags in a small JSON file.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage stores flags at path, creating parent directories on save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load returns an empty map when the file does not exist yet.
func (f *FileStorage) Load(_ context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// Put sets or removes one flag and replaces the file atomically.
func (f *FileStorage) Put(_ context.Context, flag Flag, v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	flags, err := f.read()
	if err != nil {
		return err
	}
	if v {
		flags[string(flag)] = "true"
	} else {
		delete(flags, string(flag))
	}
	return f.write(flags)
}

func (f *FileStorage) read() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if len(b) == 0 {
		return out, nil
	}
	return out, json.Unmarshal(b, &out)
}

func (f *FileStorage) write(flags map[string]string) error {
	b, err := json.MarshalIndent(flags, "", " ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// RedisStorage keeps the flags in one Redis hash.
type RedisStorage struct {
	client *redis.Client
	key    string
}

// NewRedisStorage stores flags in the hash at key.
func NewRedisStorage(client *redis.Client, key string) *RedisStorage {
	if key == "" {
		key = "campuslink:session"
	}
	return &RedisStorage{client: client, key: key}
}

// Load reads the whole hash.
func (r *RedisStorage) Load(ctx context.Context) (map[string]string, error) {
	return r.client.HGetAll(ctx, r.key).Result()
}

// Put writes only the field for flag: HSET when true, HDEL when false.
func (r *RedisStorage) Put(ctx context.Context, flag Flag, v bool) error {
	if v {
		return r.client.HSet(ctx, r.key, string(flag), "true").Err()
	}
	return r.client.HDel(ctx, r.key, string(flag)).Err()
}
