package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

type Entry struct {
	Body     []byte    `json:"body"`
	Status   int       `json:"status"`
	StoredAt time.Time `json:"stored_at"`
}

// Storage keeps entries past their freshness window so they can be served stale.
// Implementations must be safe for concurrent use.
type Storage interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, entry *Entry) error
}

type MemoryStorage struct {
	items *gocache.Cache
}

// NewMemoryStorage keeps entries for retention, after which they can no longer
// be served even as stale.
func NewMemoryStorage(retention time.Duration) *MemoryStorage {
	return &MemoryStorage{items: gocache.New(retention, retention/2)}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (*Entry, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	entry := *v.(*Entry)
	return &entry, true, nil
}

func (s *MemoryStorage) Set(_ context.Context, key string, entry *Entry) error {
	stored := *entry
	s.items.SetDefault(key, &stored)
	return nil
}

func (s *MemoryStorage) Len() int {
	return s.items.ItemCount()
}

type RedisStorage struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

func NewRedisStorage(ctx context.Context, redisURL, prefix string, retention time.Duration) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStorage{client: client, prefix: prefix, retention: retention}, nil
}

// redisKey hashes the signature so provider keys in query strings never land in Redis.
func (s *RedisStorage) redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return s.prefix + hex.EncodeToString(sum[:])
}

func (s *RedisStorage) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return &entry, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.redisKey(key), data, s.retention).Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
