package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Record is one import attempt's outcome, kept for the surrounding app's
// history/diagnostics screens. Transactions themselves are owned by the
// external transaction store, not recorded here.
type Record struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"` // "success" or "failed"
	FailureKind string    `json:"failure_kind,omitempty"`
	Store       string    `json:"store,omitempty"`
	ItemCount   int       `json:"item_count"`
	Total       float64   `json:"total"`
	ArchiveKey  string    `json:"archive_key,omitempty"`
}

// RedisStore persists import records in Redis with a bounded TTL.
type RedisStore struct {
	client *redis.Client
	keyNS  string
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisStore{client: c, keyNS: "import", ttl: ttl}, nil
}

func (s *RedisStore) key(id string) string { return fmt.Sprintf("%s:%s", s.keyNS, id) }

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(rec.ID), b, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (Record, bool, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
