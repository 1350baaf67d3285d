package credential

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// DefaultRedisKey is where the credential lives unless overridden
const DefaultRedisKey = "payportal:credential"

// RedisStore keeps the credential in Redis with a TTL matching its expiry
type RedisStore struct {
	rdb *redis.Client
	key string
	now func() time.Time
}

// NewRedisStore creates a store on rdb under key (DefaultRedisKey when empty)
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key, now: time.Now}
}

func (s *RedisStore) Load(ctx context.Context) (*Credential, error) {
	val, err := s.rdb.Get(ctx, s.key).Result() // Get value from Redis
	if err == redis.Nil {
		return nil, nil // Key does not exist
	} else if err != nil {
		return nil, err // Other Redis error
	}
	var c Credential
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return nil, err
	}
	if c.Expired(s.now()) {
		return nil, nil
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c Credential) error {
	b, err := json.Marshal(c) // Marshal value to JSON
	if err != nil {
		return err
	}
	ttl := c.TTL(s.now()) // Zero keeps the key until Clear
	if ttl < 0 {
		return s.Clear(ctx)
	}
	return s.rdb.Set(ctx, s.key, b, ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
