package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec     Record
	expires time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[key]
	if !ok || !s.now().Before(entry.expires) {
		delete(s.records, key)
		return Record{}, ErrRecordNotFound
	}
	return entry.rec, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = memoryEntry{rec: rec, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Attempt(_ context.Context, key string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[key]
	if !ok || !s.now().Before(entry.expires) {
		delete(s.records, key)
		return Record{}, ErrRecordNotFound
	}
	entry.rec.Attempts++
	s.records[key] = entry
	return entry.rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return ErrRecordNotFound
	}
	delete(s.records, key)
	return nil
}

// RedisStore keeps records as JSON strings that expire with the code.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore uses an existing client; keys are namespaced under prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ats:otp:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode otp record: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, raw, ttl).Err()
}

// attemptScript bumps the attempt counter inside the stored JSON and returns
// the new record, keeping the key's remaining TTL.
var attemptScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return false
end
local rec = cjson.decode(raw)
rec.attempts = (tonumber(rec.attempts) or 0) + 1
raw = cjson.encode(rec)
redis.call('SET', KEYS[1], raw, 'KEEPTTL')
return raw
`)

func (s *RedisStore) Attempt(ctx context.Context, key string) (Record, error) {
	raw, err := attemptScript.Run(ctx, s.client, []string{s.prefix + key}).Text()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, fmt.Errorf("decode otp record: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
