package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/asadullah4bls/evalai/internal/logging"
	"github.com/asadullah4bls/evalai/internal/quiz"
)

const (
	redisQuizPrefix    = "evalai:quiz:"
	redisAttemptPrefix = "evalai:attempt:"
	redisLockPrefix    = "evalai:lock:"

	// DefaultClaimTTL bounds how long a crashed holder can block a key.
	DefaultClaimTTL = 5 * time.Minute
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps artifacts and attempts in Redis. Creation uses SETNX so
// a second writer for the same key always loses.
type RedisStore struct {
	rdb      redis.UniversalClient
	log      *logging.Logger
	claimTTL time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb redis.UniversalClient, log *logging.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, log: logging.OrNop(log), claimTTL: DefaultClaimTTL}
}

// DialRedis connects to addr and pings it.
func DialRedis(ctx context.Context, addr string, log *logging.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(rdb, log), nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) (*quiz.Artifact, error) {
	raw, err := s.rdb.Get(ctx, redisQuizPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("quiz %s: %w", key, quiz.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get quiz %s: %w", key, err)
	}
	a, err := quiz.DecodeArtifact(raw)
	if err != nil {
		return nil, fmt.Errorf("quiz %s: %w", key, err)
	}
	return a, nil
}

func (s *RedisStore) Create(ctx context.Context, a *quiz.Artifact) error {
	raw, err := quiz.EncodeArtifact(a)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, redisQuizPrefix+a.ContentKey, raw, 0).Result()
	if err != nil {
		return fmt.Errorf("redis create quiz %s: %w", a.ContentKey, err)
	}
	if !ok {
		return quiz.ErrExists
	}
	return nil
}

// Claim polls SETNX on a lock key holding a random token until it wins or
// ctx is done. The lock expires after the claim TTL.
func (s *RedisStore) Claim(ctx context.Context, key string) (func(), error) {
	lockKey := redisLockPrefix + key
	token := uuid.NewString()

	for {
		ok, err := s.rdb.SetNX(ctx, lockKey, token, s.claimTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("redis lock %s: %w", key, ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}

	return func() {
		// Release with a fresh context so a cancelled request still unlocks.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, s.rdb, []string{lockKey}, token).Err(); err != nil {
			s.log.Warn("release redis lock failed", "key", key, "error", err)
		}
	}, nil
}

func (s *RedisStore) AppendAttempt(ctx context.Context, a *quiz.Attempt) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, redisAttemptPrefix+a.AttemptID, raw, 0).Result()
	if err != nil {
		return fmt.Errorf("redis append attempt %s: %w", a.AttemptID, err)
	}
	if !ok {
		return quiz.ErrExists
	}
	return nil
}

// Attempt reads one stored attempt.
func (s *RedisStore) Attempt(ctx context.Context, id string) (*quiz.Attempt, error) {
	raw, err := s.rdb.Get(ctx, redisAttemptPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("attempt %s: %w", id, quiz.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get attempt %s: %w", id, err)
	}
	var a quiz.Attempt
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode attempt %s: %w", id, err)
	}
	return &a, nil
}

// List returns the content keys of all stored artifacts, sorted. It walks
// the keyspace with SCAN so large databases are not blocked.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, redisQuizPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), redisQuizPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan quizzes: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
