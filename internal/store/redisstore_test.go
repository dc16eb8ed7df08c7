package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

// newTestRedisStore connects to EVALAI_TEST_REDIS, skipping when unset.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("EVALAI_TEST_REDIS")
	if addr == "" {
		t.Skip("EVALAI_TEST_REDIS not set")
	}
	s, err := DialRedis(context.Background(), addr, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisStore_CreateGet(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()
	key := testKey("test-" + uuid.NewString())
	t.Cleanup(func() { s.rdb.Del(context.Background(), redisQuizPrefix+key) })

	_, err := s.Get(ctx, key)
	require.ErrorIs(t, err, quiz.ErrNotFound)

	want := testArtifact(key)
	require.NoError(t, s.Create(ctx, want))
	require.ErrorIs(t, s.Create(ctx, testArtifact(key)), quiz.ErrExists)

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStore_Claim(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	release, err := s.Claim(ctx, key)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = s.Claim(waitCtx, key)
	require.Error(t, err)

	release()
	release2, err := s.Claim(ctx, key)
	require.NoError(t, err)
	release2()

	n, err := s.rdb.Exists(ctx, redisLockPrefix+key).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStore_ReleaseKeepsForeignLock(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()
	lockKey := redisLockPrefix + key
	t.Cleanup(func() { s.rdb.Del(context.Background(), lockKey) })

	release, err := s.Claim(ctx, key)
	require.NoError(t, err)

	// Simulate expiry and takeover by another holder.
	require.NoError(t, s.rdb.Set(ctx, lockKey, "other", time.Minute).Err())
	release()

	v, err := s.rdb.Get(ctx, lockKey).Result()
	require.NoError(t, err)
	assert.Equal(t, "other", v)
}

func TestRedisStore_AppendAttempt(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()
	a := &quiz.Attempt{AttemptID: "test-" + uuid.NewString(), ContentKey: "k"}
	t.Cleanup(func() { s.rdb.Del(context.Background(), redisAttemptPrefix+a.AttemptID) })

	require.NoError(t, s.AppendAttempt(ctx, a))
	require.ErrorIs(t, s.AppendAttempt(ctx, a), quiz.ErrExists)

	_, err := s.rdb.Get(ctx, redisAttemptPrefix+a.AttemptID).Result()
	assert.NotErrorIs(t, err, redis.Nil)
}

func TestRedisStore_AttemptAndList(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	a := &quiz.Attempt{AttemptID: "test-" + uuid.NewString(), ContentKey: "k", MCQScore: 2, MCQTotal: 3}
	t.Cleanup(func() { s.rdb.Del(context.Background(), redisAttemptPrefix+a.AttemptID) })
	require.NoError(t, s.AppendAttempt(ctx, a))

	got, err := s.Attempt(ctx, a.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MCQScore)

	_, err = s.Attempt(ctx, "missing-"+uuid.NewString())
	require.ErrorIs(t, err, quiz.ErrNotFound)

	art := &quiz.Artifact{
		SourceIdentity: []string{uuid.NewString()},
		Questions:      []quiz.Question{{ID: "q_0", Type: quiz.SAQ, Question: "Why?", Answer: "Because."}},
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	art.ContentKey = quiz.ContentKey(art.SourceIdentity)
	t.Cleanup(func() { s.rdb.Del(context.Background(), redisQuizPrefix+art.ContentKey) })
	require.NoError(t, s.Create(ctx, art))

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, art.ContentKey)
}
