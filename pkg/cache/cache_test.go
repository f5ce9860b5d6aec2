package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestKey_DependsOnQueryAndParams(t *testing.T) {
	a := Key("SELECT * FROM work_logs", "2025-08-01", "2026-06-30")
	b := Key("SELECT * FROM work_logs", "2025-08-01", "2026-06-30")
	c := Key("SELECT * FROM work_logs", "2025-08-01", "2026-06-29")
	d := Key("SELECT * FROM rates")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.True(t, strings.HasPrefix(a, keyPrefix))
}

func TestMemory_ExpiresPerKey(t *testing.T) {
	ck := &clock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.Now = ck.now
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, m.Set(ctx, "long", []byte("b"), time.Hour))

	ck.t = ck.t.Add(30 * time.Second)
	v, ok, err := m.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), v)

	ck.t = ck.t.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "short")
	assert.False(t, ok, "short entry expired")
	_, ok, _ = m.Get(ctx, "long")
	assert.True(t, ok, "long entry unaffected")
	assert.Equal(t, 1, m.Len())
}

func TestMemory_CopiesValue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), v)
}

type payload struct {
	Rows []string
	N    int
}

func TestReadThrough_FetchesOnceWithinTTL(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (payload, error) {
		calls++
		return payload{Rows: []string{"a", "b"}, N: calls}, nil
	}

	first, err := ReadThrough(ctx, m, "k", time.Minute, zap.NewNop(), fetch)
	require.NoError(t, err)
	second, err := ReadThrough(ctx, m, "k", time.Minute, zap.NewNop(), fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestReadThrough_FetchErrorIsNotCached(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("upstream down")

	_, err := ReadThrough(ctx, m, "k", time.Minute, nil, func(context.Context) (payload, error) {
		return payload{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestReadThrough_CacheFailureFallsBackToSource(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	v, err := ReadThrough(context.Background(), failingCache{}, "k", time.Minute, zap.New(core), func(context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, logs.Len(), "read and write failures are both logged")
}

func TestReadThrough_NilCache(t *testing.T) {
	v, err := ReadThrough(context.Background(), nil, "k", time.Minute, nil, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}
