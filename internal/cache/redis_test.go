package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
}

type cachedUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestAsideFetchesAndCaches(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			fetches++
			*dest = cachedUser{ID: 7, Name: "maria"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)

	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should come from cache")
	assert.Equal(t, first, second)
}

func TestAsideWithoutClientFallsThrough(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var out cachedUser
	err := Aside(ctx, UserKey(1), &out, UserTTL, func() error {
		out = cachedUser{ID: 1, Name: "paco"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "paco", out.Name)
}

func TestInvalidateUser(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	load := func() error {
		fetches++
		return nil
	}

	var out cachedUser
	require.NoError(t, Aside(ctx, UserKey(3), &out, UserTTL, load))
	InvalidateUser(ctx, 3)
	require.NoError(t, Aside(ctx, UserKey(3), &out, UserTTL, load))
	assert.Equal(t, 2, fetches)
}
