package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fiche struct {
	ID    string  `json:"id"`
	Total float64 `json:"total"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client), mr
}

func TestGetOrSetFetchUneSeuleFois(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (any, error) {
		calls++
		return fiche{ID: "o1", Total: 5847}, nil
	}

	var out fiche
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5847.0, out.Total)

	// Deuxième lecture : servie par le cache, la source n'est pas rappelée
	var again fiche
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &again))
	assert.Equal(t, 1, calls)
	assert.Equal(t, out, again)
}

func TestGetOrSetErreurSource(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	fetch := func() (any, error) {
		return nil, assert.AnError
	}
	var out fiche
	err := store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out)
	assert.ErrorIs(t, err, assert.AnError)

	// Rien ne doit avoir été mis en cache
	calls := 0
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, func() (any, error) {
		calls++
		return fiche{ID: "o1"}, nil
	}, &out))
	assert.Equal(t, 1, calls)
}

func TestGetOrSetEntreeCorrompue(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("order:o1", "pas-du-json{{{"))

	calls := 0
	var out fiche
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, func() (any, error) {
		calls++
		return fiche{ID: "o1", Total: 100}, nil
	}, &out))
	assert.Equal(t, 1, calls, "l'entrée corrompue force un refetch")
	assert.Equal(t, "o1", out.ID)
}

func TestInvalidate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (any, error) {
		calls++
		return fiche{ID: "o1"}, nil
	}
	var out fiche
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out))

	store.Invalidate(ctx, "order:o1")

	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out))
	assert.Equal(t, 2, calls, "après invalidation la source est rappelée")
}

func TestInvalidateTag(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	tags := []string{"orders:client-1"}

	calls := 0
	fetch := func() (any, error) {
		calls++
		return fiche{ID: "o"}, nil
	}
	var out fiche
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, tags, fetch, &out))
	require.NoError(t, store.GetOrSet(ctx, "order:o2", time.Minute, tags, fetch, &out))
	require.NoError(t, store.GetOrSet(ctx, "order:autre", time.Minute, []string{"orders:client-2"}, fetch, &out))
	require.Equal(t, 3, calls)

	store.InvalidateTag(ctx, "orders:client-1")

	// Les deux clés taguées sont évincées, la troisième reste servie du cache
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, tags, fetch, &out))
	require.NoError(t, store.GetOrSet(ctx, "order:o2", time.Minute, tags, fetch, &out))
	require.NoError(t, store.GetOrSet(ctx, "order:autre", time.Minute, []string{"orders:client-2"}, fetch, &out))
	assert.Equal(t, 5, calls)
}

func TestExpirationTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (any, error) {
		calls++
		return fiche{ID: "o1"}, nil
	}
	var out fiche
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out))

	mr.FastForward(2 * time.Minute)

	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out))
	assert.Equal(t, 2, calls)
}

// Redis en panne : le Store bascule sur la map locale, les requêtes continuent
func TestBasculeRedisEnPanne(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	mr.Close()

	calls := 0
	fetch := func() (any, error) {
		calls++
		return fiche{ID: "o1", Total: 42}, nil
	}

	var out fiche
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 42.0, out.Total)

	// Deuxième lecture servie par le cache local
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out))
	assert.Equal(t, 1, calls)

	// L'invalidation fonctionne aussi en local
	store.Invalidate(ctx, "order:o1")
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, nil, fetch, &out))
	assert.Equal(t, 2, calls)
}

func TestStoreSansRedis(t *testing.T) {
	store := New(nil)
	ctx := context.Background()

	calls := 0
	fetch := func() (any, error) {
		calls++
		return fiche{ID: "o1"}, nil
	}
	var out fiche
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, []string{"orders:c1"}, fetch, &out))
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, []string{"orders:c1"}, fetch, &out))
	assert.Equal(t, 1, calls)

	store.InvalidateTag(ctx, "orders:c1")
	require.NoError(t, store.GetOrSet(ctx, "order:o1", time.Minute, []string{"orders:c1"}, fetch, &out))
	assert.Equal(t, 2, calls)
}
