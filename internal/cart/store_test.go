package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStoreLoadMissingReturnsEmptyCart(t *testing.T) {
	store, _ := newTestStore(t)

	c, err := store.Load(context.Background(), "unknown")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.Total)
}

func TestRedisStoreRoundTripWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	c := New()
	c.Add(airMax)
	c.Add(jordan)
	require.NoError(t, store.Save(ctx, "sess-1", c))

	assert.True(t, mr.Exists("cart:session:sess-1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:session:sess-1"))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, c.Items, loaded.Items)
	assert.Equal(t, c.Total, loaded.Total)
}

func TestRedisStoreRecomputesStoredTotal(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("cart:session:tampered",
		`{"items":[{"id":1,"name":"A","price":1000,"image":"","size":"42","quantity":2}],"total":1}`))

	c, err := store.Load(context.Background(), "tampered")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), c.Total)
}

func TestRedisStoreRejectsCorruptSnapshot(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("cart:session:bad", "not-json"))

	_, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisStoreSaveEmptyDeletesKey(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	c := New()
	c.Add(airMax)
	require.NoError(t, store.Save(ctx, "sess-2", c))
	c.Clear()
	require.NoError(t, store.Save(ctx, "sess-2", c))

	assert.False(t, mr.Exists("cart:session:sess-2"))
}

func TestRedisStoreUpdateConcurrentAddsAreNotLost(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "sess-busy", func(c *Cart) error {
				c.Add(airMax)
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	c, err := store.Load(ctx, "sess-busy")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, writers, c.Items[0].Quantity)
	assert.Equal(t, int64(writers)*airMax.Price, c.Total)
}

func TestRedisStoreUpdateErrorLeavesCartUntouched(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "sess-3", func(c *Cart) error {
		c.Add(airMax)
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("rejected")
	_, err = store.Update(ctx, "sess-3", func(c *Cart) error {
		c.Clear()
		return boom
	})
	assert.ErrorIs(t, err, boom)

	c, err := store.Load(ctx, "sess-3")
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount())
	assert.Equal(t, time.Hour, mr.TTL("cart:session:sess-3"))
}

func TestRedisStoreUpdateEmptyingDeletesKey(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "sess-4", func(c *Cart) error {
		c.Add(airMax)
		return nil
	})
	require.NoError(t, err)
	require.True(t, mr.Exists("cart:session:sess-4"))

	c, err := store.Update(ctx, "sess-4", func(c *Cart) error {
		c.RemoveItem(airMax.ProductID, airMax.Size)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.False(t, mr.Exists("cart:session:sess-4"))
}
