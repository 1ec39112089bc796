package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	kind := domain.Kind("contract-" + time.Now().Format("20060102150405.000000"))

	t.Run("NextID is monotonic", func(t *testing.T) {
		first, err := store.NextID(ctx, kind)
		require.NoError(t, err)
		second, err := store.NextID(ctx, kind)
		require.NoError(t, err)
		assert.Greater(t, first, int64(0))
		assert.Greater(t, second, first)
	})

	t.Run("Save and Load", func(t *testing.T) {
		id, err := store.NextID(ctx, kind)
		require.NoError(t, err)

		err = store.Save(ctx, kind, id, []byte(`{"name":"Welcome"}`))
		require.NoError(t, err, "Save should not return error")

		data, err := store.Load(ctx, kind, id)
		require.NoError(t, err, "Load should not return error")
		assert.JSONEq(t, `{"name":"Welcome"}`, string(data))

		// Overwrite
		require.NoError(t, store.Save(ctx, kind, id, []byte(`{"name":"Renamed"}`)))
		data, err = store.Load(ctx, kind, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Renamed"}`, string(data))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, kind, 987654321)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id, err := store.NextID(ctx, kind)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, kind, id, []byte(`{}`)))

		require.NoError(t, store.Delete(ctx, kind, id), "Delete should not return error")

		_, err = store.Load(ctx, kind, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Load after Delete should return ErrNotFound")

		assert.NoError(t, store.Delete(ctx, kind, id), "Deleting twice is not an error")
	})

	t.Run("List is sorted and scoped by kind", func(t *testing.T) {
		listKind := kind + "-list"
		other := kind + "-other"

		ids := make([]int64, 0, 3)
		for range 3 {
			id, err := store.NextID(ctx, listKind)
			require.NoError(t, err)
			ids = append(ids, id)
		}
		// Save out of order.
		for _, i := range []int{2, 0, 1} {
			require.NoError(t, store.Save(ctx, listKind, ids[i], []byte(`{}`)))
		}
		otherID, err := store.NextID(ctx, other)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, other, otherID, []byte(`{}`)))

		listed, err := store.List(ctx, listKind)
		require.NoError(t, err)
		assert.Equal(t, ids, listed)

		require.NoError(t, store.Delete(ctx, listKind, ids[1]))
		listed, err = store.List(ctx, listKind)
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[0], ids[2]}, listed)
	})

	t.Run("List empty kind", func(t *testing.T) {
		listed, err := store.List(ctx, kind+"-empty")
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}

// RunLockerContract verifies mutual exclusion and release of a DistributedLocker.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("150405.000000")

	t.Run("Exclusive", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, key, 5*time.Second)
		assert.Error(t, err, "second Lock should block until the context expires")

		require.NoError(t, unlock(ctx))

		unlock2, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err, "Lock after release should succeed")
		require.NoError(t, unlock2(ctx))
	})

	t.Run("Serialises writers", func(t *testing.T) {
		var (
			mu      sync.Mutex
			inside  int
			maxSeen int
			wg      sync.WaitGroup
		)
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, key+"-race", 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				assert.NoError(t, unlock(ctx))
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
	})
}
