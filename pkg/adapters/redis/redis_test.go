package redis_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/onboard/pkg/adapters/redis"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunDocumentStoreContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("tenant-a:"))
	ctx := context.Background()

	id, err := store.NextID(ctx, domain.KindSequence)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, domain.KindSequence, id, []byte(`{"name":"Engineering"}`)))

	assert.True(t, mr.Exists("tenant-a:doc:sequence:1"))
	assert.True(t, mr.Exists("tenant-a:idx:sequence"))
}

func TestRedisLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	locker := redis.NewLocker(client, redis.DefaultPrefix)
	ports.RunLockerContract(t, locker)
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "p:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "sequence:1", 0)
	require.NoError(t, err)

	// Simulate expiry followed by another owner taking the lock.
	require.NoError(t, mr.Set("p:lock:sequence:1", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("p:lock:sequence:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestOutbox_Dispatch(t *testing.T) {
	_, client := newClient(t)
	outbox := redis.NewOutbox(client, "onboard:", 100)
	ctx := context.Background()

	err := outbox.Dispatch(ctx, domain.ActionRequest{
		Type:   domain.ActionSendMessage,
		UserID: 7,
		Payload: domain.MessagePayload{
			MessageID: 3,
			Channel:   "email",
			Content:   "Welcome aboard",
		},
	})
	require.NoError(t, err)

	entries, err := client.XRange(ctx, outbox.Stream(), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionSendMessage, entries[0].Values["type"])
	assert.Equal(t, "7", entries[0].Values["user_id"])

	var payload domain.MessagePayload
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &payload))
	assert.Equal(t, "Welcome aboard", payload.Content)
}
