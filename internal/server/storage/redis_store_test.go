package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisStore_SaveLoadDeleteLobby(t *testing.T) {
	t.Parallel()

	client, _ := newTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	data := &LobbyData{
		ID:    "Brave-Quiet-Otter-0042",
		Phase: 1,
		Players: []PlayerData{
			{Name: "Alice", Cards: 11},
			{Name: "Bob", Cards: 12},
		},
		TableSize: 1,
		Target:    3,
		CreatedAt: time.Now().Unix(),
	}

	require.NoError(t, store.SaveLobby(ctx, data))

	loaded, err := store.LoadLobby(ctx, data.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, data.ID, loaded.ID)
	assert.Equal(t, data.Players, loaded.Players)
	assert.Equal(t, 3, loaded.Target)

	require.NoError(t, store.DeleteLobby(ctx, data.ID))

	loaded, err = store.LoadLobby(ctx, data.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_SaveNil(t *testing.T) {
	t.Parallel()

	client, _ := newTestRedis(t)
	store := NewRedisStore(client)
	assert.NoError(t, store.SaveLobby(context.Background(), nil))
}

func TestRedisStore_LobbyExpires(t *testing.T) {
	t.Parallel()

	client, mr := newTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveLobby(ctx, &LobbyData{ID: "x"}))
	mr.FastForward(lobbyExpiration + time.Second)

	loaded, err := store.LoadLobby(ctx, "x")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_ListLobbyIDs(t *testing.T) {
	t.Parallel()

	client, mr := newTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveLobby(ctx, &LobbyData{ID: id}))
	}
	require.NoError(t, mr.Set("unrelated", "1"))

	ids, err := store.ListLobbyIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)
}

func TestRedisStore_CorruptData(t *testing.T) {
	t.Parallel()

	client, mr := newTestRedis(t)
	store := NewRedisStore(client)

	require.NoError(t, mr.Set(lobbyKeyPrefix+"bad", "{not json"))
	_, err := store.LoadLobby(context.Background(), "bad")
	assert.Error(t, err)
}
