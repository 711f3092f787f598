package game

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-race/internal/game/session"
	"github.com/gokatarajesh/quiz-race/internal/question"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotStore(client, ttl), mr
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	state := session.NewState(5)
	state.Asked.Add(3)
	state.Mistakes.Add(4)
	state.Score = 35

	require.NoError(t, store.Save(ctx, Snapshot{
		SessionID:  id,
		Category:   "Math",
		Difficulty: question.DifficultyHard,
		State:      state,
	}))
	assert.Equal(t, time.Minute, mr.TTL("race:session:"+id.String()))

	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Math", got.Category)
	assert.Equal(t, question.DifficultyHard, got.Difficulty)
	assert.Equal(t, 35, got.State.Score)
	assert.Equal(t, []int{3}, got.State.Asked.Sorted())
	assert.Equal(t, []int{4}, got.State.Mistakes.Sorted())
	assert.False(t, got.SavedAt.IsZero())

	require.NoError(t, store.Delete(ctx, id))
	got, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotStoreExpires(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.Save(ctx, Snapshot{SessionID: id, State: session.NewState(1)}))
	assert.Equal(t, defaultSnapshotTTL, mr.TTL(snapshotKey(id)))

	mr.FastForward(defaultSnapshotTTL + time.Second)
	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotStoreRejectsCorruptPayload(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	id := uuid.New()
	require.NoError(t, mr.Set(snapshotKey(id), "not json"))

	_, err := store.Load(context.Background(), id)
	assert.Error(t, err)
}

func TestSnapshotStoreReportsRedisFailure(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	mr.Close()

	err := store.Save(context.Background(), Snapshot{SessionID: uuid.New()})
	assert.Error(t, err)
}
