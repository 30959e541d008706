package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nngn/engine/internal/core/ecs"
	"github.com/nngn/engine/internal/core/event"
	"github.com/nngn/engine/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seeded(t *testing.T) *ecs.EntityRegistry {
	t.Helper()
	r := ecs.NewEntityRegistry()
	require.NoError(t, r.SetMax(4))
	var ids []ecs.EntityID
	for _, n := range []string{"a", "b", "c"} {
		id, err := r.Add()
		require.NoError(t, err)
		require.NoError(t, r.SetName(id, n))
		ids = append(ids, id)
	}
	require.NoError(t, r.SetTag(ids[2], "boss"))
	// Free slot 0 and reuse it, so slot order differs from creation order.
	require.NoError(t, r.Remove(ids[0]))
	id, err := r.Add()
	require.NoError(t, err)
	require.NoError(t, r.SetName(id, "d\x00\xff"))
	return r
}

func TestCaptureSlotOrder(t *testing.T) {
	snap := Capture(seeded(t))
	assert.Equal(t, 4, snap.Max)
	assert.NotZero(t, snap.ID)
	assert.Equal(t, []SnapshotEntity{
		{Name: "d\x00\xff"},
		{Name: "b"},
		{Name: "c", Tag: "boss"},
	}, snap.Entities)
}

func TestReplay(t *testing.T) {
	snap := Capture(seeded(t))

	dst := ecs.NewEntityRegistry()
	ids, err := Replay(dst, snap)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, 4, dst.Max())
	assert.Equal(t, 3, dst.N())
	for i, id := range ids {
		name, err := dst.Name(id)
		require.NoError(t, err)
		assert.Equal(t, snap.Entities[i].Name, name)
		tag, err := dst.Tag(id)
		require.NoError(t, err)
		assert.Equal(t, snap.Entities[i].Tag, tag)
	}
	assert.Equal(t, snap.Entities, Capture(dst).Entities)
}

func TestReplayGrowsPastSnapshotMax(t *testing.T) {
	snap := Snapshot{Max: 1, Entities: []SnapshotEntity{{Name: "x"}, {Name: "y"}}}
	dst, err := world.NewState(1, event.NewBus(), zap.NewNop())
	require.NoError(t, err)
	_, err = dst.Add()
	require.NoError(t, err)

	ids, err := Replay(dst, snap)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, 3, dst.Max())
	assert.Equal(t, 3, dst.N())
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "entities.yaml")
	store := NewFileStore(path)

	_, err := store.LoadLatest(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snap := Capture(seeded(t))
	require.NoError(t, store.Save(ctx, snap))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := store.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.Max, got.Max)
	assert.True(t, snap.TakenAt.Equal(got.TakenAt))
	assert.Equal(t, snap.Entities, got.Entities, "labels survive byte for byte")
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities: [unterminated"), 0o644))
	_, err := NewFileStore(path).LoadLatest(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}
