package world

import (
	"testing"

	"github.com/nngn/engine/internal/component"
	"github.com/nngn/engine/internal/core/ecs"
	"github.com/nngn/engine/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newState(t *testing.T, max int) *State {
	t.Helper()
	s, err := NewState(max, event.NewBus(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSpawnRemoveEmitsEvents(t *testing.T) {
	s := newState(t, 2)
	var created, destroyed []string
	event.Subscribe(s.Bus(), func(ev event.EntityCreated) { created = append(created, ev.Name) })
	event.Subscribe(s.Bus(), func(ev event.EntityDestroyed) { destroyed = append(destroyed, ev.Name) })

	id, err := s.Spawn("hero", "player")
	require.NoError(t, err)
	tag, err := s.Tag(id)
	require.NoError(t, err)
	assert.Equal(t, "player", tag)
	require.NoError(t, s.Remove(id))
	assert.ErrorIs(t, s.Remove(id), ecs.ErrStaleHandle)

	s.Bus().SwapBuffers()
	s.Bus().DispatchAll()
	assert.Equal(t, []string{"hero"}, created)
	assert.Equal(t, []string{"hero"}, destroyed)
}

func TestRemoveDropsComponents(t *testing.T) {
	s := newState(t, 1)
	id, err := s.Add()
	require.NoError(t, err)
	require.NoError(t, s.SetPos(id, component.Vec3{X: 1}))
	require.NoError(t, s.SetCollider(id))
	require.NoError(t, s.Remove(id))

	reused, err := s.Add()
	require.NoError(t, err)
	assert.Equal(t, id.Index(), reused.Index())
	assert.False(t, s.Motion.Has(reused))
	assert.False(t, s.Collider.Has(reused))
	p, err := s.Pos(reused)
	require.NoError(t, err)
	assert.Equal(t, component.Vec3{}, p)
}

func TestSpawnFull(t *testing.T) {
	s := newState(t, 1)
	_, err := s.Spawn("a", "")
	require.NoError(t, err)
	_, err = s.Spawn("b", "")
	assert.ErrorIs(t, err, ecs.ErrOutOfCapacity)
	assert.Equal(t, 1, s.Bus().Pending(), "only the successful spawn emits")
}

func TestRenameEvent(t *testing.T) {
	s := newState(t, 1)
	var renames []event.EntityRenamed
	event.Subscribe(s.Bus(), func(ev event.EntityRenamed) { renames = append(renames, ev) })

	id, err := s.Spawn("old", "")
	require.NoError(t, err)
	require.NoError(t, s.SetName(id, "new"))
	require.NoError(t, s.SetName(id, "new"))
	s.Bus().SwapBuffers()
	s.Bus().DispatchAll()
	require.Len(t, renames, 1)
	assert.Equal(t, "old", renames[0].Old)
	assert.Equal(t, "new", renames[0].New)
	assert.Equal(t, []ecs.EntityID{id}, s.ByName("new"))
	assert.Equal(t, []ecs.EntityID{id}, s.ByNameHash(ecs.Hash("new")))
}

func TestDespawnDeferred(t *testing.T) {
	s := newState(t, 2)
	id, err := s.Spawn("doomed", "")
	require.NoError(t, err)
	require.NoError(t, s.Despawn(id))
	require.NoError(t, s.Despawn(id))
	assert.True(t, s.Alive(id))

	assert.Equal(t, 1, s.Flush())
	assert.False(t, s.Alive(id))
	assert.ErrorIs(t, s.Despawn(id), ecs.ErrStaleHandle)
}

func TestParentWorldPos(t *testing.T) {
	s := newState(t, 2)
	parent, _ := s.Add()
	child, _ := s.Add()
	require.NoError(t, s.SetPos(parent, component.Vec3{X: 1, Y: 1}))
	require.NoError(t, s.SetPos(child, component.Vec3{X: 2}))
	require.NoError(t, s.SetCollider(child))
	require.NoError(t, s.SetParent(child, parent))

	assert.Equal(t, component.Vec3{X: 3, Y: 1}, s.WorldPos(child))
	c, ok := s.Collider.Get(child)
	require.True(t, ok)
	assert.Equal(t, component.Vec3{X: 3, Y: 1}, c.Pos)

	assert.ErrorIs(t, s.SetParent(child, child), ecs.ErrInvalidHandle)
	require.NoError(t, s.SetParent(child, 0))
	assert.Equal(t, component.Vec3{X: 2}, s.WorldPos(child))
}

func TestSetMax(t *testing.T) {
	s := newState(t, 1)
	_, err := s.Add()
	require.NoError(t, err)
	assert.ErrorIs(t, s.SetMax(0), ecs.ErrCapacity)
	require.NoError(t, s.SetMax(4))
	assert.Equal(t, 4, s.Max())
	assert.Equal(t, 1, s.N())
}

func TestNewStateNegative(t *testing.T) {
	_, err := NewState(-1, event.NewBus(), zap.NewNop())
	assert.ErrorIs(t, err, ecs.ErrCapacity)
}
