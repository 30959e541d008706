package world

import (
	"fmt"

	"github.com/nngn/engine/internal/component"
	"github.com/nngn/engine/internal/core/ecs"
	"github.com/nngn/engine/internal/core/event"
	"go.uber.org/zap"
)

// State is the engine's entity world: the registry, the component stores
// collaborators attach data to, and the event bus that reports entity
// lifecycle changes. Accessed only from the game loop goroutine, no locks.
type State struct {
	ecs *ecs.World
	bus *event.Bus
	log *zap.Logger

	Motion   *ecs.PtrComponentStore[component.Motion]
	Parent   *ecs.PtrComponentStore[component.Parent]
	Collider *ecs.PtrComponentStore[component.Collider]
}

// NewState creates a world with room for max live entities.
func NewState(max int, bus *event.Bus, log *zap.Logger) (*State, error) {
	w, err := ecs.NewWorld(max)
	if err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	s := &State{
		ecs:      w,
		bus:      bus,
		log:      log,
		Motion:   ecs.NewPtrComponentStore[component.Motion](),
		Parent:   ecs.NewPtrComponentStore[component.Parent](),
		Collider: ecs.NewPtrComponentStore[component.Collider](),
	}
	w.Register(s.Motion)
	w.Register(s.Parent)
	w.Register(s.Collider)
	return s, nil
}

func (s *State) World() *ecs.World              { return s.ecs }
func (s *State) Entities() *ecs.EntityRegistry { return s.ecs.Entities() }
func (s *State) Bus() *event.Bus               { return s.bus }

func (s *State) Max() int { return s.ecs.Entities().Max() }
func (s *State) N() int   { return s.ecs.Entities().N() }

func (s *State) SetMax(n int) error {
	old := s.Max()
	if err := s.ecs.Entities().SetMax(n); err != nil {
		return err
	}
	s.log.Debug("entity capacity changed", zap.Int("from", old), zap.Int("to", n))
	return nil
}

// Add allocates a bare entity.
func (s *State) Add() (ecs.EntityID, error) {
	return s.Spawn("", "")
}

// Spawn allocates an entity with a name and tag.
func (s *State) Spawn(name, tag string) (ecs.EntityID, error) {
	reg := s.ecs.Entities()
	id, err := reg.Add()
	if err != nil {
		s.log.Warn("cannot add more entities", zap.Int("max", reg.Max()))
		return 0, err
	}
	// The handle was just issued, label writes cannot fail.
	_ = reg.SetName(id, name)
	_ = reg.SetTag(id, tag)
	event.Emit(s.bus, event.EntityCreated{ID: id, Name: name, Tag: tag})
	return id, nil
}

// Remove destroys id immediately, dropping every component attached to it.
func (s *State) Remove(id ecs.EntityID) error {
	name, err := s.ecs.Entities().Name(id)
	if err != nil {
		return err
	}
	if err := s.ecs.Destroy(id); err != nil {
		return err
	}
	event.Emit(s.bus, event.EntityDestroyed{ID: id, Name: name})
	return nil
}

// Despawn queues id for destruction at the end of the tick.
func (s *State) Despawn(id ecs.EntityID) error {
	if err := s.ecs.Entities().Validate(id); err != nil {
		return err
	}
	s.ecs.MarkForDestruction(id)
	return nil
}

// Flush destroys every despawned entity. Stale queue entries are logged and
// skipped.
func (s *State) Flush() int {
	reg := s.ecs.Entities()
	n, err := s.ecs.FlushDestroyQueue(func(id ecs.EntityID) {
		name, _ := reg.Name(id)
		event.Emit(s.bus, event.EntityDestroyed{ID: id, Name: name})
	})
	if err != nil {
		s.log.Warn("skipped dead entities in destroy queue", zap.Error(err))
	}
	return n
}

func (s *State) Alive(id ecs.EntityID) bool { return s.ecs.Alive(id) }

func (s *State) Name(id ecs.EntityID) (string, error) {
	return s.ecs.Entities().Name(id)
}

func (s *State) SetName(id ecs.EntityID, name string) error {
	reg := s.ecs.Entities()
	old, err := reg.Name(id)
	if err != nil {
		return err
	}
	if err := reg.SetName(id, name); err != nil {
		return err
	}
	if old != name {
		event.Emit(s.bus, event.EntityRenamed{ID: id, Old: old, New: name})
	}
	return nil
}

func (s *State) Tag(id ecs.EntityID) (string, error) {
	return s.ecs.Entities().Tag(id)
}

func (s *State) SetTag(id ecs.EntityID, tag string) error {
	return s.ecs.Entities().SetTag(id, tag)
}

func (s *State) NameHash(id ecs.EntityID) (uint64, error) {
	return s.ecs.Entities().NameHash(id)
}

func (s *State) ByName(name string) []ecs.EntityID  { return s.ecs.Entities().ByName(name) }
func (s *State) ByNameHash(h uint64) []ecs.EntityID { return s.ecs.Entities().ByNameHash(h) }
func (s *State) ByTag(tag string) []ecs.EntityID    { return s.ecs.Entities().ByTag(tag) }

// motion returns id's Motion component, attaching a zero one if missing.
func (s *State) motion(id ecs.EntityID) (*component.Motion, error) {
	if err := s.ecs.Entities().Validate(id); err != nil {
		return nil, err
	}
	m, ok := s.Motion.Get(id)
	if !ok {
		m = &component.Motion{}
		s.Motion.Set(id, m)
	}
	return m, nil
}

// Pos returns id's local position.
func (s *State) Pos(id ecs.EntityID) (component.Vec3, error) {
	if err := s.ecs.Entities().Validate(id); err != nil {
		return component.Vec3{}, err
	}
	return s.pos(id), nil
}

// SetPos moves id. The collider, if any, follows in world space.
func (s *State) SetPos(id ecs.EntityID, p component.Vec3) error {
	m, err := s.motion(id)
	if err != nil {
		return err
	}
	m.SetPos(p)
	if c, ok := s.Collider.Get(id); ok {
		c.Pos = s.WorldPos(id)
	}
	return nil
}

func (s *State) SetVel(id ecs.EntityID, v component.Vec3) error {
	m, err := s.motion(id)
	if err != nil {
		return err
	}
	m.V = v
	if c, ok := s.Collider.Get(id); ok {
		c.Vel = v
	}
	return nil
}

func (s *State) SetAcc(id ecs.EntityID, a component.Vec3) error {
	m, err := s.motion(id)
	if err != nil {
		return err
	}
	m.A = a
	return nil
}

func (s *State) SetMaxVel(id ecs.EntityID, v float32) error {
	m, err := s.motion(id)
	if err != nil {
		return err
	}
	m.MaxVel = v
	return nil
}

// SetCollider attaches a collider that tracks id's world position.
func (s *State) SetCollider(id ecs.EntityID) error {
	m, err := s.motion(id)
	if err != nil {
		return err
	}
	s.Collider.Set(id, &component.Collider{Pos: s.WorldPos(id), Vel: m.V})
	return nil
}

// SetParent makes child's position relative to parent. A zero parent
// detaches the child.
func (s *State) SetParent(child, parent ecs.EntityID) error {
	reg := s.ecs.Entities()
	if err := reg.Validate(child); err != nil {
		return err
	}
	if parent.IsZero() {
		s.Parent.Remove(child)
		return s.SetPos(child, s.pos(child))
	}
	if err := reg.Validate(parent); err != nil {
		return err
	}
	if parent == child {
		return fmt.Errorf("%w: %s cannot parent itself", ecs.ErrInvalidHandle, child)
	}
	s.Parent.Set(child, &component.Parent{ID: parent})
	return s.SetPos(child, s.pos(child))
}

// WorldPos is id's position with its live parent's position added.
func (s *State) WorldPos(id ecs.EntityID) component.Vec3 {
	p := s.pos(id)
	if par, ok := s.Parent.Get(id); ok && s.Alive(par.ID) {
		p = p.Add(s.pos(par.ID))
	}
	return p
}

func (s *State) pos(id ecs.EntityID) component.Vec3 {
	if m, ok := s.Motion.Get(id); ok {
		return m.P
	}
	return component.Vec3{}
}

// Each visits live entities in slot order.
func (s *State) Each(fn func(ecs.EntityID) bool) { s.ecs.Entities().Each(fn) }

// Reset destroys every entity without emitting events.
func (s *State) Reset() { s.ecs.Reset() }
