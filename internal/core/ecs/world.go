package ecs

import "errors"

// World is the top-level ECS container. It owns the entity registry, the
// component stores, and a deferred destruction queue flushed by
// CleanupSystem each tick.
type World struct {
	entities     *EntityRegistry
	stores       StoreSet
	destroyQueue []EntityID
}

// NewWorld creates a world whose registry holds up to max live entities.
func NewWorld(max int) (*World, error) {
	reg := NewEntityRegistry()
	if err := reg.SetMax(max); err != nil {
		return nil, err
	}
	return &World{
		entities:     reg,
		destroyQueue: make([]EntityID, 0, 64),
	}, nil
}

func (w *World) Entities() *EntityRegistry { return w.entities }
func (w *World) Stores() *StoreSet         { return &w.stores }

// Register attaches a component store; its data is dropped whenever an
// entity is destroyed.
func (w *World) Register(store Removable) {
	w.stores.Register(store)
}

func (w *World) CreateEntity() (EntityID, error) {
	return w.entities.Add()
}

func (w *World) Alive(id EntityID) bool {
	return w.entities.Alive(id)
}

// Destroy removes id's components and releases its slot immediately.
func (w *World) Destroy(id EntityID) error {
	if err := w.entities.Validate(id); err != nil {
		return err
	}
	w.stores.RemoveAll(id)
	return w.entities.Remove(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of queued destructions.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities and clears their
// components. before, if non-nil, sees each entity while it is still live.
// Handles that died before the flush (queued twice, or destroyed directly)
// are skipped and reported in the joined error.
func (w *World) FlushDestroyQueue(before func(EntityID)) (int, error) {
	var errs []error
	n := 0
	for _, id := range w.destroyQueue {
		if err := w.entities.Validate(id); err != nil {
			errs = append(errs, err)
			continue
		}
		if before != nil {
			before(id)
		}
		if err := w.Destroy(id); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n, errors.Join(errs...)
}

// Reset destroys every entity and drops all queued destructions.
func (w *World) Reset() {
	w.entities.Each(func(id EntityID) bool {
		w.stores.RemoveAll(id)
		return true
	})
	w.entities.Clear()
	w.destroyQueue = w.destroyQueue[:0]
}
