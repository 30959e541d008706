package event

import "github.com/nngn/engine/internal/core/ecs"

type EntityCreated struct {
	ID   ecs.EntityID
	Name string
	Tag  string
}

// EntityDestroyed carries the name the entity had when it was removed; the
// handle itself is already dead when handlers run.
type EntityDestroyed struct {
	ID   ecs.EntityID
	Name string
}

type EntityRenamed struct {
	ID  ecs.EntityID
	Old string
	New string
}
