package persist

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nngn/engine/internal/core/ecs"
)

// ErrNoSnapshot is returned by stores that hold no snapshot yet.
var ErrNoSnapshot = errors.New("no entity snapshot")

// Snapshot is a stable, slot-ordered record of the live entities. Handles
// are not stored: replaying a snapshot issues fresh ones.
type Snapshot struct {
	ID       uuid.UUID        `yaml:"id"`
	TakenAt  time.Time        `yaml:"taken_at"`
	Max      int              `yaml:"max"`
	Entities []SnapshotEntity `yaml:"entities"`
}

type SnapshotEntity struct {
	Name string `yaml:"name"`
	Tag  string `yaml:"tag,omitempty"`
}

// Source is what Capture reads.
type Source interface {
	Max() int
	Each(fn func(ecs.EntityID) bool)
	Name(id ecs.EntityID) (string, error)
	Tag(id ecs.EntityID) (string, error)
}

// Target is what Replay writes.
type Target interface {
	Max() int
	N() int
	SetMax(n int) error
	Add() (ecs.EntityID, error)
	SetName(id ecs.EntityID, s string) error
	SetTag(id ecs.EntityID, s string) error
}

// Capture records every live entity in ascending slot order.
func Capture(src Source) Snapshot {
	snap := Snapshot{
		ID:      uuid.New(),
		TakenAt: time.Now().UTC(),
		Max:     src.Max(),
	}
	src.Each(func(id ecs.EntityID) bool {
		// id comes from Each, so it is live.
		name, _ := src.Name(id)
		tag, _ := src.Tag(id)
		snap.Entities = append(snap.Entities, SnapshotEntity{Name: name, Tag: tag})
		return true
	})
	return snap
}

// Replay adds the snapshot's entities to dst in order, growing dst's
// capacity to fit. It returns the new handles, parallel to snap.Entities.
func Replay(dst Target, snap Snapshot) ([]ecs.EntityID, error) {
	need := max(snap.Max, dst.N()+len(snap.Entities))
	if need > dst.Max() {
		if err := dst.SetMax(need); err != nil {
			return nil, fmt.Errorf("replay snapshot %s: %w", snap.ID, err)
		}
	}
	ids := make([]ecs.EntityID, 0, len(snap.Entities))
	for i, e := range snap.Entities {
		id, err := dst.Add()
		if err != nil {
			return ids, fmt.Errorf("replay snapshot %s entity %d: %w", snap.ID, i, err)
		}
		if err := dst.SetName(id, e.Name); err != nil {
			return ids, fmt.Errorf("replay snapshot %s entity %d: %w", snap.ID, i, err)
		}
		if err := dst.SetTag(id, e.Tag); err != nil {
			return ids, fmt.Errorf("replay snapshot %s entity %d: %w", snap.ID, i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
