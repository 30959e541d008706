package world

import (
	"fmt"

	"github.com/nngn/engine/internal/component"
	"github.com/nngn/engine/internal/core/ecs"
	"github.com/nngn/engine/internal/data"
	"go.uber.org/zap"
)

func vec(a [3]float32) component.Vec3 { return component.Vec3{X: a[0], Y: a[1], Z: a[2]} }

// SpawnSeeds creates one entity per seed entry, in order. Parents refer to
// the most recent earlier entry with that name.
func (s *State) SpawnSeeds(tbl *data.SeedTable) (int, error) {
	byName := make(map[string]ecs.EntityID, tbl.Count())
	n := 0
	for i, e := range tbl.Entries() {
		id, err := s.Spawn(e.Name, e.Tag)
		if err != nil {
			return n, fmt.Errorf("seed %d (%q): %w", i, e.Name, err)
		}
		n++
		if e.Pos != [3]float32{} {
			_ = s.SetPos(id, vec(e.Pos))
		}
		if e.Vel != [3]float32{} {
			_ = s.SetVel(id, vec(e.Vel))
		}
		if e.MaxVel > 0 {
			_ = s.SetMaxVel(id, e.MaxVel)
		}
		if e.Parent != "" {
			if err := s.SetParent(id, byName[e.Parent]); err != nil {
				return n, fmt.Errorf("seed %d (%q): parent %q: %w", i, e.Name, e.Parent, err)
			}
		}
		if e.Collider {
			_ = s.SetCollider(id)
		}
		if e.Name != "" {
			byName[e.Name] = id
		}
	}
	s.log.Debug("seed entities spawned", zap.Int("count", n))
	return n, nil
}
