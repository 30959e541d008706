package system

import (
	"time"

	"github.com/nngn/engine/internal/component"
	"github.com/nngn/engine/internal/core/ecs"
	coresys "github.com/nngn/engine/internal/core/system"
	"github.com/nngn/engine/internal/world"
	"go.uber.org/zap"
)

// ParentSystem moves colliders of children whose parent moved this tick.
// Children of destroyed parents are detached and keep their local position.
// Phase 2 (PostUpdate).
type ParentSystem struct {
	world  *world.State
	log    *zap.Logger
	orphan []ecs.EntityID
}

func NewParentSystem(ws *world.State, log *zap.Logger) *ParentSystem {
	return &ParentSystem{world: ws, log: log}
}

func (s *ParentSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ParentSystem) Update(_ time.Duration) {
	s.orphan = s.orphan[:0]
	ecs.Each1(s.world.World(), s.world.Parent, func(id ecs.EntityID, p *component.Parent) {
		if !s.world.Alive(p.ID) {
			s.orphan = append(s.orphan, id)
			return
		}
		pm, ok := s.world.Motion.Get(p.ID)
		if !ok || !pm.PosUpdated {
			return
		}
		if c, ok := s.world.Collider.Get(id); ok {
			c.Pos = s.world.WorldPos(id)
		}
	})
	for _, id := range s.orphan {
		s.log.Debug("parent destroyed, detaching child", zap.Stringer("entity", id))
		_ = s.world.SetParent(id, 0)
	}
}
