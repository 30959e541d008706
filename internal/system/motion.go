package system

import (
	"time"

	"github.com/nngn/engine/internal/component"
	"github.com/nngn/engine/internal/core/ecs"
	coresys "github.com/nngn/engine/internal/core/system"
	"github.com/nngn/engine/internal/world"
)

// MotionSystem integrates acceleration and velocity into position.
// Phase 1 (Update).
type MotionSystem struct {
	world *world.State
}

func NewMotionSystem(ws *world.State) *MotionSystem {
	return &MotionSystem{world: ws}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MotionSystem) Update(dt time.Duration) {
	sec := float32(dt.Seconds())
	ecs.Each1(s.world.World(), s.world.Motion, func(id ecs.EntityID, m *component.Motion) {
		v := m.V
		if !m.A.IsZero() {
			v = v.Add(m.A.Scale(sec))
			m.A = component.Vec3{}
		}
		if m.MaxVel > 0 {
			v = v.ClampLen(m.MaxVel)
		}
		if v != m.V {
			_ = s.world.SetVel(id, v)
		}
		if !m.V.IsZero() {
			_ = s.world.SetPos(id, m.P.Add(m.V.Scale(sec)))
		}
	})
}
