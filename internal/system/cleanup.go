package system

import (
	"time"

	"github.com/nngn/engine/internal/component"
	"github.com/nngn/engine/internal/core/ecs"
	coresys "github.com/nngn/engine/internal/core/system"
	"github.com/nngn/engine/internal/world"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end
// and clears per-tick motion flags.
// Phase 3 (Cleanup).
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.Flush()
	s.world.Motion.Each(func(_ ecs.EntityID, m *component.Motion) {
		m.PosUpdated = false
	})
}
