package system

import (
	coresys "github.com/nngn/engine/internal/core/system"
	"github.com/nngn/engine/internal/world"
	"go.uber.org/zap"
)

func coresysRunner(s *world.State) *coresys.Runner {
	r := coresys.NewRunner()
	r.Register(NewCleanupSystem(s))
	r.Register(NewMotionSystem(s))
	r.Register(NewParentSystem(s, zap.NewNop()))
	r.Register(NewEventDispatchSystem(s.Bus()))
	return r
}
