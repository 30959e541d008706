package system

import (
	"time"

	coresys "github.com/nngn/engine/internal/core/system"
	"github.com/nngn/engine/internal/scripting"
)

// ScriptSystem calls the scripts' on_tick(dt) hook, dt in seconds.
// Phase 1 (Update), registered before MotionSystem so scripted velocity
// changes apply in the same tick.
type ScriptSystem struct {
	lua *scripting.Engine
}

func NewScriptSystem(lua *scripting.Engine) *ScriptSystem {
	return &ScriptSystem{lua: lua}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(dt time.Duration) {
	s.lua.CallHook("on_tick", dt.Seconds())
}
