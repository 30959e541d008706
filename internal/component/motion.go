package component

import "github.com/nngn/engine/internal/core/ecs"

// Motion is an entity's kinematic state, integrated by MotionSystem.
// P is relative to the parent when the entity has a Parent component.
type Motion struct {
	P      Vec3
	V      Vec3
	A      Vec3    // consumed (reset to zero) on the next update
	MaxVel float32 // 0 = unbounded

	// PosUpdated is set whenever P changes and cleared at tick end.
	PosUpdated bool
}

// SetPos moves the entity and flags the change for child propagation.
func (m *Motion) SetPos(p Vec3) {
	m.P = p
	m.PosUpdated = true
}

// Parent makes an entity's position relative to another entity.
type Parent struct {
	ID ecs.EntityID
}

// Collider is the physics collaborator's view of an entity. Its position is
// in world space and follows the owning entity's Motion.
type Collider struct {
	Pos Vec3
	Vel Vec3
}
