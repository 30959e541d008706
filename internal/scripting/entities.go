package scripting

import (
	"fmt"
	"strconv"

	"github.com/nngn/engine/internal/component"
	"github.com/nngn/engine/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
)

// Registry is the handle surface scripts see. *ecs.EntityRegistry and
// *world.State both satisfy it.
type Registry interface {
	Max() int
	N() int
	SetMax(n int) error
	Add() (ecs.EntityID, error)
	Remove(id ecs.EntityID) error
	Alive(id ecs.EntityID) bool
	Name(id ecs.EntityID) (string, error)
	SetName(id ecs.EntityID, s string) error
	Tag(id ecs.EntityID) (string, error)
	SetTag(id ecs.EntityID, s string) error
	NameHash(id ecs.EntityID) (uint64, error)
	ByName(s string) []ecs.EntityID
	ByTag(s string) []ecs.EntityID
}

// Mover is implemented by registries that also own motion components.
// When present, the kinematic setters are exposed too.
type Mover interface {
	Pos(id ecs.EntityID) (component.Vec3, error)
	SetPos(id ecs.EntityID, p component.Vec3) error
	SetVel(id ecs.EntityID, v component.Vec3) error
	SetAcc(id ecs.EntityID, a component.Vec3) error
	SetMaxVel(id ecs.EntityID, v float32) error
	SetParent(child, parent ecs.EntityID) error
	SetCollider(id ecs.EntityID) error
}

const entityTypeName = "entity"

func registerEntityType(L *lua.LState) {
	mt := L.NewTypeMetatable(entityTypeName)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkEntity(L, 1).String()))
		return 1
	}))
	L.SetField(mt, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkEntity(L, 1) == checkEntity(L, 2)))
		return 1
	}))
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"index": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkEntity(L, 1).Index()))
			return 1
		},
		"generation": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkEntity(L, 1).Generation()))
			return 1
		},
	}))
}

func pushEntity(L *lua.LState, id ecs.EntityID) {
	ud := L.NewUserData()
	ud.Value = id
	L.SetMetatable(ud, L.GetTypeMetatable(entityTypeName))
	L.Push(ud)
}

func checkEntity(L *lua.LState, n int) ecs.EntityID {
	ud := L.CheckUserData(n)
	id, ok := ud.Value.(ecs.EntityID)
	if !ok {
		L.ArgError(n, "entity expected")
	}
	return id
}

// raise turns a registry error into a Lua error, catchable with pcall.
func raise(L *lua.LState, err error) {
	L.RaiseError("%s", err.Error())
}

func pushEntities(L *lua.LState, ids []ecs.EntityID) {
	t := L.CreateTable(len(ids), 0)
	for i, id := range ids {
		pushEntity(L, id)
		t.RawSetInt(i+1, L.Get(-1))
		L.Pop(1)
	}
	L.Push(t)
}

func formatHash(h uint64) string { return fmt.Sprintf("%016x", h) }

func newEntitiesModule(L *lua.LState, reg Registry) *lua.LTable {
	fns := map[string]lua.LGFunction{
		"max": func(L *lua.LState) int {
			L.Push(lua.LNumber(reg.Max()))
			return 1
		},
		"n": func(L *lua.LState) int {
			L.Push(lua.LNumber(reg.N()))
			return 1
		},
		"set_max": func(L *lua.LState) int {
			if err := reg.SetMax(L.CheckInt(1)); err != nil {
				raise(L, err)
			}
			return 0
		},
		"add": func(L *lua.LState) int {
			id, err := reg.Add()
			if err != nil {
				raise(L, err)
			}
			pushEntity(L, id)
			return 1
		},
		"remove": func(L *lua.LState) int {
			if err := reg.Remove(checkEntity(L, 1)); err != nil {
				raise(L, err)
			}
			return 0
		},
		"alive": func(L *lua.LState) int {
			L.Push(lua.LBool(reg.Alive(checkEntity(L, 1))))
			return 1
		},
		"name": func(L *lua.LState) int {
			s, err := reg.Name(checkEntity(L, 1))
			if err != nil {
				raise(L, err)
			}
			L.Push(lua.LString(s))
			return 1
		},
		"set_name": func(L *lua.LState) int {
			if err := reg.SetName(checkEntity(L, 1), L.CheckString(2)); err != nil {
				raise(L, err)
			}
			return 0
		},
		"tag": func(L *lua.LState) int {
			s, err := reg.Tag(checkEntity(L, 1))
			if err != nil {
				raise(L, err)
			}
			L.Push(lua.LString(s))
			return 1
		},
		"set_tag": func(L *lua.LState) int {
			if err := reg.SetTag(checkEntity(L, 1), L.CheckString(2)); err != nil {
				raise(L, err)
			}
			return 0
		},
		// Hashes are hex strings: a Lua number cannot hold 64 bits exactly.
		"name_hash": func(L *lua.LState) int {
			h, err := reg.NameHash(checkEntity(L, 1))
			if err != nil {
				raise(L, err)
			}
			L.Push(lua.LString(formatHash(h)))
			return 1
		},
		"hash": func(L *lua.LState) int {
			L.Push(lua.LString(formatHash(ecs.Hash(L.CheckString(1)))))
			return 1
		},
		"by_name": func(L *lua.LState) int {
			pushEntities(L, reg.ByName(L.CheckString(1)))
			return 1
		},
		"by_tag": func(L *lua.LState) int {
			pushEntities(L, reg.ByTag(L.CheckString(1)))
			return 1
		},
	}
	if hr, ok := reg.(interface {
		ByNameHash(h uint64) []ecs.EntityID
	}); ok {
		fns["by_name_hash"] = func(L *lua.LState) int {
			h, err := strconv.ParseUint(L.CheckString(1), 16, 64)
			if err != nil {
				L.ArgError(1, "hex hash expected")
			}
			pushEntities(L, hr.ByNameHash(h))
			return 1
		}
	}
	if mv, ok := reg.(Mover); ok {
		addMoverFuncs(fns, mv)
	}
	return L.SetFuncs(L.NewTable(), fns)
}

func checkVec3(L *lua.LState, n int) component.Vec3 {
	return component.Vec3{
		X: float32(L.CheckNumber(n)),
		Y: float32(L.CheckNumber(n + 1)),
		Z: float32(L.OptNumber(n+2, 0)),
	}
}

func addMoverFuncs(fns map[string]lua.LGFunction, mv Mover) {
	vecSetter := func(set func(ecs.EntityID, component.Vec3) error) lua.LGFunction {
		return func(L *lua.LState) int {
			if err := set(checkEntity(L, 1), checkVec3(L, 2)); err != nil {
				raise(L, err)
			}
			return 0
		}
	}
	fns["set_pos"] = vecSetter(mv.SetPos)
	fns["set_vel"] = vecSetter(mv.SetVel)
	fns["set_acc"] = vecSetter(mv.SetAcc)
	fns["pos"] = func(L *lua.LState) int {
		p, err := mv.Pos(checkEntity(L, 1))
		if err != nil {
			raise(L, err)
		}
		L.Push(lua.LNumber(p.X))
		L.Push(lua.LNumber(p.Y))
		L.Push(lua.LNumber(p.Z))
		return 3
	}
	fns["set_max_vel"] = func(L *lua.LState) int {
		if err := mv.SetMaxVel(checkEntity(L, 1), float32(L.CheckNumber(2))); err != nil {
			raise(L, err)
		}
		return 0
	}
	fns["set_parent"] = func(L *lua.LState) int {
		var parent ecs.EntityID
		if L.Get(2) != lua.LNil {
			parent = checkEntity(L, 2)
		}
		if err := mv.SetParent(checkEntity(L, 1), parent); err != nil {
			raise(L, err)
		}
		return 0
	}
	fns["set_collider"] = func(L *lua.LState) int {
		if err := mv.SetCollider(checkEntity(L, 1)); err != nil {
			raise(L, err)
		}
		return 0
	}
}
