package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nngn/engine/internal/core/ecs"
	"github.com/nngn/engine/internal/core/event"
	"github.com/nngn/engine/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

func newEngine(t *testing.T, reg Registry) *Engine {
	t.Helper()
	e, err := NewEngine("", reg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func globalString(t *testing.T, e *Engine, name string) string {
	t.Helper()
	v, ok := e.Global(name).(lua.LString)
	require.True(t, ok, "global %s is %s", name, e.Global(name).Type())
	return string(v)
}

func TestAddRemoveFromLua(t *testing.T) {
	reg := ecs.NewEntityRegistry()
	e := newEngine(t, reg)

	require.NoError(t, e.Exec(`
		entities.set_max(3)
		local e0 = entities.add(); entities.set_name(e0, "e0")
		local e1 = entities.add(); entities.set_name(e1, "e1")
		local e2 = entities.add(); entities.set_name(e2, "e2")
		assert(entities.n() == 3)
		entities.remove(e1)
		assert(entities.n() == 2)
		assert(entities.name(e0) == "e0")
		assert(entities.name(e2) == "e2")
		entities.remove(e0)
		e1 = entities.add(); entities.set_name(e1, "e1")
		e0 = entities.add(); entities.set_name(e0, "e0")
		assert(entities.n() == 3)
		names = entities.name(e0) .. entities.name(e1) .. entities.name(e2)
	`))
	assert.Equal(t, "e0e1e2", globalString(t, e, "names"))
	assert.Equal(t, 3, reg.N())
}

func TestStaleHandleIsScriptError(t *testing.T) {
	e := newEngine(t, newRegistry(t, 1))

	require.NoError(t, e.Exec(`
		local h = entities.add()
		entities.remove(h)
		local ok, err = pcall(entities.name, h)
		assert(not ok)
		msg = err
		alive = entities.alive(h)
	`))
	assert.Contains(t, globalString(t, e, "msg"), "stale generation")
	assert.Equal(t, lua.LFalse, e.Global("alive"))
}

func TestOutOfCapacityIsScriptError(t *testing.T) {
	e := newEngine(t, newRegistry(t, 1))
	require.NoError(t, e.Exec(`entities.add()`))

	err := e.Exec(`entities.add()`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity registry is full")
}

func TestEntityUserdata(t *testing.T) {
	e := newEngine(t, newRegistry(t, 2))
	require.NoError(t, e.Exec(`
		local a = entities.add()
		entities.set_name(a, "orc")
		entities.set_tag(a, "enemy")
		local found = entities.by_name("orc")
		same = (#found == 1) and (found[1] == a)
		text = tostring(a)
		idx = a:index()
		gen = a:generation()
		tagged = #entities.by_tag("enemy")
		hashed = #entities.by_name_hash(entities.hash("orc"))
		same_hash = entities.name_hash(a) == entities.hash("orc")
	`))
	assert.Equal(t, lua.LTrue, e.Global("same"))
	assert.Equal(t, "EntityID(0:1)", globalString(t, e, "text"))
	assert.Equal(t, lua.LNumber(0), e.Global("idx"))
	assert.Equal(t, lua.LNumber(1), e.Global("gen"))
	assert.Equal(t, lua.LNumber(1), e.Global("tagged"))
	assert.Equal(t, lua.LNumber(1), e.Global("hashed"))
	assert.Equal(t, lua.LTrue, e.Global("same_hash"))
}

func TestBadArgument(t *testing.T) {
	e := newEngine(t, newRegistry(t, 1))
	err := e.Exec(`entities.name("not an entity")`)
	assert.Error(t, err)
}

func TestMoverBindings(t *testing.T) {
	ws, err := world.NewState(2, event.NewBus(), zap.NewNop())
	require.NoError(t, err)
	e := newEngine(t, ws)

	require.NoError(t, e.Exec(`
		local p = entities.add()
		local c = entities.add()
		entities.set_pos(p, 1, 2, 3)
		entities.set_pos(c, 1, 1)
		entities.set_parent(c, p)
		entities.set_collider(c)
		entities.set_vel(c, 4, 0, 0)
		entities.set_max_vel(c, 2)
		x, y, z = entities.pos(c)
		entities.set_parent(c, nil)
	`))
	assert.Equal(t, lua.LNumber(1), e.Global("x"))
	assert.Equal(t, lua.LNumber(1), e.Global("y"))
	assert.Equal(t, lua.LNumber(0), e.Global("z"))

	child := ecs.NewEntityID(1, 1)
	m, ok := ws.Motion.Get(child)
	require.True(t, ok)
	assert.Equal(t, float32(2), m.MaxVel)
	assert.False(t, ws.Parent.Has(child))
}

func TestMoverAbsentOnBareRegistry(t *testing.T) {
	e := newEngine(t, newRegistry(t, 1))
	require.NoError(t, e.Exec(`missing = entities.set_pos == nil`))
	assert.Equal(t, lua.LTrue, e.Global("missing"))
}

func TestCallHook(t *testing.T) {
	e := newEngine(t, newRegistry(t, 1))
	e.CallHook("on_tick", 0.5) // undefined hooks are ignored

	require.NoError(t, e.Exec(`
		total = 0
		function on_tick(dt) total = total + dt end
		function broken() error("boom") end
	`))
	e.CallHook("on_tick", 0.5)
	e.CallHook("on_tick", 0.25)
	assert.Equal(t, lua.LNumber(0.75), e.Global("total"))

	assert.NotPanics(t, func() { e.CallHook("broken") })
}

func TestLoadScriptsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01_spawn.lua"),
		[]byte(`spawned = entities.add(); entities.set_name(spawned, "boot")`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02_check.lua"),
		[]byte(`booted = entities.name(spawned)`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte(`not lua`), 0o644))

	reg := newRegistry(t, 1)
	e, err := NewEngine(dir, reg, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, "boot", globalString(t, e, "booted"))
	assert.Equal(t, []ecs.EntityID{ecs.NewEntityID(0, 1)}, reg.ByName("boot"))
}

func TestLoadScriptsDirErrors(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "missing"), newRegistry(t, 1), zap.NewNop())
	require.NoError(t, err)
	e.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte(`this is not lua`), 0o644))
	_, err = NewEngine(dir, newRegistry(t, 1), zap.NewNop())
	assert.Error(t, err)
}

func newRegistry(t *testing.T, max int) *ecs.EntityRegistry {
	t.Helper()
	r := ecs.NewEntityRegistry()
	require.NoError(t, r.SetMax(max))
	return r
}
