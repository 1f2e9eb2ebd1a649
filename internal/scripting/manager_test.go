package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roadwar/internal/game/dice"
	"github.com/cory-johannsen/roadwar/internal/scripting"
)

func newTestManager(t testing.TB, faces ...int) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	var src dice.Source = dice.NewCryptoSource()
	if len(faces) > 0 {
		src = dice.NewSequenceSource(faces...)
	}
	return scripting.NewManager(dice.NewLoggedRoller(src, logger), logger), logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0o644))
	return dir
}

func TestManager_Call_PassesTableAndReturnsValue(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function sum(args)
			return args.a + args.b
		end
	`)
	require.NoError(t, mgr.LoadScope(scripting.ScopeRules, dir, 0))
	ret, err := mgr.Call(scripting.ScopeRules, "sum", map[string]any{"a": 3, "b": 4})
	require.NoError(t, err)
	assert.Equal(t, 7.0, ret)
	assert.True(t, mgr.Has(scripting.ScopeRules, "sum"))
	assert.False(t, mgr.Has(scripting.ScopeRules, "nope"))
}

func TestManager_Call_TableResult(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function decide(args)
			return { retry = true, target = args.primary, penalty = -2 }
		end
	`)
	require.NoError(t, mgr.LoadScope(scripting.ScopeRules, dir, 0))
	ret, err := mgr.Call(scripting.ScopeRules, "decide", map[string]any{"primary": "chassis"})
	require.NoError(t, err)
	m, ok := ret.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, m["retry"])
	assert.Equal(t, "chassis", m["target"])
	assert.Equal(t, -2.0, m["penalty"])
}

func TestManager_Call_MissingHookOrScope_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.LoadScope(scripting.ScopeEffects, dir, 0))

	ret, err := mgr.Call(scripting.ScopeEffects, "nonexistent_hook", nil)
	require.NoError(t, err)
	assert.Nil(t, ret)

	ret, err = mgr.Call("nowhere", "anything", nil)
	require.NoError(t, err)
	assert.Nil(t, ret)
}

func TestManager_Call_RuntimeErrorLoggedAndReturned(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function boom(args)
			error("kaboom")
		end
	`)
	require.NoError(t, mgr.LoadScope(scripting.ScopeRules, dir, 0))
	_, err := mgr.Call(scripting.ScopeRules, "boom", nil)
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestManager_Call_InstructionBudgetIsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function spin(args)
			while true do end
		end
		function count(args)
			local n = 0
			for i = 1, 100 do n = n + 1 end
			return n
		end
	`)
	require.NoError(t, mgr.LoadScope(scripting.ScopeRules, dir, 2000))
	_, err := mgr.Call(scripting.ScopeRules, "spin", nil)
	assert.Error(t, err)
	for i := 0; i < 3; i++ {
		ret, err := mgr.Call(scripting.ScopeRules, "count", nil)
		require.NoError(t, err)
		assert.Equal(t, 100.0, ret)
	}
}

func TestManager_EngineRollUsesRoller(t *testing.T) {
	mgr, _ := newTestManager(t, 4, 5)
	dir := writeTempLua(t, "roll.lua", `
		function roll(args)
			return engine.roll(args.expr)
		end
		function bad_roll(args)
			local total, err = engine.roll("banana")
			return err
		end
	`)
	require.NoError(t, mgr.LoadScope(scripting.ScopeEffects, dir, 0))
	ret, err := mgr.Call(scripting.ScopeEffects, "roll", map[string]any{"expr": "2d6+1"})
	require.NoError(t, err)
	assert.Equal(t, 10.0, ret)

	ret, err = mgr.Call(scripting.ScopeEffects, "bad_roll", nil)
	require.NoError(t, err)
	assert.Contains(t, ret, "dice")
}

func TestManager_LoadScope_ErrorKeepsPreviousVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	good := writeTempLua(t, "a.lua", `function ping(args) return "pong" end`)
	require.NoError(t, mgr.LoadScope(scripting.ScopeRules, good, 0))
	bad := writeTempLua(t, "b.lua", `function (`)
	assert.Error(t, mgr.LoadScope(scripting.ScopeRules, bad, 0))
	assert.Error(t, mgr.LoadScope(scripting.ScopeRules, filepath.Join(good, "missing"), 0))

	ret, err := mgr.Call(scripting.ScopeRules, "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", ret)
}

func TestManager_ConcurrentCalls(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `function double(args) return args.n * 2 end`)
	require.NoError(t, mgr.LoadScope(scripting.ScopeRules, dir, 0))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ret, err := mgr.Call(scripting.ScopeRules, "double", map[string]any{"n": n})
			assert.NoError(t, err)
			assert.Equal(t, float64(n*2), ret)
		}(i)
	}
	wg.Wait()
}

func TestToLuaFromLua_Property(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "s")
		n := rapid.IntRange(-1000, 1000).Draw(rt, "n")
		b := rapid.Bool().Draw(rt, "b")
		back := scripting.FromLua(scripting.ToLua(L, map[string]any{"s": s, "n": n, "b": b}))
		m, ok := back.(map[string]any)
		require.True(rt, ok)
		assert.Equal(rt, s, m["s"])
		assert.Equal(rt, float64(n), m["n"])
		assert.Equal(rt, b, m["b"])
	})
}
