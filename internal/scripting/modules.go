package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.roll(expr)      -> total, or nil plus an error string
//	engine.log(msg)        -> writes msg at info level
//	engine.scope           -> the scope name
//
// Precondition: L must come from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState, scope string) {
	engine := L.NewTable()
	engine.RawSetString("scope", lua.LString(scope))
	engine.RawSetString("roll", L.NewFunction(func(L *lua.LState) int {
		expr := L.CheckString(1)
		res, err := m.roller.RollExpr(expr)
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LNumber(res.Total()))
		return 1
	}))
	engine.RawSetString("log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("script", zap.String("scope", scope), zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetGlobal("engine", engine)
}
