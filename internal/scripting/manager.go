package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/dice"
)

// Script scopes loaded by the resolution core.
const (
	ScopeRules   = "rules"
	ScopeEffects = "effects"
)

type vm struct {
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per scope and dispatches hook calls.
//
// Each scope's LState is single-threaded; the manager mutex serialises every
// call so a Manager may be shared.
type Manager struct {
	mu     sync.Mutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager. Scripts reach dice through roller.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a Manager with no scopes loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil || logger == nil {
		panic("scripting: NewManager precondition violated: roller and logger must be non-nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers the engine module,
// then executes every *.lua file in scriptDir in lexicographic order.
// Reloading a scope replaces its VM.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: The scope VM is registered, or an error is returned and the previous VM is kept.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	if scope == "" {
		return fmt.Errorf("scripting: scope must not be empty")
	}
	L, cancel := NewSandboxedState(instLimit)
	defer cancel()
	m.RegisterModules(L, scope)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, scope, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)
	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
		}
	}
	L.RemoveContext()

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.vms[scope]; ok {
		old.L.Close()
	}
	m.vms[scope] = &vm{L: L, limit: effectiveLimit(instLimit)}
	m.logger.Info("scripts loaded",
		zap.String("scope", scope),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Has reports whether hook is a function defined in scope.
func (m *Manager) Has(scope, hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vms[scope]
	if !ok {
		return false
	}
	return v.L.GetGlobal(hook).Type() == lua.LTFunction
}

// Call invokes the Lua global function hook in scope with args converted to a
// single table argument, and returns the first result converted back to Go.
// A missing scope or hook is a no-op returning (nil, nil). Lua runtime errors,
// including an exhausted instruction budget, are logged at warn level and
// returned.
//
// Postcondition: The returned value is nil, bool, float64, string, or map[string]any.
func (m *Manager) Call(scope, hook string, args map[string]any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vms[scope]
	if !ok {
		m.logger.Debug("scripting: no VM for scope", zap.String("scope", scope), zap.String("hook", hook))
		return nil, nil
	}
	L := v.L
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return nil, nil
	}

	ctx, cancel := newCountingContext(v.limit)
	L.SetContext(ctx)
	defer func() {
		L.RemoveContext()
		cancel()
	}()

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, ToLua(L, args)); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return nil, fmt.Errorf("scripting: %s.%s: %w", scope, hook, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return FromLua(ret), nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for scope, v := range m.vms {
		v.L.Close()
		delete(m.vms, scope)
	}
}

// ToLua converts a Go value into a Lua value. Supported inputs are nil, bool,
// the integer and float kinds, string, []string, []any, map[string]any and
// map[string]int. Anything else becomes its fmt.Sprint string.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, e := range x {
			t.Append(ToLua(L, e))
		}
		return t
	case map[string]int:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, lua.LNumber(e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, ToLua(L, e))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// FromLua converts a Lua value back to Go. Tables become map[string]any keyed
// by their string keys; array parts are keyed "1", "2", ...
func FromLua(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		out := make(map[string]any)
		x.ForEach(func(k, val lua.LValue) {
			out[k.String()] = FromLua(val)
		})
		return out
	default:
		return nil
	}
}
