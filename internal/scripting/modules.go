package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.random.jitter(magnitude) -> number in [-magnitude, magnitude]
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "random", m.randomModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		fn := fn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) randomModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "jitter", L.NewFunction(func(L *lua.LState) int {
		magnitude := float64(L.CheckNumber(1))
		if magnitude < 0 {
			L.ArgError(1, "magnitude must not be negative")
			return 0
		}
		L.Push(lua.LNumber(m.jitter.Jitter(magnitude)))
		return 1
	}))
	return mod
}
