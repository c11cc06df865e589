// Package scripting provides a sandboxed GopherLua execution environment for
// designer-authored scorer hooks and AI preconditions. It has no dependency on
// combat domain packages; scripts see only primitive arguments and the
// engine.* modules.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of a single hook call or
// script file when no per-VM limit is configured.
const DefaultInstructionLimit = 100_000

// strippedGlobals are base-library functions a scorer script must not reach.
// Scripts log through engine.log instead of print.
var strippedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "require", "module",
	"collectgarbage", "print", "setfenv", "getfenv", "newproxy", "_printregs",
}

// budget bounds one Lua call. GopherLua polls Done once per opcode, so
// cancelling after limit polls is an exact instruction count.
type budget struct {
	context.Context
	cancel    context.CancelFunc
	limit     int
	remaining atomic.Int64
	exhausted atomic.Bool
}

// Done spends one instruction.
func (b *budget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 && !b.exhausted.Swap(true) {
		b.cancel()
	}
	return b.Context.Done()
}

// Exhausted reports whether the call ran out of instructions.
func (b *budget) Exhausted() bool { return b.exhausted.Load() }

// release frees the budget's context.
func (b *budget) release() { b.cancel() }

// arm installs a fresh budget of instLimit opcodes on L; 0 or less selects
// DefaultInstructionLimit.
func arm(L *lua.LState, instLimit int) *budget {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel, limit: instLimit}
	b.remaining.Store(int64(instLimit))
	L.SetContext(b)
	return b
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string and math libraries, minus strippedGlobals, and an armed
// instruction budget.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState ready for RegisterModules and DoFile.
// The caller owns the LState and must call L.Close() when done.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	arm(L, instLimit)
	return L
}
