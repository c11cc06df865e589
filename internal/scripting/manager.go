package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/dice"
)

// globalVMID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no VM is registered under the requested ID.
const globalVMID = "__global__"

// vm is one sandboxed state. Each LState is single-threaded; mu serializes
// calls into it.
type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	closed bool
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed {
		v.L.Close()
		v.closed = true
	}
}

// Manager owns one sandboxed LState per action set or AI domain and exposes
// hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same VM are serialized;
// different VMs run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	jitter *dice.Jitterer
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: jitter and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(jitter *dice.Jitterer, logger *zap.Logger) *Manager {
	if jitter == nil {
		panic("scripting.NewManager: jitter must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		jitter: jitter,
		logger: logger,
	}
}

// LoadVM creates a sandboxed VM for id, registers all engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
// Loading an ID that already exists replaces its VM.
//
// Precondition: id must be non-empty; scriptDir must be a readable directory.
// Postcondition: VM is registered; returns error on Lua load failure, leaving
// any previous VM for id in place.
func (m *Manager) LoadVM(id, scriptDir string, instLimit int) error {
	if id == "" {
		return fmt.Errorf("scripting: VM id must not be empty")
	}
	return m.loadInto(id, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM for shared scripts accessible
// as a CallHook fallback from any VM ID.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalVMID, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		b := arm(L, instLimit)
		err := L.DoFile(path)
		b.release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	if old != nil {
		old.close()
	}
	m.logger.Debug("scripting: VM loaded",
		zap.String("vm", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Has reports whether a VM is registered under id.
func (m *Manager) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[id]
	return ok
}

// IDs returns the registered VM IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for id := range m.vms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CallHook calls the named Lua global function in vmID's VM. If no VM is
// registered under vmID, the __global__ VM is tried as a fallback. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(vmID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[vmID]
	if !ok {
		v = m.vms[globalVMID]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM",
			zap.String("vm", vmID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return lua.LNil, nil
	}

	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	b := arm(v.L, v.limit)
	defer b.release()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		if b.Exhausted() {
			m.logger.Warn("scripting: instruction budget exhausted",
				zap.String("vm", vmID),
				zap.String("hook", hook),
				zap.Int("limit", b.limit),
			)
			return lua.LNil, nil
		}
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("vm", vmID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Unload closes and removes the VM registered under id. Unknown IDs are a no-op.
func (m *Manager) Unload(id string) {
	m.mu.Lock()
	v, ok := m.vms[id]
	delete(m.vms, id)
	m.mu.Unlock()
	if ok {
		v.close()
	}
}

// Close releases every VM.
//
// Postcondition: subsequent CallHook calls return (LNil, nil).
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}
