package content

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cory-johannsen/motioncombat/internal/scripting"
)

// LoadScripts loads the Lua scripts under dir into mgr. Top-level *.lua files
// go into the global VM; each subdirectory becomes a VM named after it.
//
// Postcondition: returns the IDs of the VMs loaded, global first when present.
func LoadScripts(mgr *scripting.Manager, dir string, instLimit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("content: reading scripts: %w", err)
	}
	var loaded []string
	hasTop := false
	for _, e := range entries {
		if !e.IsDir() {
			hasTop = true
			break
		}
	}
	if hasTop {
		if err := mgr.LoadGlobal(dir, instLimit); err != nil {
			return nil, err
		}
		loaded = append(loaded, "__global__")
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := mgr.LoadVM(e.Name(), filepath.Join(dir, e.Name()), instLimit); err != nil {
			return nil, err
		}
		loaded = append(loaded, e.Name())
	}
	return loaded, nil
}
