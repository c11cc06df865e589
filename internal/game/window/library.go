package window

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Library is a concurrency-safe index of clips by name.
type Library struct {
	mu    sync.RWMutex
	clips map[string]*Clip
}

// NewLibrary returns a Library holding clips.
//
// Postcondition: returns error on an invalid clip or a duplicate name.
func NewLibrary(clips ...*Clip) (*Library, error) {
	l := &Library{clips: make(map[string]*Clip, len(clips))}
	for _, c := range clips {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := l.clips[c.Name]; dup {
			return nil, fmt.Errorf("window.Library: duplicate clip %q", c.Name)
		}
		l.clips[c.Name] = c
	}
	return l, nil
}

// Clip returns the named clip.
func (l *Library) Clip(name string) (*Clip, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.clips[name]
	return c, ok
}

// Names returns all clip names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.clips))
	for n := range l.clips {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Put adds or replaces a clip.
//
// Postcondition: returns error and leaves the library unchanged if c is invalid.
func (l *Library) Put(c *Clip) error {
	if err := c.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clips[c.Name] = c
	return nil
}

type clipFile struct {
	Clips []*Clip `yaml:"clips"`
}

// LoadClips reads every *.yaml file in dir and returns a Library.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error on unknown fields, invalid clips, or duplicate names.
func LoadClips(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("window.LoadClips: reading %q: %w", dir, err)
	}
	var all []*Clip
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("window.LoadClips: reading %s: %w", e.Name(), err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		var f clipFile
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("window.LoadClips: parsing %s: %w", e.Name(), err)
		}
		all = append(all, f.Clips...)
	}
	return NewLibrary(all...)
}
