package reaction

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Reactions struct {
		Name string     `yaml:"name"`
		Rows []Reaction `yaml:"rows"`
	} `yaml:"reactions"`
}

// LoadTableBytes parses a YAML reaction table document.
//
// Postcondition: returns error on unknown fields, parse failure, or an invalid row.
func LoadTableBytes(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f tableFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("reaction: parsing table: %w", err)
	}
	return NewTable(f.Reactions.Name, f.Reactions.Rows)
}

// LoadTable reads a single reaction table file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reaction: reading %s: %w", path, err)
	}
	t, err := LoadTableBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// LoadTables reads every *.yaml file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error on the first bad file or on a duplicate table name.
func LoadTables(dir string) ([]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reaction.LoadTables: reading %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	seen := make(map[string]struct{}, len(names))
	tables := make([]*Table, 0, len(names))
	for _, n := range names {
		t, err := LoadTable(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t.Name()]; dup {
			return nil, fmt.Errorf("reaction.LoadTables: duplicate table name %q in %s", t.Name(), n)
		}
		seen[t.Name()] = struct{}{}
		tables = append(tables, t)
	}
	return tables, nil
}

// MarshalTable encodes t in the layout LoadTableBytes accepts.
func MarshalTable(t *Table) ([]byte, error) {
	var f tableFile
	f.Reactions.Name = t.Name()
	f.Reactions.Rows = t.Rows()
	return yaml.Marshal(&f)
}
