package action

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk layout of a table document.
type tableFile struct {
	Table struct {
		Name    string  `yaml:"name"`
		Variant Variant `yaml:"variant"`
		Entries []Entry `yaml:"entries"`
	} `yaml:"table"`
}

// LoadTableBytes parses a YAML table document.
//
// Postcondition: returns error on unknown fields, parse failure, or an invalid table.
func LoadTableBytes(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f tableFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("action: parsing table: %w", err)
	}
	if f.Table.Name == "" {
		return nil, fmt.Errorf("action: table document missing top-level 'table.name'")
	}
	return NewTable(f.Table.Name, f.Table.Variant, f.Table.Entries)
}

// LoadTable reads and parses a single YAML table file.
//
// Precondition: path must be a readable file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("action: reading %s: %w", path, err)
	}
	t, err := LoadTableBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// LoadTables reads every *.yaml file in dir, in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error on the first file that fails, or on a duplicate table name.
func LoadTables(dir string) ([]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("action.LoadTables: reading %q: %w", dir, err)
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
	var tables []*Table
	for _, n := range names {
		t, err := LoadTable(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t.Name()]; dup {
			return nil, fmt.Errorf("action.LoadTables: duplicate table name %q in %s", t.Name(), n)
		}
		seen[t.Name()] = struct{}{}
		tables = append(tables, t)
	}
	return tables, nil
}

// MarshalTable encodes t in the document layout LoadTableBytes accepts.
func MarshalTable(t *Table) ([]byte, error) {
	var f tableFile
	f.Table.Name = t.Name()
	f.Table.Variant = t.Variant()
	f.Table.Entries = t.Rows()
	return yaml.Marshal(&f)
}
