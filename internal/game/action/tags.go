package action

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TagSet is an immutable set of hierarchical category labels such as
// "state.grounded" or "weapon.sword". A tag matches itself and any
// descendant ("state" matches "state.grounded").
type TagSet struct {
	tags []string
}

// NewTagSet builds a TagSet from labels, dropping blanks and duplicates.
//
// Postcondition: Tags() is sorted and free of duplicates.
func NewTagSet(labels ...string) TagSet {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) == 0 {
		return TagSet{}
	}
	sort.Strings(out)
	return TagSet{tags: out}
}

// Tags returns a copy of the labels in sorted order.
func (s TagSet) Tags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Len returns the number of labels.
func (s TagSet) Len() int { return len(s.tags) }

// IsZero reports whether the set has no labels. It lets YAML omitempty drop empty sets.
func (s TagSet) IsZero() bool { return len(s.tags) == 0 }

// IsEmpty reports whether the set has no labels.
func (s TagSet) IsEmpty() bool { return len(s.tags) == 0 }

// Has reports whether some label in s equals tag or is a descendant of tag.
func (s TagSet) Has(tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range s.tags {
		if t == tag || strings.HasPrefix(t, tag+".") {
			return true
		}
	}
	return false
}

// HasAll reports whether s has every label in other. An empty other is satisfied.
func (s TagSet) HasAll(other TagSet) bool {
	for _, t := range other.tags {
		if !s.Has(t) {
			return false
		}
	}
	return true
}

// HasAny reports whether s has at least one label in other.
func (s TagSet) HasAny(other TagSet) bool {
	for _, t := range other.tags {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// With returns a new set containing s plus labels.
func (s TagSet) With(labels ...string) TagSet {
	return NewTagSet(append(s.Tags(), labels...)...)
}

// UnmarshalYAML decodes a TagSet from a YAML sequence of strings.
func (s *TagSet) UnmarshalYAML(n *yaml.Node) error {
	var labels []string
	if err := n.Decode(&labels); err != nil {
		return err
	}
	*s = NewTagSet(labels...)
	return nil
}

// MarshalYAML encodes a TagSet as a sequence of strings.
func (s TagSet) MarshalYAML() (any, error) { return s.Tags(), nil }
