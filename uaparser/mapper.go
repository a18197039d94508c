package uaparser

import (
	"fmt"
	"strings"

	"github.com/coregx/ahocorasick"
)

// Unknown is the canonical key meaning "recognized, but no value".
// Resolve turns it into an empty result instead of returning it.
const Unknown = "?"

// Alias lists the raw substrings that normalize to Canonical.
type Alias struct {
	Canonical string
	Aliases   []string
}

// AliasMap is an ordered alias table. Entries are tried in order and the
// first one with an alias contained in the value wins.
type AliasMap struct {
	name    string
	entries []aliasEntry
}

type aliasEntry struct {
	canonical string
	automaton *ahocorasick.Automaton
}

// NewAliasMap builds an alias table. Aliases are compared case-insensitively;
// empty aliases are ignored.
func NewAliasMap(name string, entries ...Alias) (*AliasMap, error) {
	m := &AliasMap{name: name, entries: make([]aliasEntry, 0, len(entries))}
	for _, e := range entries {
		entry := aliasEntry{canonical: e.Canonical}
		builder := ahocorasick.NewBuilder()
		patterns := 0
		for _, alias := range e.Aliases {
			if alias == "" {
				continue
			}
			builder.AddPattern([]byte(strings.ToLower(alias)))
			patterns++
		}
		if patterns > 0 {
			automaton, err := builder.Build()
			if err != nil {
				return nil, fmt.Errorf("%w %s[%s]: %w", ErrInvalidAliasMap, name, e.Canonical, err)
			}
			entry.automaton = automaton
		}
		m.entries = append(m.entries, entry)
	}
	return m, nil
}

// MustAliasMap is like NewAliasMap but panics on error.
func MustAliasMap(name string, entries ...Alias) *AliasMap {
	m, err := NewAliasMap(name, entries...)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the name the map was registered under.
func (m *AliasMap) Name() string { return m.name }

// Resolve maps value to the canonical key of the first entry whose alias it
// contains. The Unknown key resolves to "". Unrecognized values are returned
// unchanged.
func (m *AliasMap) Resolve(value string) string {
	if value == "" {
		return value
	}
	haystack := []byte(strings.ToLower(value))
	for _, e := range m.entries {
		if e.automaton == nil || !e.automaton.IsMatch(haystack) {
			continue
		}
		if e.canonical == Unknown {
			return ""
		}
		return e.canonical
	}
	return value
}

// Transform exposes Resolve as a named transform for Computed specs.
func (m *AliasMap) Transform() Transform {
	return Transform{Name: m.name, Fn: m.Resolve}
}

// Resolve is the functional form of m.Resolve.
func Resolve(value string, m *AliasMap) string {
	return m.Resolve(value)
}
