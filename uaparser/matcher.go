package uaparser

import (
	"fmt"
	"time"
)

// Record holds the fields of one category. An empty value means the field is
// unset. A record seeded with NewRecord always carries every declared field.
type Record map[Field]string

// NewRecord returns a record with every field present and unset.
func NewRecord(fields ...Field) Record {
	r := make(Record, len(fields))
	for _, f := range fields {
		r[f] = ""
	}
	return r
}

// Group is a Pattern Rule Group: ordered alternatives sharing one list of
// field specs. Spec i reads capture group i+1 of whichever alternative matched.
type Group struct {
	patterns []*Pattern
	specs    []FieldSpec
}

// NewGroup compiles the alternatives and any replace patterns of specs.
func NewGroup(patterns []string, specs ...FieldSpec) (*Group, error) {
	return newGroup(patterns, specs, DefaultMatchTimeout)
}

// MustGroup is like NewGroup but panics on error.
func MustGroup(patterns []string, specs ...FieldSpec) *Group {
	g, err := NewGroup(patterns, specs...)
	if err != nil {
		panic(err)
	}
	return g
}

func newGroup(patterns []string, specs []FieldSpec, timeout time.Duration) (*Group, error) {
	if len(patterns) == 0 {
		return nil, ErrEmptyGroup
	}

	g := &Group{
		patterns: make([]*Pattern, 0, len(patterns)),
		specs:    make([]FieldSpec, len(specs)),
	}
	for _, expr := range patterns {
		p, err := CompileTimeout(expr, timeout)
		if err != nil {
			return nil, err
		}
		g.patterns = append(g.patterns, p)
	}

	copy(g.specs, specs)
	for i := range g.specs {
		spec := &g.specs[i]
		if spec.field == "" {
			return nil, fmt.Errorf("%w: spec %d has no field", ErrInvalidFieldSpec, i)
		}
		switch spec.kind {
		case kindComputed:
			if spec.fn == nil || spec.fn.Fn == nil {
				return nil, fmt.Errorf("%w: %s has no function", ErrInvalidFieldSpec, spec.field)
			}
		case kindReplace:
			re, err := CompileTimeout(spec.expr, timeout)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFieldSpec, spec.field, err)
			}
			spec.re = re
		}
	}
	return g, nil
}

// Patterns returns the compiled alternatives in priority order.
func (g *Group) Patterns() []*Pattern {
	return append([]*Pattern(nil), g.patterns...)
}

// Specs returns the field specs in slot order.
func (g *Group) Specs() []FieldSpec {
	return append([]FieldSpec(nil), g.specs...)
}

// find runs the alternatives in order and returns the submatches of the first
// one that matches.
func (g *Group) find(subject string) []string {
	for _, p := range g.patterns {
		if m := p.FindStringSubmatch(subject); m != nil {
			return m
		}
	}
	return nil
}

func (g *Group) apply(rec Record, captures []string) {
	for i, spec := range g.specs {
		var captured string
		if slot := i + 1; slot < len(captures) {
			captured = captures[slot]
		}
		rec[spec.field] = spec.apply(captured)
	}
}

// Table is the ordered rule list of one category. It is never modified after
// construction.
type Table struct {
	groups []*Group
}

// NewTable returns a table evaluating groups in the given order.
func NewTable(groups ...*Group) *Table {
	return &Table{groups: append([]*Group(nil), groups...)}
}

// Len returns the number of groups.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.groups)
}

// Groups returns the groups in priority order.
func (t *Table) Groups() []*Group {
	if t == nil {
		return nil
	}
	return append([]*Group(nil), t.groups...)
}

// Prepend returns a new table with groups ahead of the receiver's groups.
func (t *Table) Prepend(groups ...*Group) *Table {
	merged := make([]*Group, 0, len(groups)+t.Len())
	merged = append(merged, groups...)
	if t != nil {
		merged = append(merged, t.groups...)
	}
	return &Table{groups: merged}
}

// Match evaluates table against subject and writes the fields of the first
// matching group into rec, which is returned. Later groups are not tried once
// one matches; when nothing matches rec is returned untouched.
func Match(subject string, table *Table, rec Record) Record {
	rec, _ = MatchIndex(subject, table, rec)
	return rec
}

// MatchIndex is like Match and also reports the index of the group that
// matched, or -1.
func MatchIndex(subject string, table *Table, rec Record) (Record, int) {
	if rec == nil {
		rec = Record{}
	}
	if table == nil {
		return rec, -1
	}
	for i, g := range table.groups {
		captures := g.find(subject)
		if captures == nil {
			continue
		}
		g.apply(rec, captures)
		return rec, i
	}
	return rec, -1
}
