package uaparser

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

//go:embed regexes.yaml
var defaultRules []byte

// Category is one classification dimension.
type Category string

const (
	CategoryBrowser Category = "browser"
	CategoryCPU     Category = "cpu"
	CategoryDevice  Category = "device"
	CategoryEngine  Category = "engine"
	CategoryOS      Category = "os"
)

// Categories lists every category in evaluation order.
func Categories() []Category {
	return []Category{CategoryBrowser, CategoryCPU, CategoryDevice, CategoryEngine, CategoryOS}
}

// ParseCategory returns the category named s.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if len(c.Fields()) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Fields returns the declared field set of the category. The browser major
// field is derived after matching and is not listed.
func (c Category) Fields() []Field {
	switch c {
	case CategoryBrowser, CategoryEngine, CategoryOS:
		return []Field{FieldName, FieldVersion}
	case CategoryCPU:
		return []Field{FieldArchitecture}
	case CategoryDevice:
		return []Field{FieldVendor, FieldModel, FieldType}
	}
	return nil
}

// RuleSet is an immutable snapshot of the five category tables together with
// the alias maps and transforms rule files may reference.
type RuleSet struct {
	tables     map[Category]*Table
	maps       map[string]*AliasMap
	transforms map[string]Transform
	timeout    time.Duration
}

// Table returns the table of category c, or nil for an unknown category.
func (rs *RuleSet) Table(c Category) *Table { return rs.tables[c] }

// AliasMap returns the alias map registered under name.
func (rs *RuleSet) AliasMap(name string) (*AliasMap, bool) {
	m, ok := rs.maps[name]
	return m, ok
}

// Transform returns the transform registered under name.
func (rs *RuleSet) Transform(name string) (Transform, bool) {
	t, ok := rs.transforms[name]
	return t, ok
}

// Match evaluates the table of category c against subject and returns a
// fully seeded record.
func (rs *RuleSet) Match(c Category, subject string) Record {
	return Match(subject, rs.tables[c], NewRecord(c.Fields()...))
}

// Extensions maps a category to the groups to evaluate ahead of its
// built-in groups.
type Extensions map[Category][]*Group

// Extend returns a new RuleSet whose tables carry ext's groups ahead of
// base's. Categories ext does not mention share base's table. base is never
// modified.
func Extend(base *RuleSet, ext Extensions) *RuleSet {
	out := &RuleSet{
		tables:     make(map[Category]*Table, len(base.tables)),
		maps:       base.maps,
		transforms: base.transforms,
		timeout:    base.timeout,
	}
	for c, t := range base.tables {
		if groups := ext[c]; len(groups) > 0 {
			out.tables[c] = t.Prepend(groups...)
			continue
		}
		out.tables[c] = t
	}
	return out
}

// Extend is the method form of Extend.
func (rs *RuleSet) Extend(ext Extensions) *RuleSet { return Extend(rs, ext) }

// LoadOption configures rule loading.
type LoadOption func(*loadConfig)

type loadConfig struct {
	logger  *zap.Logger
	timeout time.Duration
}

// WithLoadLogger logs table compilation at debug level.
func WithLoadLogger(l *zap.Logger) LoadOption {
	return func(c *loadConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMatchTimeout bounds evaluation of backtracking patterns.
func WithMatchTimeout(d time.Duration) LoadOption {
	return func(c *loadConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

var (
	defaultOnce sync.Once
	defaultSet  *RuleSet
)

// Default returns the built-in rule set. It is compiled once and shared.
func Default() *RuleSet {
	defaultOnce.Do(func() {
		rs, err := NewFromBytes(defaultRules)
		if err != nil {
			panic(fmt.Sprintf("uaparser: built-in rules: %v", err))
		}
		defaultSet = rs
	})
	return defaultSet
}

// DefaultRules returns a copy of the built-in rule file.
func DefaultRules() []byte {
	return append([]byte(nil), defaultRules...)
}

// NewFromBytes decodes and compiles a complete rule file. Every pattern is
// compiled up front; the first invalid one fails the whole load.
func NewFromBytes(data []byte, opts ...LoadOption) (*RuleSet, error) {
	cfg := newLoadConfig(opts)

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrParsingRules, err)
	}

	rs := &RuleSet{
		tables:     make(map[Category]*Table, len(Categories())),
		maps:       make(map[string]*AliasMap, len(doc.Maps)),
		transforms: builtinTransforms(),
		timeout:    cfg.timeout,
	}
	for name, entries := range doc.Maps {
		aliases := make([]Alias, 0, len(entries))
		for _, e := range entries {
			aliases = append(aliases, Alias{Canonical: e.Canonical, Aliases: e.Aliases})
		}
		m, err := NewAliasMap(name, aliases...)
		if err != nil {
			return nil, err
		}
		rs.maps[name] = m
		rs.transforms[name] = m.Transform()
	}

	tables, err := compileCategories(doc.categories(), rs.transforms, cfg)
	if err != nil {
		return nil, err
	}
	for _, c := range Categories() {
		rs.tables[c] = NewTable(tables[c]...)
	}
	return rs, nil
}

// ParseExtensions decodes extension groups in the rule file format. Field
// specs may reference the transforms and alias maps of rs.
func (rs *RuleSet) ParseExtensions(data []byte, opts ...LoadOption) (Extensions, error) {
	cfg := newLoadConfig(append([]LoadOption{WithMatchTimeout(rs.timeout)}, opts...))

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrParsingRules, err)
	}
	if len(doc.Maps) > 0 {
		return nil, fmt.Errorf("%w: extensions cannot declare alias maps", ErrParsingRules)
	}

	tables, err := compileCategories(doc.categories(), rs.transforms, cfg)
	if err != nil {
		return nil, err
	}
	ext := make(Extensions, len(tables))
	for c, groups := range tables {
		if len(groups) > 0 {
			ext[c] = groups
		}
	}
	return ext, nil
}

func newLoadConfig(opts []LoadOption) loadConfig {
	cfg := loadConfig{logger: zap.NewNop(), timeout: DefaultMatchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// compileCategories compiles each category concurrently; transforms is only
// read.
func compileCategories(docs map[Category][]groupDoc, transforms map[string]Transform, cfg loadConfig) (map[Category][]*Group, error) {
	var (
		mu  sync.Mutex
		out = make(map[Category][]*Group, len(docs))
		eg  errgroup.Group
	)
	for c, groups := range docs {
		eg.Go(func() error {
			compiled := make([]*Group, 0, len(groups))
			fallbacks := 0
			for i, gd := range groups {
				g, err := gd.compile(transforms, cfg.timeout)
				if err != nil {
					return fmt.Errorf("%s group %d: %w", c, i, err)
				}
				for _, p := range g.patterns {
					if p.Engine() == EngineBacktrack {
						fallbacks++
					}
				}
				compiled = append(compiled, g)
			}
			cfg.logger.Debug("compiled rule table",
				zap.String("category", string(c)),
				zap.Int("groups", len(compiled)),
				zap.Int("backtrack_patterns", fallbacks),
			)

			mu.Lock()
			out[c] = compiled
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type ruleFile struct {
	Maps    map[string][]aliasDoc `yaml:"maps"`
	Browser []groupDoc            `yaml:"browser"`
	CPU     []groupDoc            `yaml:"cpu"`
	Device  []groupDoc            `yaml:"device"`
	Engine  []groupDoc            `yaml:"engine"`
	OS      []groupDoc            `yaml:"os"`
}

func (f ruleFile) categories() map[Category][]groupDoc {
	return map[Category][]groupDoc{
		CategoryBrowser: f.Browser,
		CategoryCPU:     f.CPU,
		CategoryDevice:  f.Device,
		CategoryEngine:  f.Engine,
		CategoryOS:      f.OS,
	}
}

type aliasDoc struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

type groupDoc struct {
	Regexes   []string   `yaml:"regexes"`
	RegexFlag string     `yaml:"regex_flag"`
	Fields    []fieldDoc `yaml:"fields"`
}

func (gd groupDoc) compile(transforms map[string]Transform, timeout time.Duration) (*Group, error) {
	flags := ""
	if strings.Contains(gd.RegexFlag, "i") {
		flags = "(?i)"
	}
	patterns := make([]string, len(gd.Regexes))
	for i, re := range gd.Regexes {
		patterns[i] = flags + re
	}

	specs := make([]FieldSpec, len(gd.Fields))
	for i, fd := range gd.Fields {
		spec, err := fd.spec(transforms)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	return newGroup(patterns, specs, timeout)
}

// fieldDoc is either a bare field name or a mapping describing a constant,
// a named transform or a replacement.
type fieldDoc struct {
	Field   string  `yaml:"field"`
	Value   *string `yaml:"value"`
	Func    string  `yaml:"func"`
	Replace *string `yaml:"replace"`
	With    string  `yaml:"with"`
}

func (fd *fieldDoc) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		*fd = fieldDoc{Field: name}
		return nil
	}
	type plain fieldDoc
	return unmarshal((*plain)(fd))
}

func (fd fieldDoc) spec(transforms map[string]Transform) (FieldSpec, error) {
	field := Field(fd.Field)
	if field == "" {
		return FieldSpec{}, fmt.Errorf("%w: missing field name", ErrInvalidFieldSpec)
	}

	var fn *Transform
	if fd.Func != "" {
		t, ok := transforms[fd.Func]
		if !ok {
			return FieldSpec{}, fmt.Errorf("%w %q for field %s", ErrUnknownTransform, fd.Func, field)
		}
		fn = &t
	}

	switch {
	case fd.Value != nil:
		if fn != nil || fd.Replace != nil {
			return FieldSpec{}, fmt.Errorf("%w: %s mixes a constant with a transform", ErrInvalidFieldSpec, field)
		}
		return Constant(field, *fd.Value), nil
	case fd.Replace != nil:
		if fn != nil {
			return ReplaceThen(field, *fd.Replace, fd.With, *fn), nil
		}
		return ReplaceThen(field, *fd.Replace, fd.With), nil
	case fn != nil:
		return Computed(field, *fn), nil
	}
	return Direct(field), nil
}
