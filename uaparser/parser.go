package uaparser

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Version is the library version.
const Version = "1.0.0"

// EnvUserAgent is the CGI variable consulted when a parser is built without
// an explicit user agent or request.
const EnvUserAgent = "HTTP_USER_AGENT"

// Mode selects the categories Result and Parse evaluate.
type Mode int

const (
	EOsLookUpMode      Mode = 1  /* 00000001 */
	EBrowserLookUpMode Mode = 2  /* 00000010 */
	EDeviceLookUpMode  Mode = 4  /* 00000100 */
	EEngineLookUpMode  Mode = 8  /* 00001000 */
	ECPULookUpMode     Mode = 16 /* 00010000 */

	EAllLookUpModes = EOsLookUpMode | EBrowserLookUpMode | EDeviceLookUpMode | EEngineLookUpMode | ECPULookUpMode
)

var categoryModes = map[Category]Mode{
	CategoryBrowser: EBrowserLookUpMode,
	CategoryCPU:     ECPULookUpMode,
	CategoryDevice:  EDeviceLookUpMode,
	CategoryEngine:  EEngineLookUpMode,
	CategoryOS:      EOsLookUpMode,
}

// Has reports whether m includes category c.
func (m Mode) Has(c Category) bool {
	bit, ok := categoryModes[c]
	return ok && m&bit == bit
}

// ParseMode turns a comma separated category list ("browser,os") into a Mode.
// "all" and the empty string select every category.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return EAllLookUpModes, nil
	}
	var m Mode
	for _, part := range strings.Split(s, ",") {
		c, err := ParseCategory(part)
		if err != nil {
			return 0, err
		}
		m |= categoryModes[c]
	}
	return m, nil
}

// Observer is told which group of a category matched a subject, or -1.
type Observer func(c Category, group int)

// Parser classifies one current user agent against a rule set. The rule set
// is shared and immutable; SetUA is the only mutation, so a Parser that is
// reconfigured must not be shared. Parse never touches the stored subject
// and is safe for concurrent use.
type Parser struct {
	ua     string
	rules  *RuleSet
	mode   Mode
	logger *zap.Logger
	observ Observer
}

// Option configures a Parser.
type Option func(*options) error

type extensionSource func(rs *RuleSet, logger *zap.Logger) (Extensions, error)

type options struct {
	ua         *string
	request    *http.Request
	rules      *RuleSet
	extensions []extensionSource
	mode       Mode
	logger     *zap.Logger
	observer   Observer
}

// WithUserAgent sets the subject. It takes precedence over WithRequest.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		o.ua = &ua
		return nil
	}
}

// WithRequest takes the subject from the request's User-Agent header.
func WithRequest(r *http.Request) Option {
	return func(o *options) error {
		o.request = r
		return nil
	}
}

// WithRuleSet replaces the built-in rules.
func WithRuleSet(rs *RuleSet) Option {
	return func(o *options) error {
		if rs == nil {
			return fmt.Errorf("%w: nil rule set", ErrParsingRules)
		}
		o.rules = rs
		return nil
	}
}

// WithExtensions evaluates ext's groups ahead of the built-in ones. When
// given several times, later extensions take priority over earlier ones.
func WithExtensions(ext Extensions) Option {
	return func(o *options) error {
		o.extensions = append(o.extensions, func(*RuleSet, *zap.Logger) (Extensions, error) {
			return ext, nil
		})
		return nil
	}
}

// WithExtensionsYAML is WithExtensions for a document in the rule file
// format.
func WithExtensionsYAML(data []byte) Option {
	return func(o *options) error {
		o.extensions = append(o.extensions, func(rs *RuleSet, logger *zap.Logger) (Extensions, error) {
			return rs.ParseExtensions(data, WithLoadLogger(logger))
		})
		return nil
	}
}

// WithMode restricts Result and Parse to the categories in m.
func WithMode(m Mode) Option {
	return func(o *options) error {
		if m&EAllLookUpModes == 0 {
			return fmt.Errorf("%w: empty lookup mode", ErrUnknownCategory)
		}
		o.mode = m & EAllLookUpModes
		return nil
	}
}

// WithLogger logs match outcomes at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) error {
		if l != nil {
			o.logger = l
		}
		return nil
	}
}

// WithObserver registers fn to be called after every category match.
func WithObserver(fn Observer) Option {
	return func(o *options) error {
		o.observer = fn
		return nil
	}
}

// New builds a Parser. Without WithUserAgent or WithRequest the subject is
// read from the HTTP_USER_AGENT environment variable; when that is empty too
// every accessor returns empty records.
func New(opts ...Option) (*Parser, error) {
	o := options{mode: EAllLookUpModes, logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	rules := o.rules
	if rules == nil {
		rules = Default()
	}
	for _, source := range o.extensions {
		ext, err := source(rules, o.logger)
		if err != nil {
			return nil, err
		}
		rules = rules.Extend(ext)
	}

	p := &Parser{
		rules:  rules,
		mode:   o.mode,
		logger: o.logger,
		observ: o.observer,
	}
	switch {
	case o.ua != nil:
		p.ua = *o.ua
	case o.request != nil:
		p.ua = o.request.UserAgent()
	default:
		p.ua = os.Getenv(EnvUserAgent)
	}
	return p, nil
}

// SetUA replaces the subject.
func (p *Parser) SetUA(ua string) *Parser {
	p.ua = ua
	return p
}

// UA returns the subject.
func (p *Parser) UA() string { return p.ua }

// Rules returns the rule set the parser evaluates.
func (p *Parser) Rules() *RuleSet { return p.rules }

// Mode returns the categories Result evaluates.
func (p *Parser) Mode() Mode { return p.mode }

func (p *Parser) Browser() *Browser { return newBrowser(p.match(CategoryBrowser, p.ua)) }

func (p *Parser) Engine() *Engine { return newEngine(p.match(CategoryEngine, p.ua)) }

func (p *Parser) OS() *OS { return newOS(p.match(CategoryOS, p.ua)) }

func (p *Parser) CPU() *CPU { return newCPU(p.match(CategoryCPU, p.ua)) }

func (p *Parser) Device() *Device { return newDevice(p.match(CategoryDevice, p.ua)) }

// Result classifies the stored subject.
func (p *Parser) Result() *Result { return p.Parse(p.ua) }

// Parse classifies line under the parser's mode without changing the stored
// subject.
func (p *Parser) Parse(line string) *Result {
	res := &Result{UA: line}
	if p.mode.Has(CategoryBrowser) {
		res.Browser = newBrowser(p.match(CategoryBrowser, line))
	}
	if p.mode.Has(CategoryEngine) {
		res.Engine = newEngine(p.match(CategoryEngine, line))
	}
	if p.mode.Has(CategoryOS) {
		res.OS = newOS(p.match(CategoryOS, line))
	}
	if p.mode.Has(CategoryDevice) {
		res.Device = newDevice(p.match(CategoryDevice, line))
	}
	if p.mode.Has(CategoryCPU) {
		res.CPU = newCPU(p.match(CategoryCPU, line))
	}
	return res
}

func (p *Parser) match(c Category, subject string) Record {
	rec := NewRecord(c.Fields()...)
	if subject == "" {
		return rec
	}

	rec, idx := MatchIndex(subject, p.rules.Table(c), rec)
	if p.observ != nil {
		p.observ(c, idx)
	}
	if ce := p.logger.Check(zap.DebugLevel, "matched category"); ce != nil {
		ce.Write(
			zap.String("category", string(c)),
			zap.Int("group", idx),
			zap.Any("record", rec),
		)
	}
	return rec
}
