package uaparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single evaluation of a backtracking pattern.
const DefaultMatchTimeout = 100 * time.Millisecond

// RegexEngine identifies the regex engine that compiled a Pattern.
type RegexEngine uint8

const (
	// EngineRE2 is the linear-time engine used for every pattern it accepts.
	EngineRE2 RegexEngine = iota + 1
	// EngineBacktrack serves patterns using lookaround or backreferences.
	EngineBacktrack
)

func (e RegexEngine) String() string {
	switch e {
	case EngineRE2:
		return "re2"
	case EngineBacktrack:
		return "backtrack"
	}
	return "unknown"
}

// Pattern is one compiled alternative. It is immutable and safe for
// concurrent use.
type Pattern struct {
	expr   string
	engine RegexEngine
	groups int

	re2 *regexp.Regexp
	bt  *regexp2.Regexp
}

// Compile compiles expr with DefaultMatchTimeout.
func Compile(expr string) (*Pattern, error) {
	return CompileTimeout(expr, DefaultMatchTimeout)
}

// CompileTimeout compiles expr with the RE2 engine, falling back to the
// backtracking engine when RE2 rejects the syntax. timeout applies to the
// backtracking engine only; a timed out evaluation counts as no match.
func CompileTimeout(expr string, timeout time.Duration) (*Pattern, error) {
	re, reErr := regexp.Compile(expr)
	if reErr == nil {
		return &Pattern{expr: expr, engine: EngineRE2, groups: re.NumSubexp(), re2: re}, nil
	}

	bt, btErr := regexp2.Compile(expr, regexp2.None)
	if btErr != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, expr, btErr)
	}
	if timeout > 0 {
		bt.MatchTimeout = timeout
	}
	return &Pattern{
		expr:   expr,
		engine: EngineBacktrack,
		groups: len(bt.GetGroupNumbers()) - 1,
		bt:     bt,
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) String() string { return p.expr }

// Engine reports which engine compiled the pattern.
func (p *Pattern) Engine() RegexEngine { return p.engine }

// NumSubexp returns the number of capturing groups.
func (p *Pattern) NumSubexp() int { return p.groups }

// FindStringSubmatch returns the leftmost match and its submatches, or nil.
// Groups that did not participate are empty strings.
func (p *Pattern) FindStringSubmatch(s string) []string {
	if p.re2 != nil {
		return p.re2.FindStringSubmatch(s)
	}
	m, err := p.bt.FindStringMatch(s)
	if err != nil || m == nil {
		return nil
	}
	return backtrackSubmatches(m, p.groups)
}

// MatchString reports whether s contains a match.
func (p *Pattern) MatchString(s string) bool {
	if p.re2 != nil {
		return p.re2.MatchString(s)
	}
	ok, err := p.bt.MatchString(s)
	return err == nil && ok
}

// ReplaceAllString replaces every match in src with template. Inside template
// $n (digits only) expands to submatch n, $0 being the whole match; tokens
// naming a group the pattern does not have are kept literally.
func (p *Pattern) ReplaceAllString(src, template string) string {
	matches := p.findAllSubmatchIndex(src)
	if len(matches) == 0 {
		return src
	}

	var out strings.Builder
	last := 0
	for _, loc := range matches {
		out.WriteString(src[last:loc[0]])
		out.WriteString(allMatchesReplacement(template, submatches(src, loc)))
		last = loc[1]
	}
	out.WriteString(src[last:])
	return out.String()
}

func (p *Pattern) findAllSubmatchIndex(src string) [][]int {
	if p.re2 != nil {
		return p.re2.FindAllStringSubmatchIndex(src, -1)
	}

	// regexp2 reports rune offsets; convert them to byte offsets.
	offsets := runeOffsets(src)
	var out [][]int
	m, err := p.bt.FindStringMatch(src)
	for err == nil && m != nil {
		loc := make([]int, 2*(p.groups+1))
		for i := 0; i <= p.groups; i++ {
			g := m.GroupByNumber(i)
			if g == nil || len(g.Captures) == 0 {
				loc[2*i], loc[2*i+1] = -1, -1
				continue
			}
			loc[2*i] = offsets[g.Index]
			loc[2*i+1] = offsets[g.Index+g.Length]
		}
		out = append(out, loc)
		m, err = p.bt.FindNextMatch(m)
	}
	return out
}

func backtrackSubmatches(m *regexp2.Match, groups int) []string {
	out := make([]string, groups+1)
	for i := 0; i <= groups; i++ {
		g := m.GroupByNumber(i)
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		out[i] = g.String()
	}
	return out
}

func submatches(src string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = src[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func runeOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

// allMatchesReplacement replaces all tokens in format $<digit> (like $0, $1 or $12) with values
// at corresponding indexes (NOT POSITIONS, so $1 will be replaced with v[1], NOT v[0]) in the provided array.
// If array doesn't have value at the index (when array length is less than the value), it remains unchanged in the string
func allMatchesReplacement(pattern string, matches []string) string {
	var output strings.Builder
	var token strings.Builder
	readingToken := false

	writeTokenValue := func() {
		if !readingToken {
			return
		}
		if token.Len() == 0 {
			output.WriteByte('$')
			return
		}
		idx, err := strconv.Atoi(token.String())
		if err != nil || idx < 0 || idx >= len(matches) {
			output.WriteByte('$')
			output.WriteString(token.String())
		} else {
			output.WriteString(matches[idx])
		}
		token.Reset()
	}

	for _, r := range pattern {
		if !readingToken && r == '$' {
			readingToken = true
			continue
		}
		if !readingToken {
			output.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			token.WriteRune(r)
			continue
		}
		writeTokenValue()
		readingToken = r == '$'
		if !readingToken {
			output.WriteRune(r)
		}
	}
	writeTokenValue()
	return output.String()
}
