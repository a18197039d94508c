package uaparser

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Transform is a named pure function over a captured substring. The name is
// how rule files refer to it.
type Transform struct {
	Name string
	Fn   func(string) string
}

// Apply runs the transform. A transform without a function is the identity.
func (t Transform) Apply(s string) string {
	if t.Fn == nil {
		return s
	}
	return t.Fn(s)
}

var (
	// Lower lowercases the value.
	Lower = Transform{Name: "lower", Fn: lowerize}
	// Trim strips surrounding whitespace, BOM and no-break spaces.
	Trim = Transform{Name: "trim", Fn: trim}
)

func lowerize(s string) string {
	// a Caser keeps state between calls, so it is never shared
	return cases.Lower(language.Und).String(s)
}

func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF' || r == '\u00A0'
	})
}

// Major returns the major segment of a version: every character other than a
// digit or a dot is dropped, then the first dot-separated segment is kept.
// "10.2.3" gives "10"; "Version abc" gives "".
func Major(version string) string {
	if version == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range version {
		if r == '.' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	major, _, _ := strings.Cut(b.String(), ".")
	return major
}

func builtinTransforms() map[string]Transform {
	return map[string]Transform{
		Lower.Name: Lower,
		Trim.Name:  Trim,
	}
}
