package uaparser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamrail/ua-classifier/uaparser"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("re2 syntax uses the linear engine", func(t *testing.T) {
		t.Parallel()

		p, err := uaparser.Compile(`(chrome)\/([\w\.]+)`)
		require.NoError(t, err)
		assert.Equal(t, uaparser.EngineRE2, p.Engine())
		assert.Equal(t, 2, p.NumSubexp())
		assert.Equal(t, `(chrome)\/([\w\.]+)`, p.String())
	})

	t.Run("lookahead falls back to backtracking", func(t *testing.T) {
		t.Parallel()

		p, err := uaparser.Compile(`(ia32(?=;))`)
		require.NoError(t, err)
		assert.Equal(t, uaparser.EngineBacktrack, p.Engine())
		assert.Equal(t, 1, p.NumSubexp())
		assert.Equal(t, []string{"ia32", "ia32"}, p.FindStringSubmatch("Linux; ia32; rv"))
		assert.Nil(t, p.FindStringSubmatch("Linux ia32)"))
	})

	t.Run("backreference falls back to backtracking", func(t *testing.T) {
		t.Parallel()

		p, err := uaparser.Compile(`(\w)\1`)
		require.NoError(t, err)
		assert.Equal(t, uaparser.EngineBacktrack, p.Engine())
		assert.True(t, p.MatchString("hello"))
		assert.False(t, p.MatchString("abc"))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()

		_, err := uaparser.Compile(`(unclosed`)
		require.Error(t, err)
		assert.ErrorIs(t, err, uaparser.ErrInvalidPattern)
	})

	t.Run("must compile panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { uaparser.MustCompile(`[`) })
	})
}

func TestPattern_FindStringSubmatch(t *testing.T) {
	t.Parallel()

	p := uaparser.MustCompile(`(a)(b)?`)
	assert.Equal(t, []string{"a", "a", ""}, p.FindStringSubmatch("xa"))
	assert.Nil(t, p.FindStringSubmatch("xyz"))
}

func TestPattern_ReplaceAllString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expr     string
		src      string
		template string
		want     string
	}{
		{
			name:     "literal replacement of every match",
			expr:     `_`,
			src:      "14_4_1",
			template: ".",
			want:     "14.4.1",
		},
		{
			name:     "submatch tokens",
			expr:     `(.+(?:g|us))(.+)`,
			src:      "samsungbrowser",
			template: "$1 $2",
			want:     "samsung browser",
		},
		{
			name:     "whole capture with suffix",
			expr:     `(.+)`,
			src:      "Chrome",
			template: "$1 WebView",
			want:     "Chrome WebView",
		},
		{
			name:     "zero token is the whole match",
			expr:     `(\d+)_(\d+)`,
			src:      "os 14_4",
			template: "[$0]=$1.$2",
			want:     "os [14_4]=14.4",
		},
		{
			name:     "unknown group stays literal",
			expr:     `(a)`,
			src:      "a",
			template: "$1-$9",
			want:     "a-$9",
		},
		{
			name:     "dollar without digits stays literal",
			expr:     `(a)`,
			src:      "a",
			template: "$x$",
			want:     "$x$",
		},
		{
			name:     "no match returns source",
			expr:     `ower`,
			src:      "ppc",
			template: "",
			want:     "ppc",
		},
		{
			name:     "backtracking engine with multibyte input",
			expr:     `(?<=é)x`,
			src:      "éx ax éx",
			template: "y",
			want:     "éy ax éy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := uaparser.MustCompile(tt.expr)
			assert.Equal(t, tt.want, p.ReplaceAllString(tt.src, tt.template))
		})
	}
}
