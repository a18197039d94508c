package uaparser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamrail/ua-classifier/uaparser"
)

func TestAliasMap_Resolve(t *testing.T) {
	t.Parallel()

	windows, ok := uaparser.Default().AliasMap("windows_version")
	require.True(t, ok)
	oldSafari, ok := uaparser.Default().AliasMap("oldsafari_version")
	require.True(t, ok)

	tests := []struct {
		name  string
		m     *uaparser.AliasMap
		value string
		want  string
	}{
		{name: "windows 7", m: windows, value: "NT 6.1", want: "7"},
		{name: "windows 10", m: windows, value: "NT 10.0", want: "10"},
		{name: "case insensitive", m: windows, value: "nt 5.2", want: "XP"},
		{name: "substring", m: windows, value: "Windows NT 6.3; WOW64", want: "8.1"},
		{name: "unrecognized returns input", m: windows, value: "Linux", want: "Linux"},
		{name: "empty", m: windows, value: "", want: ""},
		{name: "unknown sentinel resolves to empty", m: oldSafari, value: "/999", want: ""},
		{name: "earlier entry wins", m: oldSafari, value: "/85.8", want: "1.0"},
		{name: "longer alias", m: oldSafari, value: "/412", want: "2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.m.Resolve(tt.value))
			assert.Equal(t, tt.want, uaparser.Resolve(tt.value, tt.m))
		})
	}
}

func TestAliasMap_Order(t *testing.T) {
	t.Parallel()

	m := uaparser.MustAliasMap("order",
		uaparser.Alias{Canonical: "first", Aliases: []string{"b"}},
		uaparser.Alias{Canonical: "second", Aliases: []string{"ab"}},
	)
	assert.Equal(t, "first", m.Resolve("xaby"))
	assert.Equal(t, "order", m.Name())
}

func TestAliasMap_Idempotent(t *testing.T) {
	t.Parallel()

	windows, ok := uaparser.Default().AliasMap("windows_version")
	require.True(t, ok)

	for _, raw := range []string{"NT 6.1", "NT 5.1", "NT 6.0", "4.90", "Linux"} {
		once := windows.Resolve(raw)
		assert.Equal(t, once, windows.Resolve(once), raw)
	}
}

func TestAliasMap_EmptyAliases(t *testing.T) {
	t.Parallel()

	m, err := uaparser.NewAliasMap("empty",
		uaparser.Alias{Canonical: "never", Aliases: []string{""}},
		uaparser.Alias{Canonical: "hit", Aliases: []string{"x"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "hit", m.Resolve("xx"))
	assert.Equal(t, "abc", m.Resolve("abc"))
}

func TestAliasMap_Transform(t *testing.T) {
	t.Parallel()

	windows, ok := uaparser.Default().AliasMap("windows_version")
	require.True(t, ok)

	tr := windows.Transform()
	assert.Equal(t, "windows_version", tr.Name)
	assert.Equal(t, "Vista", tr.Apply("NT 6.0"))

	registered, ok := uaparser.Default().Transform("windows_version")
	require.True(t, ok)
	assert.Equal(t, "Vista", registered.Apply("NT 6.0"))
}

func TestTransforms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "powerpc", uaparser.Lower.Apply("PowerPC"))
	assert.Equal(t, "arm", uaparser.Trim.Apply("\ufeff\u00a0 arm\t"))
	assert.Equal(t, "same", uaparser.Transform{Name: "identity"}.Apply("same"))
}
