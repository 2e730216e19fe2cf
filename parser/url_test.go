package parser

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestCollapseLeadingSlashes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/a/b.html", "/a/b.html"},
		{"//a/b.html", "/a/b.html"},
		{"////a", "/a"},
		{"//", "/"},
		{"/", "/"},
		{"", ""},
		// Only the leading run is collapsed; interior doubled slashes
		// are part of the path as requested.
		{"/a//b.html", "/a//b.html"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, collapseLeadingSlashes(tt.input), "input %q", tt.input)
	}
}

// Collapsing is idempotent: a second pass over an already collapsed
// path changes nothing, whatever the input looked like.
func TestCollapseLeadingSlashesIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("collapse(collapse(p)) == collapse(p)", prop.ForAll(
		func(p string) bool {
			once := collapseLeadingSlashes(p)
			return collapseLeadingSlashes(once) == once
		},
		gen.RegexMatch(`/{0,6}[a-z/.]{0,20}`),
	))

	properties.TestingRun(t)
}

func TestParseQuery(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		require.Equal(t, map[string]string{"x": "1"}, parseQuery("x=1"))
	})

	t.Run("duplicate keys keep last value", func(t *testing.T) {
		require.Equal(t, map[string]string{"x": "2", "y": "a"}, parseQuery("x=1&y=a&x=2"))
	})

	t.Run("valueless key", func(t *testing.T) {
		require.Equal(t, map[string]string{"flag": ""}, parseQuery("flag"))
	})

	t.Run("malformed escape keeps parsable pairs", func(t *testing.T) {
		parsed := parseQuery("ok=1&bad=%zz")
		require.Equal(t, "1", parsed["ok"])
	})
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected string // "" means absent
	}{
		{"/a/b.html", "html"},
		{"/a/B.HTML", "html"},
		{"/a/archive.tar.gz", "gz"},
		{"/a/b", ""},
		{"/a.b/c", ""},
		{"/.htaccess", ""},
		{"/a/b.", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		ext := fileExtension(tt.path)
		if tt.expected == "" {
			require.Nil(t, ext, "path %q", tt.path)
		} else {
			require.NotNil(t, ext, "path %q", tt.path)
			require.Equal(t, tt.expected, *ext)
		}
	}
}

func TestParseReferer(t *testing.T) {
	t.Run("full referer", func(t *testing.T) {
		ref := parseReferer("https://referrer.example/start.html?a=1&a=2")
		require.NotNil(t, ref.URL)
		require.Equal(t, "https://referrer.example/start.html?a=1&a=2", *ref.URL)
		require.Equal(t, "https://referrer.example", *ref.Origin)
		require.Equal(t, "/start.html", *ref.Path)
		require.Equal(t, "a=1&a=2", *ref.Query)
		require.Equal(t, map[string]string{"a": "2"}, ref.ParsedQuery)
	})

	t.Run("no query means no query fields", func(t *testing.T) {
		ref := parseReferer("http://referrer.example/")
		require.NotNil(t, ref.URL)
		require.Nil(t, ref.Query)
		require.Nil(t, ref.ParsedQuery)
	})

	t.Run("port kept in origin", func(t *testing.T) {
		ref := parseReferer("http://referrer.example:8080/x")
		require.Equal(t, "http://referrer.example:8080", *ref.Origin)
	})

	t.Run("degrades to all-absent", func(t *testing.T) {
		for _, raw := range []string{"-", "", "not a url", "/relative/path", "android-app:"} {
			ref := parseReferer(raw)
			require.Nil(t, ref.URL, "raw %q", raw)
			require.Nil(t, ref.Origin, "raw %q", raw)
			require.Nil(t, ref.Path, "raw %q", raw)
			require.Nil(t, ref.Query, "raw %q", raw)
			require.Nil(t, ref.ParsedQuery, "raw %q", raw)
		}
	})
}
