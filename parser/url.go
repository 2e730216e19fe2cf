package parser

import (
	"net/url"
	"path"
	"strings"
)

// collapseLeadingSlashes rewrites any leading run of doubled slashes to
// a single slash ("//a" -> "/a", "////a" -> "/a"). Requests abusing
// doubled slashes would otherwise resolve as scheme-relative URLs and
// escape the origin. The operation is idempotent.
func collapseLeadingSlashes(p string) string {
	for strings.HasPrefix(p, "//") {
		p = strings.Replace(p, "//", "/", 1)
	}
	return p
}

// resolvePath resolves a raw request path against the origin and splits
// it into path, optional query, and optional parsed query.
func resolvePath(origin *url.URL, fullpath string) (*url.URL, error) {
	return origin.Parse(collapseLeadingSlashes(fullpath))
}

// parseQuery turns a raw query string into a key->value map. Duplicate
// keys collapse to the last occurrence. Malformed escapes do not fail
// the query: the pairs that did parse are kept.
func parseQuery(rawQuery string) map[string]string {
	values, _ := url.ParseQuery(rawQuery)
	parsed := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			parsed[key] = vals[len(vals)-1]
		}
	}
	return parsed
}

// fileExtension returns the lowercased extension of the final path
// segment, or nil when the segment has none. A leading dot alone
// ("/.htaccess") is a hidden file, not an extension.
func fileExtension(p string) *string {
	base := path.Base(p)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return nil
	}
	ext := strings.ToLower(base[idx+1:])
	return &ext
}

// parseReferer decomposes the raw referer column. The referer is
// third-party input: anything that does not parse as an absolute URL
// (including the customary "-") degrades to an all-absent group instead
// of failing the record.
func parseReferer(raw string) Referer {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Referer{}
	}

	full := u.String()
	origin := u.Scheme + "://" + u.Host
	refPath := u.Path

	ref := Referer{
		URL:    &full,
		Origin: &origin,
		Path:   &refPath,
	}
	if u.RawQuery != "" {
		q := u.RawQuery
		ref.Query = &q
		ref.ParsedQuery = parseQuery(q)
	}
	return ref
}
