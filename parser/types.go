// Package parser implements field-by-field parsing of combined-format
// access log lines and their enrichment into typed entries.
package parser

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Alain-L/log2house/enrich"
)

// Method is the HTTP request method. Only the nine standard methods are
// accepted; anything else is a parse failure.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodConnect Method = "CONNECT"
	MethodTrace   Method = "TRACE"
	MethodPatch   Method = "PATCH"
)

// ParseMethod validates a method token. Matching is exact and
// case-sensitive: "get" is not a valid method.
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodHead,
		MethodOptions, MethodConnect, MethodTrace, MethodPatch:
		return Method(s), true
	}
	return "", false
}

// String renders the method exactly as it appeared on the wire.
func (m Method) String() string { return string(m) }

// HTTPVersion is the protocol version from the request line.
type HTTPVersion string

const (
	HTTP10 HTTPVersion = "HTTP/1.0"
	HTTP11 HTTPVersion = "HTTP/1.1"
	HTTP20 HTTPVersion = "HTTP/2.0"
	HTTP30 HTTPVersion = "HTTP/3.0"
)

// ParseHTTPVersion validates a version token (the full "HTTP/x.y" form).
func ParseHTTPVersion(s string) (HTTPVersion, bool) {
	switch HTTPVersion(s) {
	case HTTP10, HTTP11, HTTP20, HTTP30:
		return HTTPVersion(s), true
	}
	return "", false
}

func (v HTTPVersion) String() string { return string(v) }

// Config is the immutable per-run parse configuration.
//
// Watermark is a microsecond UTC timestamp: only lines strictly newer
// are parsed, everything at or below it is reported as filtered. It is
// computed once from the sink's current maximum timestamp (0 for an
// empty sink). Origin is the site being ingested; request paths are
// resolved against it and requests for a different host are rejected.
type Config struct {
	Watermark int64
	Origin    *url.URL
}

// NewConfig parses the origin string and builds a run configuration.
func NewConfig(watermark int64, origin string) (*Config, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid origin %q: missing host", origin)
	}
	return &Config{Watermark: watermark, Origin: u}, nil
}

// Referer groups the fields derived from the referer column. A referer
// that does not parse as an absolute URL leaves every field nil; the
// fields are otherwise independently optional.
type Referer struct {
	URL         *string
	Origin      *string
	Path        *string
	Query       *string
	ParsedQuery map[string]string
}

// Entry is one fully parsed and enriched access log line.
//
// IP, Timestamp, Method, Path, HTTPVersion, StatusCode and Size are
// always set on a successful parse; every other field is optional and
// independently nil. An Entry is never modified after Parse returns it.
type Entry struct {
	Line     string
	IP       string
	Identity *string
	User     *string

	// Timestamp is always UTC, regardless of the zone offset on the line.
	Timestamp time.Time

	Method      Method
	Path        string
	Extension   *string
	Query       *string
	ParsedQuery map[string]string
	HTTPVersion HTTPVersion
	StatusCode  uint16
	Size        uint64

	Referer Referer

	UserAgent *string
	Agent     enrich.Agent
	Geo       enrich.GeoLocation
}
