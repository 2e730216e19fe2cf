package parser

import (
	"net"
	"strconv"
	"time"

	"github.com/Alain-L/log2house/enrich"
)

// timeLayout is the fixed combined-log timestamp format,
// e.g. "10/Oct/2023:13:55:36 +0000".
const timeLayout = "02/Jan/2006:15:04:05 -0700"

// Parse parses one combined-format access log line and enriches it.
//
// The grammar is applied left to right and the first failing field
// aborts the rest, so no enrichment work is spent on a line that will
// not be kept. The outcome is exactly one of three: a full Entry, a
// filtered *LogError for a line at or below the watermark, or a
// classified *LogError with a stable reason string. Filtering is
// decided right after the timestamp field, before the request line is
// even looked at.
//
// services carries the run's memoizing enrichment caches; Parse takes
// exclusive access to it for the duration of the call.
func Parse(line string, services *enrich.Services, config *Config) (*Entry, error) {
	// IP
	field, next, ok := find(line, 0, " ")
	if !ok {
		return nil, newLogError(line, "IP not found")
	}
	addr := net.ParseIP(field)
	if addr == nil {
		return nil, newLogError(line, "Invalid IP")
	}
	ip := addr.String()

	// Identity
	identityField, next, ok := find(line, next+1, " ")
	if !ok {
		return nil, newLogError(line, "Identity not found")
	}
	identity := dashAbsent(identityField)

	// User
	userField, next, ok := find(line, next+1, " ")
	if !ok {
		return nil, newLogError(line, "User not found")
	}
	user := dashAbsent(userField)

	// Timestamp, then the watermark short-circuit
	field, next, ok = find(line, next+2, "]")
	if !ok {
		return nil, newLogError(line, "Datetime not found")
	}
	timestamp, err := time.Parse(timeLayout, field)
	if err != nil {
		return nil, newLogError(line, "Invalid datetime")
	}
	timestamp = timestamp.UTC()
	if timestamp.UnixMicro() <= config.Watermark {
		return nil, newFiltered(line)
	}

	// Request line sanity check before splitting it
	request, _, ok := find(line, next+3, `"`)
	if !ok {
		return nil, newLogError(line, "Request not found")
	}
	if len(request) == 0 {
		return nil, newLogError(line, "Empty request")
	}

	// Method
	field, next, ok = find(line, next+3, " ")
	if !ok {
		return nil, newLogError(line, "HTTP method not found")
	}
	method, valid := ParseMethod(field)
	if !valid {
		return nil, newLogError(line, "Invalid HTTP method")
	}

	// Path, query and extension
	fullpath, next, ok := find(line, next+1, " HTTP/")
	if !ok {
		return nil, newLogError(line, "Path not found")
	}
	resolved, err := resolvePath(config.Origin, fullpath)
	if err != nil {
		return nil, newLogError(line, "Path not valid")
	}
	if resolved.Hostname() != config.Origin.Hostname() {
		return nil, newLogError(line, "Path has a different host")
	}
	path := resolved.Path
	if path == "" {
		path = "/"
	}
	var query *string
	var parsedQuery map[string]string
	if resolved.RawQuery != "" {
		q := resolved.RawQuery
		query = &q
		parsedQuery = parseQuery(q)
	}

	// HTTP version
	field, next, ok = find(line, next+1, `"`)
	if !ok {
		return nil, newLogError(line, "HTTP version not found")
	}
	version, valid := ParseHTTPVersion(field)
	if !valid {
		return nil, newLogError(line, "Invalid HTTP version")
	}

	// Status code
	field, next, ok = find(line, next+2, " ")
	if !ok {
		return nil, newLogError(line, "Status code not found")
	}
	status, err := strconv.ParseUint(field, 10, 16)
	if err != nil {
		return nil, newLogError(line, "Invalid status code")
	}

	// Size
	field, next, ok = find(line, next+1, " ")
	if !ok {
		return nil, newLogError(line, "Size not found")
	}
	size, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return nil, newLogError(line, "Invalid size")
	}

	// Referer (non-fatal: third-party input)
	field, next, ok = find(line, next+2, `"`)
	if !ok {
		return nil, newLogError(line, "Referer not found")
	}
	referer := parseReferer(field)

	// User agent
	field, _, ok = find(line, next+3, `"`)
	if !ok {
		return nil, newLogError(line, "User agent not found")
	}
	var userAgent *string
	var agent enrich.Agent
	if field != "" {
		ua := field
		userAgent = &ua
		agent = *services.GetAgent(ua)
	}

	geo := *services.GetGeolocation(ip)

	return &Entry{
		Line:        line,
		IP:          ip,
		Identity:    identity,
		User:        user,
		Timestamp:   timestamp,
		Method:      method,
		Path:        path,
		Extension:   fileExtension(path),
		Query:       query,
		ParsedQuery: parsedQuery,
		HTTPVersion: version,
		StatusCode:  uint16(status),
		Size:        size,
		Referer:     referer,
		UserAgent:   userAgent,
		Agent:       agent,
		Geo:         geo,
	}, nil
}

// dashAbsent maps the combined-format "-" placeholder to nil.
func dashAbsent(field string) *string {
	if field == "-" {
		return nil
	}
	return &field
}
