package parser

import "strings"

// find locates the first occurrence of pattern in line at or after
// start. It returns the text strictly between start and the match, and
// the absolute offset of the match itself (not past it), so callers add
// the known delimiter width before the next field. ok is false when the
// pattern does not occur or start is out of range.
func find(line string, start int, pattern string) (slice string, end int, ok bool) {
	if start < 0 || start > len(line) {
		return "", 0, false
	}
	pos := strings.Index(line[start:], pattern)
	if pos < 0 {
		return "", 0, false
	}
	end = start + pos
	return line[start:end], end, true
}
