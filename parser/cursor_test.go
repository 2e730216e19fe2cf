package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	line := `127.0.0.1 - - [10/Oct/2023:13:55:36 +0000] "GET / HTTP/1.1"`

	tests := []struct {
		name      string
		start     int
		pattern   string
		wantSlice string
		wantEnd   int
		wantOK    bool
	}{
		{"first space", 0, " ", "127.0.0.1", 9, true},
		{"from offset", 10, " ", "-", 11, true},
		{"bracket delimiter", 15, "]", "10/Oct/2023:13:55:36 +0000", 41, true},
		{"substring pattern", 44, " HTTP/", "GET /", 49, true},
		{"match at start is empty slice", 9, " ", "", 9, true},
		{"pattern absent", 0, "\t", "", 0, false},
		{"start past end", len(line) + 1, " ", "", 0, false},
		{"negative start", -1, " ", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slice, end, ok := find(line, tt.start, tt.pattern)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				require.Equal(t, tt.wantSlice, slice)
				require.Equal(t, tt.wantEnd, end)
			}
		})
	}
}

// The returned offset points at the match, not past it, so callers can
// add fixed delimiter widths (e.g. skip `] "` with +3).
func TestFindOffsetIsMatchPosition(t *testing.T) {
	line := `a] "b`
	_, end, ok := find(line, 0, "]")
	require.True(t, ok)
	require.Equal(t, 1, end)
	require.Equal(t, byte('b'), line[end+3])
}
