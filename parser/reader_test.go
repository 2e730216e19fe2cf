package parser

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func collectLines(t *testing.T, filename string) ([]string, error) {
	t.Helper()
	out := make(chan string, 64)
	done := make(chan error, 1)
	go func() {
		done <- ReadLines(filename, out)
		close(out)
	}()

	var lines []string
	for line := range out {
		lines = append(lines, line)
	}
	return lines, <-done
}

func TestReadLinesPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("first\nsecond\nthird\n"), 0o644))

	lines, err := collectLines(t, path)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, lines)
}

func TestReadLinesGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log.gz")
	file, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	_, err = zw.Write([]byte("first\nsecond\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	lines, err := collectLines(t, path)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, lines)
}

func TestReadLinesZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log.zst")
	file, err := os.Create(path)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(file)
	require.NoError(t, err)
	_, err = zw.Write([]byte("first\nsecond\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	lines, err := collectLines(t, path)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, lines)
}

func TestReadLinesMissingFile(t *testing.T) {
	_, err := collectLines(t, filepath.Join(t.TempDir(), "nope.log"))
	require.Error(t, err)
}

func TestReadLinesCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.log.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip at all"), 0o644))

	_, err := collectLines(t, path)
	require.Error(t, err)
}
