package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// Buffer size constants for the line scanner
const (
	// scannerBuffer is the initial buffer size for reading log lines (4 MB)
	scannerBuffer = 4 * 1024 * 1024

	// scannerMaxBuffer is the maximum buffer size for very long lines (100 MB)
	scannerMaxBuffer = 100 * 1024 * 1024
)

// compressionCodec defines how to create a streaming reader for a compressed format.
type compressionCodec struct {
	name   string
	opener func(io.Reader) (io.ReadCloser, error)
}

var (
	gzipCodec = compressionCodec{
		name: "gzip",
		opener: func(r io.Reader) (io.ReadCloser, error) {
			return newParallelGzipReader(r)
		},
	}
	zstdCodec = compressionCodec{
		name: "zstd",
		opener: func(r io.Reader) (io.ReadCloser, error) {
			return newZstdDecoder(r)
		},
	}
)

// newParallelGzipReader creates a parallel gzip reader sized to the host.
func newParallelGzipReader(r io.Reader) (io.ReadCloser, error) {
	// One block per core keeps decompression ahead of the parser.
	zr, err := pgzip.NewReaderN(r, 1<<20, runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, err
	}
	return zr, nil
}

// newZstdDecoder creates a streaming zstd decoder.
func newZstdDecoder(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// detectCodec chooses a decompression codec from the file name.
// Returns nil for plain text files.
func detectCodec(filename string) *compressionCodec {
	lowerName := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lowerName, ".gz"):
		return &gzipCodec
	case strings.HasSuffix(lowerName, ".zst"), strings.HasSuffix(lowerName, ".zstd"):
		return &zstdCodec
	default:
		return nil
	}
}

// ReadLines streams the lines of an access log file to out, in file
// order, transparently decompressing gzip and zstd files. The channel
// is not closed here; the caller owns its lifecycle.
func ReadLines(filename string, out chan<- string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if codec := detectCodec(filename); codec != nil {
		cr, err := codec.opener(file)
		if err != nil {
			return fmt.Errorf("failed to read %s file %s: %w", codec.name, filename, err)
		}
		defer cr.Close()
		reader = cr
	}

	scanner := bufio.NewScanner(reader)
	buf := make([]byte, scannerBuffer)
	scanner.Buffer(buf, scannerMaxBuffer)

	for scanner.Scan() {
		out <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return nil
}
