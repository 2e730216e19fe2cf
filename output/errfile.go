// Package output implements the run's reporting surfaces: the error
// file for rejected lines and the end-of-run summary.
package output

import (
	"bufio"
	"fmt"
	"os"
)

// ErrFile collects one line per rejected log entry. The file is
// recreated on every run: errors from a previous run of the same input
// are superseded, not appended to.
type ErrFile struct {
	file  *os.File
	w     *bufio.Writer
	count int
}

// NewErrFile truncates or creates the error file at path.
func NewErrFile(path string) (*ErrFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create error file %s: %w", path, err)
	}
	return &ErrFile{file: file, w: bufio.NewWriter(file)}, nil
}

// Write records one rejected line in its error-surface form
// ("Invalid entry: <raw line> (<reason>)").
func (f *ErrFile) Write(err error) error {
	f.count++
	if _, werr := fmt.Fprintln(f.w, err.Error()); werr != nil {
		return fmt.Errorf("failed to write error file: %w", werr)
	}
	return nil
}

// Count returns the number of errors written so far.
func (f *ErrFile) Count() int { return f.count }

// Close flushes and closes the file.
func (f *ErrFile) Close() error {
	if err := f.w.Flush(); err != nil {
		f.file.Close()
		return err
	}
	return f.file.Close()
}
