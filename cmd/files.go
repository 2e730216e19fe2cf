// Package cmd implements the command-line interface for log2house.
package cmd

import "strings"

// logSuffixes are input extensions stripped before appending a new one,
// so "access.log" and "access.log.gz" both map to "access.err".
var logSuffixes = []string{".log.gz", ".log.zst", ".log.zstd", ".log"}

// replaceExtension derives a sibling file name from the input log name.
func replaceExtension(file, newExtension string) string {
	for _, suffix := range logSuffixes {
		if strings.HasSuffix(file, suffix) {
			return file[:len(file)-len(suffix)] + newExtension
		}
	}
	return file + newExtension
}
