package output

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// RunStats aggregates the counters of one ingestion run.
type RunStats struct {
	Inserted int
	Skipped  int
	Invalid  int
	Duration time.Duration
}

// PrintSummary displays the end-of-run report.
func PrintSummary(stats RunStats, database, errFile string) {
	// ANSI style for bold text, only on a terminal.
	bold, reset := "", ""
	if term.IsTerminal(int(os.Stdout.Fd())) {
		bold = "\033[1m"
		reset = "\033[0m"
	}

	fmt.Println(bold + "\nSUMMARY\n" + reset)
	fmt.Printf("  %-25s : %d\n", "New entries", stats.Inserted)
	fmt.Printf("  %-25s : %d\n", "Skipped (already loaded)", stats.Skipped)
	fmt.Printf("  %-25s : %d\n", "Invalid lines", stats.Invalid)
	fmt.Printf("  %-25s : %s\n", "Duration", stats.Duration.Round(time.Millisecond))

	total := stats.Inserted + stats.Skipped + stats.Invalid
	if stats.Duration > 0 && total > 0 {
		rate := float64(total) / stats.Duration.Seconds()
		fmt.Printf("  %-25s : %.0f lines/s\n", "Throughput", rate)
	}

	fmt.Printf("  %-25s : %s\n", "Database", database)
	if stats.Invalid > 0 {
		fmt.Printf("  %-25s : %s\n", "Errors logged in", errFile)
	}
	fmt.Println()
}
