// Package cmd implements the command-line interface for log2house.
// It uses the Cobra library to handle commands, flags, and execution.
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// Version information (passed from main)
var (
	version string
	commit  string
	date    string
)

// Flag variables for command-line options.
// These are package-level variables as required by Cobra's flag binding.
var (
	originFlag    string // --origin: site origin the log belongs to
	dbFlag        string // --db: ClickHouse DSN
	geoDBFlag     string // --geo-db: IPinfo Lite MMDB path
	uaRegexesFlag string // --ua-regexes: external uap-core regexes.yaml
	errFileFlag   string // --errors: error file path override
	configFlag    string // --config: yaml config file
	dryRunFlag    bool   // --dry-run: parse without writing to ClickHouse
)

// rootCmd is the main command for the log2house CLI.
var rootCmd = &cobra.Command{
	Use:   "log2house <access.log>",
	Short: "Access log parser and ClickHouse loader",
	Long: `log2house parses combined-format web server access logs, enriches
each line (URL components, user-agent decomposition, IP geolocation),
and appends the result to a ClickHouse table.

Runs are incremental: lines at or below the newest timestamp already
in the table are skipped, so re-running over an overlapping log file
only loads what is new. Malformed lines are written to <input>.err.

Example:
  log2house access.log --origin 'https://mydomain.com'
  log2house access.log.gz --origin 'https://mydomain.com' --geo-db ipinfo_lite.mmdb`,
	Args: cobra.ExactArgs(1),
	Run:  executeParsing,
}

// Execute runs the root command.
// This is called by main.go to start the CLI application.
func Execute(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// init initializes all command-line flags.
func init() {
	rootCmd.Flags().StringVarP(&originFlag, "origin", "o", "",
		"Origin URL the log belongs to (e.g. https://mydomain.com)")
	rootCmd.Flags().StringVarP(&dbFlag, "db", "d", "",
		"ClickHouse DSN (default clickhouse://localhost:9000/default)")
	rootCmd.Flags().StringVarP(&geoDBFlag, "geo-db", "g", "",
		"Path to an IPinfo Lite MMDB file for IP geolocation")
	rootCmd.Flags().StringVar(&uaRegexesFlag, "ua-regexes", "",
		"Path to a uap-core regexes.yaml (default: embedded definitions)")
	rootCmd.Flags().StringVar(&errFileFlag, "errors", "",
		"Error file path (default: input file with .err extension)")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "",
		"Path to a yaml config file")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false,
		"Parse and report without writing to ClickHouse")
}
