// Package cmd implements the command-line interface for log2house.
package cmd

import (
	"context"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Alain-L/log2house/enrich"
	"github.com/Alain-L/log2house/output"
	"github.com/Alain-L/log2house/parser"
	"github.com/Alain-L/log2house/sink"
)

// progressEvery is how many inserted or skipped lines between progress
// log events.
const progressEvery = 50000

// lineBuffer is the capacity of the reader->parser channel.
const lineBuffer = 24576

// executeParsing is the main execution function for the root command.
// It orchestrates the entire ingestion pipeline:
//  1. Resolve settings (config file + flags)
//  2. Open the ClickHouse sink and read the watermark
//  3. Build the enrichment services
//  4. Stream lines, parse, enrich and dispatch each one
//  5. Flush the sink and print the run summary
func executeParsing(cmd *cobra.Command, args []string) {
	startTime := time.Now()
	logger := newLogger()

	settings, err := loadSettings(configFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	input := args[0]

	ctx := context.Background()

	// Step 2: sink and watermark. In dry-run mode the sink is never
	// opened and the watermark stays 0, so every line parses as new.
	var dest *sink.Sink
	var watermark int64
	if !dryRunFlag {
		dest, watermark, err = prepareSink(ctx, settings.Database)
		if err != nil {
			logger.Fatal().Err(err).Str("db", settings.Database).Msg("failed to prepare sink")
		}
		defer dest.Close()
	}

	config, err := parser.NewConfig(watermark, settings.Origin)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid origin")
	}

	// Step 3: enrichment services
	services, cleanup, err := buildServices(settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build enrichment services")
	}
	defer cleanup()

	errPath := settings.Errors
	if errPath == "" {
		errPath = replaceExtension(input, ".err")
	}
	errFile, err := output.NewErrFile(errPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create error file")
	}
	defer errFile.Close()

	// Step 4: stream and parse
	logger.Info().Str("file", input).Int64("watermark_us", watermark).Msg("searching new logs")

	lines := make(chan string, lineBuffer)
	var readErr error
	go func() {
		defer close(lines)
		readErr = parser.ReadLines(input, lines)
	}()

	var inserted, skipped, invalid int
	for line := range lines {
		entry, perr := parser.Parse(line, services, config)
		if perr != nil {
			if parser.IsFiltered(perr) {
				skipped++
				if skipped%progressEvery == 0 {
					logger.Info().Int("skipped", skipped).Msg("skipping already loaded logs")
				}
			} else {
				invalid++
				if werr := errFile.Write(perr); werr != nil {
					logger.Fatal().Err(werr).Msg("failed to write error file")
				}
			}
			continue
		}

		if dest != nil {
			if err := dest.Append(ctx, entry); err != nil {
				logger.Fatal().Err(err).Msg("failed to append to ClickHouse")
			}
		}
		inserted++
		if inserted%progressEvery == 0 {
			logger.Info().Int("inserted", inserted).Msg("adding new logs")
		}
	}
	if readErr != nil {
		logger.Fatal().Err(readErr).Msg("failed to read log file")
	}

	// Step 5: flush and report
	if dest != nil {
		if err := dest.Flush(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to flush batch")
		}
	}

	output.PrintSummary(output.RunStats{
		Inserted: inserted,
		Skipped:  skipped,
		Invalid:  invalid,
		Duration: time.Since(startTime),
	}, settings.Database, errPath)
}

// prepareSink connects to ClickHouse, creates the table if needed, and
// reads the current watermark. A spinner is shown while connecting when
// stderr is a terminal.
func prepareSink(ctx context.Context, dsn string) (*sink.Sink, int64, error) {
	var spin *spinner.Spinner
	if term.IsTerminal(int(os.Stderr.Fd())) {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond,
			spinner.WithWriter(os.Stderr))
		spin.Suffix = " Preparing to read log file..."
		spin.Start()
		defer spin.Stop()
	}

	dest, err := sink.Open(ctx, dsn)
	if err != nil {
		return nil, 0, err
	}
	if err := dest.EnsureSchema(ctx); err != nil {
		dest.Close()
		return nil, 0, err
	}
	watermark, err := dest.MaxTimestampMicros(ctx)
	if err != nil {
		dest.Close()
		return nil, 0, err
	}
	return dest, watermark, nil
}

// buildServices assembles the enrichment services from the settings.
// The returned cleanup closes the geolocation database, if one was
// opened.
func buildServices(settings Settings) (*enrich.Services, func(), error) {
	var decomposer enrich.AgentDecomposer
	if settings.UARegexes != "" {
		ua, err := enrich.NewUAParserFromFile(settings.UARegexes)
		if err != nil {
			return nil, nil, err
		}
		decomposer = ua
	} else {
		decomposer = enrich.NewUAParser()
	}

	cleanup := func() {}
	var locator enrich.GeoLocator
	if settings.GeoDB != "" {
		mmdb, err := enrich.OpenMMDB(settings.GeoDB)
		if err != nil {
			return nil, nil, err
		}
		locator = mmdb
		cleanup = func() { mmdb.Close() }
	}

	return enrich.NewServices(decomposer, locator), cleanup, nil
}

// newLogger builds the run logger: human-readable console output on a
// terminal, JSON otherwise.
func newLogger() zerolog.Logger {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
