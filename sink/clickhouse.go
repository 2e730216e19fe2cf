// Package sink writes enriched access log entries to ClickHouse.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Alain-L/log2house/parser"
)

// flushThreshold is the number of buffered rows before a batch is sent.
const flushThreshold = 10000

// tableDDL creates the destination table. The columns match the Entry
// fields except the raw line, which only goes to the error surface.
// Optional fields are Nullable except the two parsed-query maps, where
// an empty map stands for absent (ClickHouse does not support
// Nullable(Map)).
const tableDDL = `
CREATE TABLE IF NOT EXISTS access_log (
    ip                   String,
    identity             Nullable(String),
    user                 Nullable(String),
    timestamp            DateTime64(6, 'UTC'),
    method               Enum8('GET' = 1, 'POST' = 2, 'PUT' = 3, 'DELETE' = 4, 'HEAD' = 5, 'OPTIONS' = 6, 'CONNECT' = 7, 'TRACE' = 8, 'PATCH' = 9),
    path                 String,
    extension            Nullable(String),
    query                Nullable(String),
    parsed_query         Map(String, String),
    http_version         Enum8('HTTP/1.0' = 1, 'HTTP/1.1' = 2, 'HTTP/2.0' = 3, 'HTTP/3.0' = 4),
    status_code          UInt16,
    size                 UInt64,
    referer              Nullable(String),
    referer_origin       Nullable(String),
    referer_path         Nullable(String),
    referer_query        Nullable(String),
    referer_parsed_query Map(String, String),
    user_agent           Nullable(String),
    browser              Nullable(String),
    browser_major        Nullable(UInt16),
    browser_minor        Nullable(UInt16),
    browser_patch        Nullable(UInt16),
    browser_patch_minor  Nullable(UInt16),
    os                   Nullable(String),
    os_major             Nullable(UInt16),
    os_minor             Nullable(UInt16),
    os_patch             Nullable(UInt16),
    os_patch_minor       Nullable(UInt16),
    device               Nullable(String),
    brand                Nullable(String),
    model                Nullable(String),
    country              Nullable(String),
    continent            Nullable(String),
    asn                  Nullable(String),
    as_name              Nullable(String),
    as_domain            Nullable(String)
)
ENGINE = MergeTree
ORDER BY timestamp
`

// Sink is a batched appender into the access_log table. It is used
// from a single goroutine; entries appended after the last Flush are
// lost, so a run always ends with Flush then Close.
type Sink struct {
	conn    driver.Conn
	batch   driver.Batch
	pending int
}

// Open connects to ClickHouse using a DSN such as
// "clickhouse://localhost:9000/default" and verifies the connection.
func Open(ctx context.Context, dsn string) (*Sink, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid ClickHouse DSN: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ClickHouse ping failed: %w", err)
	}
	return &Sink{conn: conn}, nil
}

// EnsureSchema creates the destination table if it does not exist.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	if err := s.conn.Exec(ctx, tableDDL); err != nil {
		return fmt.Errorf("failed to create access_log table: %w", err)
	}
	return nil
}

// MaxTimestampMicros returns the newest ingested timestamp in
// microseconds, the watermark for incremental runs. An empty table
// yields 0 (max() over no rows returns the epoch).
func (s *Sink) MaxTimestampMicros(ctx context.Context) (int64, error) {
	var max time.Time
	row := s.conn.QueryRow(ctx, "SELECT max(timestamp) FROM access_log")
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read watermark: %w", err)
	}
	micros := max.UnixMicro()
	if micros <= 0 {
		return 0, nil
	}
	return micros, nil
}

// Append buffers one entry, sending the current batch once the flush
// threshold is reached.
func (s *Sink) Append(ctx context.Context, e *parser.Entry) error {
	if s.batch == nil {
		batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO access_log")
		if err != nil {
			return fmt.Errorf("failed to prepare batch: %w", err)
		}
		s.batch = batch
	}

	err := s.batch.Append(
		e.IP,
		e.Identity,
		e.User,
		e.Timestamp,
		e.Method.String(),
		e.Path,
		e.Extension,
		e.Query,
		orEmpty(e.ParsedQuery),
		e.HTTPVersion.String(),
		e.StatusCode,
		e.Size,
		e.Referer.URL,
		e.Referer.Origin,
		e.Referer.Path,
		e.Referer.Query,
		orEmpty(e.Referer.ParsedQuery),
		e.UserAgent,
		e.Agent.Browser,
		e.Agent.BrowserMajor,
		e.Agent.BrowserMinor,
		e.Agent.BrowserPatch,
		e.Agent.BrowserPatchMinor,
		e.Agent.OS,
		e.Agent.OSMajor,
		e.Agent.OSMinor,
		e.Agent.OSPatch,
		e.Agent.OSPatchMinor,
		e.Agent.Device,
		e.Agent.Brand,
		e.Agent.Model,
		e.Geo.Country,
		e.Geo.Continent,
		e.Geo.ASN,
		e.Geo.ASName,
		e.Geo.ASDomain,
	)
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}

	s.pending++
	if s.pending >= flushThreshold {
		return s.Flush(ctx)
	}
	return nil
}

// Flush sends the buffered batch, if any.
func (s *Sink) Flush(_ context.Context) error {
	if s.batch == nil {
		return nil
	}
	if err := s.batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	s.batch = nil
	s.pending = 0
	return nil
}

// Close releases the connection. Buffered rows are not sent; call
// Flush first.
func (s *Sink) Close() error {
	return s.conn.Close()
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
