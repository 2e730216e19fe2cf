package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds the resolved run configuration. Values come from the
// optional yaml config file first, then command-line flags override.
type Settings struct {
	// Origin is the site the log belongs to, e.g. "https://mydomain.com".
	// Request paths are resolved against it.
	Origin string `yaml:"origin"`

	// Database is the ClickHouse DSN.
	Database string `yaml:"database"`

	// GeoDB is the path to an IPinfo Lite style MMDB file. Empty
	// disables geolocation enrichment.
	GeoDB string `yaml:"geo_db"`

	// UARegexes is an optional path to a uap-core regexes.yaml. Empty
	// uses the embedded definitions.
	UARegexes string `yaml:"ua_regexes"`

	// Errors overrides the error file path (default: <input>.err).
	Errors string `yaml:"errors"`
}

const defaultDatabaseDSN = "clickhouse://localhost:9000/default"

// loadSettings reads the yaml config file at path, if given, and layers
// flag values on top.
func loadSettings(path string) (Settings, error) {
	var settings Settings

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return settings, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Flags override the file.
	if originFlag != "" {
		settings.Origin = originFlag
	}
	if dbFlag != "" {
		settings.Database = dbFlag
	}
	if geoDBFlag != "" {
		settings.GeoDB = geoDBFlag
	}
	if uaRegexesFlag != "" {
		settings.UARegexes = uaRegexesFlag
	}
	if errFileFlag != "" {
		settings.Errors = errFileFlag
	}

	if settings.Database == "" {
		settings.Database = defaultDatabaseDSN
	}
	if settings.Origin == "" {
		return settings, fmt.Errorf("no origin configured: pass --origin or set it in the config file")
	}
	return settings, nil
}
