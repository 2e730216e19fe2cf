package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	originFlag, dbFlag, geoDBFlag, uaRegexesFlag, errFileFlag = "", "", "", "", ""
}

func TestLoadSettingsFromFile(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "log2house.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"origin: https://mydomain.com\ndatabase: clickhouse://db:9000/logs\ngeo_db: /opt/ipinfo_lite.mmdb\n",
	), 0o644))

	settings, err := loadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "https://mydomain.com", settings.Origin)
	require.Equal(t, "clickhouse://db:9000/logs", settings.Database)
	require.Equal(t, "/opt/ipinfo_lite.mmdb", settings.GeoDB)
}

func TestLoadSettingsFlagsOverrideFile(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "log2house.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"origin: https://fromfile.example\ndatabase: clickhouse://db:9000/logs\n",
	), 0o644))

	originFlag = "https://fromflag.example"
	defer resetFlags(t)

	settings, err := loadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "https://fromflag.example", settings.Origin)
	require.Equal(t, "clickhouse://db:9000/logs", settings.Database)
}

func TestLoadSettingsDefaults(t *testing.T) {
	resetFlags(t)
	originFlag = "https://mydomain.com"
	defer resetFlags(t)

	settings, err := loadSettings("")
	require.NoError(t, err)
	require.Equal(t, defaultDatabaseDSN, settings.Database)
}

func TestLoadSettingsRequiresOrigin(t *testing.T) {
	resetFlags(t)
	_, err := loadSettings("")
	require.Error(t, err)
}

func TestLoadSettingsBadYAML(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("origin: [unclosed"), 0o644))

	_, err := loadSettings(path)
	require.Error(t, err)
}
