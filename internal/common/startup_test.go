package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/tierprobe/internal/tierprobe/configuration"
)

const baseConfig = `
runCount: 10000
probability:
  databaseType: Postgres
  connectionString: ""
  table: Tiers
  connection:
    host: localhost
    port: 5432
  tiers:
    - id: 1
      name: Common
      probability: 0.7
`

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), baseConfig)
	override := filepath.Join(dir, "override.yaml")
	writeFile(t, override, "runCount: 50\nprobability:\n  databaseType: ' sqlite '\n  databasePath: /tmp/tiers.db\n")
	t.Setenv("TIERPROBE_PROBABILITY_CONNECTIONSTRING", "postgres://localhost/tiers")

	var config configuration.TierProbeConfiguration
	_, err := LoadConfig(&config, dir, []string{override, ""})
	require.NoError(t, err)

	assert.Equal(t, 50, config.RunCount)
	assert.Equal(t, configuration.Sqlite, config.Probability.DatabaseType)
	assert.Equal(t, "/tmp/tiers.db", config.Probability.DatabasePath)
	assert.Equal(t, "Tiers", config.Probability.Table)
	assert.Equal(t, "postgres://localhost/tiers", config.Probability.ConnectionString)
	assert.Equal(t, map[string]string{"host": "localhost", "port": "5432"}, config.Probability.Connection)
	assert.Equal(t, []configuration.TierConfig{{Id: 1, Name: "Common", Probability: 0.7}}, config.Probability.Tiers)
}

func TestLoadConfig_UnknownDatabaseType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "probability:\n  databaseType: mssql\n")

	var config configuration.TierProbeConfiguration
	_, err := LoadConfig(&config, dir, nil)
	assert.ErrorContains(t, err, "unknown database type")
}

func TestLoadConfig_MissingBase(t *testing.T) {
	var config configuration.TierProbeConfiguration
	_, err := LoadConfig(&config, t.TempDir(), nil)
	assert.ErrorContains(t, err, "error reading base config")
}

func TestLoadConfig_MissingOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), baseConfig)

	var config configuration.TierProbeConfiguration
	_, err := LoadConfig(&config, dir, []string{filepath.Join(dir, "absent.yaml")})
	assert.ErrorContains(t, err, "absent.yaml")
}
