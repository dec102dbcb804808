package configuration

import (
	"strings"

	"github.com/pkg/errors"
)

// DatabaseType selects the store the Tiers relation is read from.
type DatabaseType string

const (
	Postgres DatabaseType = "postgres"
	Sqlite   DatabaseType = "sqlite"
	Memory   DatabaseType = "memory"
)

var validDatabaseTypes = map[DatabaseType]bool{
	Postgres: true,
	Sqlite:   true,
	Memory:   true,
}

// UnmarshalText implements encoding.TextUnmarshaler so that viper can decode the type directly.
func (d *DatabaseType) UnmarshalText(text []byte) error {
	t := DatabaseType(strings.ToLower(strings.TrimSpace(string(text))))
	if !validDatabaseTypes[t] {
		return errors.Errorf("unknown database type %q: must be one of postgres, sqlite or memory", string(text))
	}
	*d = t
	return nil
}

type TierProbeConfiguration struct {
	// Number of times the selection query is executed.
	RunCount int `validate:"gt=0"`
	// Port on which prometheus metrics are served while sampling. Zero disables the endpoint.
	MetricsPort uint16
	// Where the Tiers relation lives and how to reach it.
	Probability ProbabilityConfig
}

type ProbabilityConfig struct {
	// Type of database used - must be one of 'postgres', 'sqlite' or 'memory'
	DatabaseType DatabaseType `validate:"required"`
	// Postgres connection string, either a URL or libpq keyword/value pairs.
	// Takes precedence over Connection.
	ConnectionString string
	// Postgres connection parameters as libpq keyword/value pairs.
	Connection map[string]string
	// Absolute or relative path for the sqlite database, including the file name.
	// This field is only read when DatabaseType is 'sqlite'
	DatabasePath string
	// Name of the table holding id, name and probability columns.
	Table string `validate:"required"`
	// Seed for the in-memory source. Zero seeds from the clock.
	Seed int64
	// Tiers served by the in-memory source, and written by the seed command.
	Tiers []TierConfig `validate:"dive"`
}

type TierConfig struct {
	Id          int32
	Name        string
	Probability float64 `validate:"gte=0,lte=1"`
}
