package configuration

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	commonconfig "github.com/armadaproject/tierprobe/internal/common/config"
	"github.com/armadaproject/tierprobe/internal/common/database"
)

func (c TierProbeConfiguration) Validate() error {
	var result *multierror.Error
	if err := commonconfig.ValidateStruct(c); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Probability.validateSource(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (p ProbabilityConfig) validateSource() error {
	var result *multierror.Error
	switch p.DatabaseType {
	case Postgres:
		if p.ConnectionString == "" && len(p.Connection) == 0 {
			result = multierror.Append(result, fmt.Errorf("postgres requires probability::connectionString or probability::connection"))
		}
	case Sqlite:
		if p.DatabasePath == "" {
			result = multierror.Append(result, fmt.Errorf("sqlite requires probability::databasePath"))
		}
	case Memory:
		if len(p.Tiers) == 0 {
			result = multierror.Append(result, fmt.Errorf("memory requires at least one entry in probability::tiers"))
		}
	}

	seen := make(map[int32]bool, len(p.Tiers))
	for _, tier := range p.Tiers {
		if seen[tier.Id] {
			result = multierror.Append(result, fmt.Errorf("tier id %d is configured more than once", tier.Id))
		}
		seen[tier.Id] = true
	}
	return result.ErrorOrNil()
}

// PostgresConnectionString returns ConnectionString if set, otherwise a keyword/value string built from Connection.
func (p ProbabilityConfig) PostgresConnectionString() string {
	if p.ConnectionString != "" {
		return p.ConnectionString
	}
	return database.CreateConnectionString(p.Connection)
}
