package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/armadaproject/tierprobe/internal/tierprobe/configuration"
	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
	"github.com/armadaproject/tierprobe/internal/tierprobe/sampler"
)

// ErrNoTierSelected is returned by Draw when the random value falls outside every cumulative bucket,
// which happens when the probabilities sum to less than one.
var ErrNoTierSelected = errors.New("weighted selection returned no tier")

// TierRepository is the external store holding the Tiers relation (id, name, probability).
type TierRepository interface {
	sampler.Drawer
	// ListTiers returns every tier ordered by id, with a zero count.
	ListTiers(ctx context.Context) ([]model.Tier, error)
	// Setup creates the tiers table if it does not exist.
	Setup(ctx context.Context) error
	// UpsertTiers inserts the given tiers, replacing any existing row with the same id.
	UpsertTiers(ctx context.Context, tiers []model.Tier) error
	HealthCheck(ctx context.Context) (bool, error)
	Close()
}

// Open connects to the store selected by config.DatabaseType.
func Open(ctx context.Context, config configuration.ProbabilityConfig) (TierRepository, error) {
	switch config.DatabaseType {
	case configuration.Postgres:
		return NewPostgresTierRepository(ctx, config.PostgresConnectionString(), config.Table)
	case configuration.Sqlite:
		return NewSqliteTierRepository(ctx, config.DatabasePath, config.Table)
	case configuration.Memory:
		return NewMemoryTierRepository(TiersFromConfig(config.Tiers), config.Seed), nil
	default:
		return nil, errors.Errorf("unsupported database type %q", config.DatabaseType)
	}
}

func TiersFromConfig(configured []configuration.TierConfig) []model.Tier {
	tiers := make([]model.Tier, 0, len(configured))
	for _, c := range configured {
		tiers = append(tiers, model.Tier{Id: c.Id, Name: c.Name, Probability: c.Probability})
	}
	return tiers
}
