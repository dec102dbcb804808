package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/tierprobe/internal/tierprobe/configuration"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tiers := []configuration.TierConfig{{Id: 1, Name: "Only", Probability: 1}}

	memory, err := Open(ctx, configuration.ProbabilityConfig{DatabaseType: configuration.Memory, Tiers: tiers, Seed: 1})
	require.NoError(t, err)
	assert.IsType(t, &MemoryTierRepository{}, memory)
	memory.Close()

	sqlite, err := Open(ctx, configuration.ProbabilityConfig{
		DatabaseType: configuration.Sqlite,
		DatabasePath: filepath.Join(t.TempDir(), "tiers.db"),
		Table:        "Tiers",
	})
	require.NoError(t, err)
	assert.IsType(t, &SqliteTierRepository{}, sqlite)
	sqlite.Close()

	_, err = Open(ctx, configuration.ProbabilityConfig{DatabaseType: "mssql"})
	assert.Error(t, err)
}

func TestQueriesQuoteTable(t *testing.T) {
	assert.Contains(t, postgresDrawQuery("Tiers"), `FROM "Tiers" t`)
	assert.Contains(t, sqliteDrawQuery(`we"ird`), `FROM "we""ird" t`)
	assert.Equal(t, `SELECT id, name, probability FROM "Tiers" ORDER BY id`, listTiersQuery("Tiers"))
}

func TestTiersFromConfig(t *testing.T) {
	tiers := TiersFromConfig([]configuration.TierConfig{
		{Id: 2, Name: "Rare", Probability: 0.3},
		{Id: 1, Name: "Common", Probability: 0.7},
	})
	require.Len(t, tiers, 2)
	assert.Equal(t, int32(2), tiers[0].Id)
	assert.Equal(t, 0, tiers[0].Count)
}
