package tierprobe

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/tierprobe/internal/tierprobe/configuration"
	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
	"github.com/armadaproject/tierprobe/internal/tierprobe/report"
	"github.com/armadaproject/tierprobe/internal/tierprobe/repository"
)

func memoryConfig(runCount int, tiers ...configuration.TierConfig) *configuration.TierProbeConfiguration {
	return &configuration.TierProbeConfiguration{
		RunCount: runCount,
		Probability: configuration.ProbabilityConfig{
			DatabaseType: configuration.Memory,
			Table:        "Tiers",
			Seed:         42,
			Tiers:        tiers,
		},
	}
}

var onlyTier = configuration.TierConfig{Id: 1, Name: "Only", Probability: 1}

func newTestApp(config *configuration.TierProbeConfiguration) (*App, *bytes.Buffer) {
	out := new(bytes.Buffer)
	app := New(config)
	app.Out = out
	return app, out
}

func TestRun_SingleTier(t *testing.T) {
	app, out := newTestApp(memoryConfig(5, onlyTier))

	require.NoError(t, app.Run(context.Background()))

	expected := "" +
		"Executed query 5 times\n" +
		"--------------\n" +
		"   tier  count\n" +
		"Only(1)  5  \n"
	assert.Equal(t, expected, out.String())
}

func TestRun_CountsSumToRunCount(t *testing.T) {
	app, out := newTestApp(memoryConfig(1000,
		configuration.TierConfig{Id: 1, Name: "Common", Probability: 0.7},
		configuration.TierConfig{Id: 2, Name: "Rare", Probability: 0.25},
		configuration.TierConfig{Id: 3, Name: "Legendary", Probability: 0.05},
	))
	app.Params.Output = OutputYaml

	require.NoError(t, app.Run(context.Background()))

	var summary report.Summary
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &summary))
	assert.NotEmpty(t, summary.RunId)
	assert.Equal(t, 1000, summary.RunCount)
	assert.Equal(t, 1000, summary.Completed)
	assert.Empty(t, summary.Error)
	total := 0
	for _, tier := range summary.Tiers {
		total += tier.Count
	}
	assert.Equal(t, 1000, total)
}

func TestRun_RepositoryUnavailable(t *testing.T) {
	app, out := newTestApp(memoryConfig(5, onlyTier))
	app.OpenRepository = func(context.Context, configuration.ProbabilityConfig) (repository.TierRepository, error) {
		return nil, errors.New("connection refused")
	}

	require.NoError(t, app.Run(context.Background()))

	expected := "" +
		"error opening tier repository: connection refused\n" +
		"Executed query 5 times\n" +
		"-----------\n" +
		"tier  count\n"
	assert.Equal(t, expected, out.String())
}

func TestRun_TrialFailureKeepsPartialTally(t *testing.T) {
	app, out := newTestApp(memoryConfig(5, onlyTier))
	repo := &failingRepository{
		draws: []model.Observation{
			{Id: 1, Name: "Common", Probability: 0.7},
			{Id: 1, Name: "Common", Probability: 0.7},
		},
		err: errors.New("boom"),
	}
	app.OpenRepository = func(context.Context, configuration.ProbabilityConfig) (repository.TierRepository, error) {
		return repo, nil
	}

	require.NoError(t, app.Run(context.Background()))

	expected := "" +
		"trial 3 of 5: boom\n" +
		"Executed query 5 times\n" +
		"------------------\n" +
		"       tier  count\n" +
		"Common(0.7)  2  \n"
	assert.Equal(t, expected, out.String())
	assert.Equal(t, 3, repo.calls)
	assert.True(t, repo.closed)
}

func TestRun_TrialFailureInYaml(t *testing.T) {
	app, out := newTestApp(memoryConfig(5, onlyTier))
	app.Params.Output = OutputYaml
	app.OpenRepository = func(context.Context, configuration.ProbabilityConfig) (repository.TierRepository, error) {
		return &failingRepository{err: repository.ErrNoTierSelected}, nil
	}

	require.NoError(t, app.Run(context.Background()))

	var summary report.Summary
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 0, summary.Completed)
	assert.Equal(t, "trial 1 of 5: "+repository.ErrNoTierSelected.Error(), summary.Error)
	assert.Empty(t, summary.Tiers)
}

func TestRun_Cancelled(t *testing.T) {
	app, out := newTestApp(memoryConfig(5, onlyTier))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, app.Run(ctx))

	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "trial 1 of 5: context canceled", lines[0])
	assert.Equal(t, "Executed query 5 times", lines[1])
	assert.Equal(t, "tier  count", lines[3])
}

func TestRun_Compare(t *testing.T) {
	app, out := newTestApp(memoryConfig(4, onlyTier))
	app.Params.Compare = true

	require.NoError(t, app.Run(context.Background()))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "", lines[4])
	assert.Equal(t, []string{"tier", "count", "observed", "configured", "difference"}, strings.Fields(lines[5]))
	assert.Equal(t, []string{"Only(1)", "4", "1.0000", "1", "+0.0000"}, strings.Fields(lines[6]))
}

func TestRun_UnknownOutput(t *testing.T) {
	app, out := newTestApp(memoryConfig(5, onlyTier))
	app.Params.Output = "xml"

	assert.Error(t, app.Run(context.Background()))
	assert.Empty(t, out.String())
}

func TestSeedThenRun_Sqlite(t *testing.T) {
	config := &configuration.TierProbeConfiguration{
		RunCount: 3,
		Probability: configuration.ProbabilityConfig{
			DatabaseType: configuration.Sqlite,
			DatabasePath: filepath.Join(t.TempDir(), "tiers.db"),
			Table:        "Tiers",
			Tiers:        []configuration.TierConfig{onlyTier},
		},
	}

	seeder, seedOut := newTestApp(config)
	require.NoError(t, seeder.Seed(context.Background()))
	assert.Equal(t, "Seeded 1 tiers into Tiers\n  Id=1, Name=Only, Probability=1, Count=0\n", seedOut.String())

	runner, runOut := newTestApp(config)
	require.NoError(t, runner.Run(context.Background()))
	assert.Equal(t, "Executed query 3 times\n--------------\n   tier  count\nOnly(1)  3  \n", runOut.String())
}

func TestSeed_RepositoryUnavailable(t *testing.T) {
	app, _ := newTestApp(memoryConfig(5, onlyTier))
	app.OpenRepository = func(context.Context, configuration.ProbabilityConfig) (repository.TierRepository, error) {
		return nil, errors.New("connection refused")
	}
	assert.ErrorContains(t, app.Seed(context.Background()), "connection refused")
}

func TestVersion(t *testing.T) {
	app, out := newTestApp(memoryConfig(1, onlyTier))
	require.NoError(t, app.Version())
	for _, field := range []string{"Version:", "Commit:", "Go version:", "Built:"} {
		assert.Contains(t, out.String(), field)
	}
}

// failingRepository returns draws in order and err once they are exhausted.
type failingRepository struct {
	draws  []model.Observation
	err    error
	calls  int
	closed bool
}

func (r *failingRepository) Draw(_ context.Context) (model.Observation, error) {
	r.calls++
	if r.calls > len(r.draws) {
		return model.Observation{}, r.err
	}
	return r.draws[r.calls-1], nil
}

func (r *failingRepository) ListTiers(_ context.Context) ([]model.Tier, error) {
	return []model.Tier{{Id: 1, Name: "Common", Probability: 0.7}}, nil
}

func (r *failingRepository) Setup(_ context.Context) error {
	return nil
}

func (r *failingRepository) UpsertTiers(_ context.Context, _ []model.Tier) error {
	return nil
}

func (r *failingRepository) HealthCheck(_ context.Context) (bool, error) {
	return true, nil
}

func (r *failingRepository) Close() {
	r.closed = true
}
