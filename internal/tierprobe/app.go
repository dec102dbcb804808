package tierprobe

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/tierprobe/internal/common"
	"github.com/armadaproject/tierprobe/internal/common/logging"
	"github.com/armadaproject/tierprobe/internal/common/util"
	"github.com/armadaproject/tierprobe/internal/tierprobe/aggregator"
	"github.com/armadaproject/tierprobe/internal/tierprobe/build"
	"github.com/armadaproject/tierprobe/internal/tierprobe/configuration"
	"github.com/armadaproject/tierprobe/internal/tierprobe/report"
	"github.com/armadaproject/tierprobe/internal/tierprobe/repository"
	"github.com/armadaproject/tierprobe/internal/tierprobe/sampler"
)

const (
	OutputText = "text"
	OutputYaml = "yaml"
)

// Configured probabilities further than this from one are reported as a warning.
const probabilitySumTolerance = 1e-9

type App struct {
	// Parameters passed to the CLI by the user.
	Params Params
	// Loaded and validated configuration.
	Config *configuration.TierProbeConfiguration
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// Opens the tier repository. Tests can replace it to simulate an unreachable store.
	OpenRepository func(ctx context.Context, config configuration.ProbabilityConfig) (repository.TierRepository, error)
}

// Params struct holds all user-customizable parameters that are not part of the config file.
type Params struct {
	// Print observed against configured probabilities after the histogram.
	Compare bool
	// Either "text" or "yaml".
	Output string
}

// New instantiates an App with default parameters, writing to standard out and opening the
// repository selected by config.
func New(config *configuration.TierProbeConfiguration) *App {
	return &App{
		Params:         Params{Output: OutputText},
		Config:         config,
		Out:            os.Stdout,
		OpenRepository: repository.Open,
	}
}

func (a *App) validateParams() error {
	switch a.Params.Output {
	case "", OutputText, OutputYaml:
		return nil
	default:
		return errors.Errorf("unknown output format %q: must be one of %s or %s", a.Params.Output, OutputText, OutputYaml)
	}
}

// Run executes the selection query RunCount times and prints the resulting histogram. A failure to
// reach the store, or of any trial, is reported on Out and in the log; whatever was tallied up to
// that point is still printed and Run returns nil.
func (a *App) Run(ctx context.Context) error {
	if err := a.validateParams(); err != nil {
		return err
	}
	runId := util.NewULID()
	logger := log.WithFields(log.Fields{"runId": runId, "runCount": a.Config.RunCount})
	logger.Infof("Sampling tiers from %s", a.Config.Probability.DatabaseType)

	var metrics *sampler.Metrics
	if a.Config.MetricsPort != 0 {
		registry := prometheus.NewRegistry()
		m, err := sampler.NewMetrics(registry)
		if err != nil {
			return errors.WithStack(err)
		}
		metrics = m
		shutdown := common.ServeMetricsFor(a.Config.MetricsPort, prometheus.Gatherers{registry, prometheus.DefaultGatherer})
		defer shutdown()
	}

	result, runErr := a.sample(ctx, metrics, logger)
	if runErr != nil {
		logging.WithStacktrace(logger, runErr).Error("run did not complete")
		if a.Params.Output != OutputYaml {
			fmt.Fprintln(a.Out, runErr.Error())
		}
	}
	logger.WithField("completed", result.Completed).Info("Run finished")

	return a.report(runId, result, runErr)
}

func (a *App) sample(ctx context.Context, metrics *sampler.Metrics, logger *log.Entry) (sampler.Result, error) {
	repo, err := a.OpenRepository(ctx, a.Config.Probability)
	if err != nil {
		return sampler.Result{Tally: aggregator.Tally{}}, errors.WithMessage(err, "error opening tier repository")
	}
	defer repo.Close()

	if healthy, err := repo.HealthCheck(ctx); !healthy {
		return sampler.Result{Tally: aggregator.Tally{}}, errors.WithMessage(err, "tier repository is unhealthy")
	}
	a.checkProbabilities(ctx, repo, logger)
	return sampler.New(repo, a.Config.RunCount, metrics).Run(ctx)
}

// checkProbabilities logs a warning when the stored probabilities do not add up to one. Draws still
// proceed: a short sum makes some draws select nothing, a long sum starves the last tiers.
func (a *App) checkProbabilities(ctx context.Context, repo repository.TierRepository, logger *log.Entry) {
	tiers, err := repo.ListTiers(ctx)
	if err != nil {
		logging.WithStacktrace(logger, err).Warn("could not list tiers")
		return
	}
	sum := 0.0
	for _, tier := range tiers {
		sum += tier.Probability
	}
	if math.Abs(sum-1) > probabilitySumTolerance {
		logger.WithField("tiers", len(tiers)).Warnf("tier probabilities sum to %v, not 1", sum)
	}
}

func (a *App) report(runId string, result sampler.Result, runErr error) error {
	entries := result.Tally.Histogram()
	if a.Params.Output == OutputYaml {
		return report.WriteYaml(a.Out, report.NewSummary(runId, a.Config.RunCount, result.Completed, runErr, entries))
	}

	fmt.Fprintf(a.Out, "Executed query %d times\n", a.Config.RunCount)
	if err := report.PrintHistogram(a.Out, entries, report.DefaultHeaders); err != nil {
		return errors.WithStack(err)
	}
	if a.Params.Compare {
		fmt.Fprintln(a.Out)
		if err := report.PrintComparison(a.Out, entries, result.Completed); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// Seed creates the tiers table if needed and writes the configured tiers into it.
func (a *App) Seed(ctx context.Context) error {
	repo, err := a.OpenRepository(ctx, a.Config.Probability)
	if err != nil {
		return errors.WithMessage(err, "error opening tier repository")
	}
	defer repo.Close()

	if err := repo.Setup(ctx); err != nil {
		return err
	}
	tiers := repository.TiersFromConfig(a.Config.Probability.Tiers)
	if err := repo.UpsertTiers(ctx, tiers); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Seeded %d tiers into %s\n", len(tiers), a.Config.Probability.Table)
	for _, tier := range tiers {
		fmt.Fprintf(a.Out, "  %s\n", tier)
	}
	return nil
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}
