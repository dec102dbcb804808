package sampler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/tierprobe/internal/tierprobe/aggregator"
	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
)

// Drawer performs one weighted selection over the tiers and returns the selected row.
type Drawer interface {
	Draw(ctx context.Context) (model.Observation, error)
}

// Result is what a run accumulated. Completed equals Attempted unless the last attempted trial failed.
type Result struct {
	Tally     aggregator.Tally
	Attempted int
	Completed int
}

// Sampler executes a fixed number of sequential, independent trials against a Drawer.
type Sampler struct {
	drawer   Drawer
	runCount int
	metrics  *Metrics
	clock    func() time.Time
}

func New(drawer Drawer, runCount int, metrics *Metrics) *Sampler {
	return &Sampler{
		drawer:   drawer,
		runCount: runCount,
		metrics:  metrics,
		clock:    time.Now,
	}
}

// Run performs the trials one at a time. The first failure, including cancellation of ctx, stops the
// run: no further trials are attempted and the error is returned together with everything tallied so far.
func (s *Sampler) Run(ctx context.Context) (Result, error) {
	result := Result{Tally: aggregator.Tally{}}
	logger := log.WithField("runCount", s.runCount)

	for i := 0; i < s.runCount; i++ {
		result.Attempted++
		o, err := s.trial(ctx)
		if err != nil {
			return result, errors.WithMessagef(err, "trial %d of %d", i+1, s.runCount)
		}
		result.Tally = aggregator.Observe(result.Tally, o)
		result.Completed++

		if result.Completed%1000 == 0 {
			logger.Debugf("completed %d trials", result.Completed)
		}
	}
	return result, nil
}

func (s *Sampler) trial(ctx context.Context) (model.Observation, error) {
	if err := ctx.Err(); err != nil {
		return model.Observation{}, errors.WithStack(err)
	}
	start := s.clock()
	o, err := s.drawer.Draw(ctx)
	s.metrics.recordTrial(s.clock().Sub(start).Seconds(), err)
	return o, err
}
