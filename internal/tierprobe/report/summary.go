package report

import (
	"io"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
)

// Summary is the machine-readable form of a run.
type Summary struct {
	RunId     string        `json:"runId"`
	RunCount  int           `json:"runCount"`
	Completed int           `json:"completed"`
	Error     string        `json:"error,omitempty"`
	Tiers     []TierSummary `json:"tiers"`
}

type TierSummary struct {
	Label       string  `json:"label"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
	Observed    float64 `json:"observed"`
}

func NewSummary(runId string, runCount, completed int, runErr error, entries []model.Entry) Summary {
	s := Summary{
		RunId:     runId,
		RunCount:  runCount,
		Completed: completed,
		Tiers:     make([]TierSummary, 0, len(entries)),
	}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	for _, e := range entries {
		s.Tiers = append(s.Tiers, TierSummary{
			Label:       e.Label,
			Count:       e.Count,
			Probability: e.Probability,
			Observed:    ObservedRatio(e.Count, completed),
		})
	}
	return s
}

func WriteYaml(w io.Writer, s Summary) error {
	out, err := yaml.Marshal(s)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = w.Write(out)
	return err
}
