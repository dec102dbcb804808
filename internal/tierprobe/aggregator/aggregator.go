package aggregator

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
)

// Tally maps a tier id to its running aggregate. There is at most one entry per id.
type Tally map[int32]model.Tier

// Observe folds o into tally and returns it. The first observation of an id fixes that tier's name
// and probability; later observations only increment its count. A nil tally is allocated.
func Observe(tally Tally, o model.Observation) Tally {
	if tally == nil {
		tally = make(Tally)
	}
	tier, ok := tally[o.Id]
	if !ok {
		tier = model.Tier{
			Id:          o.Id,
			Name:        o.Name,
			Probability: o.Probability,
			Count:       0,
		}
	}
	tier.Count++
	tally[o.Id] = tier
	return tally
}

// Total is the number of observations folded into the tally.
func (t Tally) Total() int {
	total := 0
	for _, tier := range t {
		total += tier.Count
	}
	return total
}

// Histogram returns one entry per tier, sorted by label in byte order.
func (t Tally) Histogram() []model.Entry {
	tiers := maps.Values(t)
	entries := make([]model.Entry, 0, len(tiers))
	for _, tier := range tiers {
		entries = append(entries, model.Entry{
			Label:       tier.Label(),
			Count:       tier.Count,
			Probability: tier.Probability,
		})
	}
	// Two ids may share a label; ties are ordered by count.
	slices.SortFunc(entries, func(a, b model.Entry) bool {
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Count < b.Count
	})
	return entries
}
