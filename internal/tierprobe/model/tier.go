package model

import (
	"fmt"
	"strconv"
)

// Observation is the row returned by one trial of the weighted selection.
type Observation struct {
	Id          int32
	Name        string
	Probability float64
}

// Tier is the aggregate for one tier id. Name and Probability are those of the first observation of Id.
type Tier struct {
	Id          int32
	Name        string
	Probability float64
	Count       int
}

// Label identifies the tier in reports as "{Name}({Probability})".
func (t Tier) Label() string {
	return Label(t.Name, t.Probability)
}

func (t Tier) String() string {
	return fmt.Sprintf("Id=%d, Name=%s, Probability=%s, Count=%d", t.Id, t.Name, FormatProbability(t.Probability), t.Count)
}

// Entry is one row of a histogram.
type Entry struct {
	Label       string
	Count       int
	Probability float64
}

func Label(name string, probability float64) string {
	return name + "(" + FormatProbability(probability) + ")"
}

// FormatProbability renders p with the fewest digits that still round-trip, e.g. 0.7 rather than 0.700000.
func FormatProbability(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}
