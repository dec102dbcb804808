package repository

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
)

// MemoryTierRepository performs the weighted selection in process over a fixed set of tiers.
// With a non-zero seed the sequence of draws is deterministic.
type MemoryTierRepository struct {
	tiers  []model.Tier
	random *rand.Rand
	lock   sync.Mutex
}

func NewMemoryTierRepository(tiers []model.Tier, seed int64) *MemoryTierRepository {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &MemoryTierRepository{random: rand.New(rand.NewSource(seed))}
	r.setTiers(tiers)
	return r
}

func (r *MemoryTierRepository) setTiers(tiers []model.Tier) {
	r.tiers = make([]model.Tier, len(tiers))
	copy(r.tiers, tiers)
	slices.SortFunc(r.tiers, func(a, b model.Tier) bool {
		return a.Id < b.Id
	})
}

// Draw takes one uniform value in [0, 1) and returns the first tier, in id order, whose cumulative
// probability reaches it.
func (r *MemoryTierRepository) Draw(ctx context.Context) (model.Observation, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := ctx.Err(); err != nil {
		return model.Observation{}, err
	}
	return drawCumulative(r.tiers, r.random.Float64())
}

func drawCumulative(tiers []model.Tier, value float64) (model.Observation, error) {
	cumulative := 0.0
	for _, tier := range tiers {
		cumulative += tier.Probability
		if cumulative-value >= 0 {
			return model.Observation{Id: tier.Id, Name: tier.Name, Probability: tier.Probability}, nil
		}
	}
	return model.Observation{}, ErrNoTierSelected
}

func (r *MemoryTierRepository) ListTiers(_ context.Context) ([]model.Tier, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	tiers := make([]model.Tier, len(r.tiers))
	copy(tiers, r.tiers)
	return tiers, nil
}

func (r *MemoryTierRepository) Setup(_ context.Context) error {
	return nil
}

func (r *MemoryTierRepository) UpsertTiers(_ context.Context, tiers []model.Tier) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	byId := make(map[int32]model.Tier, len(r.tiers)+len(tiers))
	for _, tier := range r.tiers {
		byId[tier.Id] = tier
	}
	for _, tier := range tiers {
		tier.Count = 0
		byId[tier.Id] = tier
	}
	merged := make([]model.Tier, 0, len(byId))
	for _, tier := range byId {
		merged = append(merged, tier)
	}
	r.setTiers(merged)
	return nil
}

func (r *MemoryTierRepository) HealthCheck(_ context.Context) (bool, error) {
	return true, nil
}

func (r *MemoryTierRepository) Close() {}
