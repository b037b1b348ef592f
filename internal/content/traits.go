package content

import (
	"context"
	"fmt"

	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
	"creatures-server/internal/rng"
	"creatures-server/internal/traits"
)

// TraitRepository resolves traits from the loaded pool. It implements
// the repository interface the trait assignment pipeline expects.
type TraitRepository struct {
	pools *Pools
}

func NewTraitRepository(pools *Pools) *TraitRepository {
	return &TraitRepository{pools: pools}
}

// Resolve picks one trait for the role and rarity. The pick is
// deterministic in the seed: the same creature always resolves the same
// trait from an unchanged pool.
func (r *TraitRepository) Resolve(ctx context.Context, role particle.Role, level rarity.Rarity, seed rng.Seed) (traits.Trait, error) {
	byRarity, ok := r.pools.traits[role]
	if !ok {
		return traits.Trait{}, fmt.Errorf("no traits for role %s", role)
	}

	candidates := byRarity[level]
	if len(candidates) == 0 {
		return traits.Trait{}, fmt.Errorf("no %s traits for role %s", level, role)
	}

	stream := rng.NewStream(uint32(rng.SeedFromString(fmt.Sprintf("%d-%s-%s", seed, role, level))))
	picked := candidates[stream.NextInt(0, len(candidates)-1)]

	return traits.Trait{
		ID:     picked.ID,
		Name:   picked.Name,
		Rarity: picked.Rarity,
	}, nil
}
