// Package traits assigns up to three traits per particle group: a
// rarity roll per slot via per-tier weighted tables, then resolution
// against an injected trait repository.
package traits

import (
	"context"
	"fmt"
	"log/slog"

	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
	"creatures-server/internal/rng"
)

// Slot names one of the trait positions on a group.
type Slot string

const (
	SlotPrimary   Slot = "primary"
	SlotSecondary Slot = "secondary"
	SlotTertiary  Slot = "tertiary"
)

// slotOrder is the fixed fill order; tier decides how many are active.
var slotOrder = []Slot{SlotPrimary, SlotSecondary, SlotTertiary}

// Trait is a resolved trait reference. The content itself lives in an
// external pool; the engine only carries the reference and its rarity.
type Trait struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Rarity rarity.Rarity `json:"rarity"`
}

// Assignment holds the resolved slots for one group. Inactive slots are
// nil.
type Assignment struct {
	Primary   *Trait `json:"primary,omitempty"`
	Secondary *Trait `json:"secondary,omitempty"`
	Tertiary  *Trait `json:"tertiary,omitempty"`
}

// Repository resolves a concrete trait for a role and rarity. The seed
// keeps resolution deterministic for a given creature.
type Repository interface {
	Resolve(ctx context.Context, role particle.Role, r rarity.Rarity, seed rng.Seed) (Trait, error)
}

// TraitCount returns how many slots a tier activates: one for tiers
// 1-2, two for 3-4, three for 5-6.
func TraitCount(tier rarity.Tier) int {
	switch {
	case tier <= rarity.Tier2:
		return 1
	case tier <= rarity.Tier4:
		return 2
	default:
		return 3
	}
}

// tierRarityWeights holds the per-tier slot probabilities in canonical
// rarity order. Each row sums to 1.
var tierRarityWeights = map[rarity.Tier][]float64{
	rarity.Tier1: {0.70, 0.25, 0.05, 0.00, 0.00, 0.00},
	rarity.Tier2: {0.55, 0.30, 0.12, 0.03, 0.00, 0.00},
	rarity.Tier3: {0.40, 0.30, 0.20, 0.08, 0.02, 0.00},
	rarity.Tier4: {0.25, 0.30, 0.25, 0.14, 0.05, 0.01},
	rarity.Tier5: {0.15, 0.25, 0.25, 0.20, 0.10, 0.05},
	rarity.Tier6: {0.10, 0.20, 0.25, 0.22, 0.15, 0.08},
}

// RollRarity draws a slot rarity by walking the canonical rarity order
// and accumulating the tier's probabilities until the draw is exceeded.
// If floating-point loss leaves no level selected, COMMON wins.
func RollRarity(tier rarity.Tier, stream *rng.Stream) rarity.Rarity {
	weights, ok := tierRarityWeights[tier]
	if !ok {
		weights = tierRarityWeights[rarity.Tier1]
	}

	r := stream.Next()
	cumulative := 0.0
	for i, level := range rarity.Canonical {
		cumulative += weights[i]
		if cumulative > r {
			return level
		}
	}
	return rarity.Common
}

// Assign rolls and resolves the active slots for one group. Each slot
// draws from its own label-derived stream so slot outcomes are
// independent of each other and of assignment order elsewhere.
//
// A repository miss is recoverable: the slot retries at COMMON with a
// warning, and is skipped entirely only if even COMMON has no entry.
func Assign(ctx context.Context, repo Repository, role particle.Role, tier rarity.Tier, seed rng.Seed, logger *slog.Logger) (Assignment, error) {
	logger = logger.With("component", "trait_assignment", "role", string(role), "tier", int(tier))

	var assignment Assignment
	count := TraitCount(tier)

	for i := 0; i < count; i++ {
		slot := slotOrder[i]
		stream := rng.NewStream(uint32(rng.SeedFromString(labelFor(seed, slot))))
		level := RollRarity(tier, stream)

		trait, err := repo.Resolve(ctx, role, level, seed)
		if err != nil {
			logger.Warn("No trait for rolled rarity, defaulting to common",
				"slot", string(slot), "rolled_rarity", string(level), "error", err)
			trait, err = repo.Resolve(ctx, role, rarity.Common, seed)
			if err != nil {
				logger.Warn("No common trait available, leaving slot empty",
					"slot", string(slot), "error", err)
				continue
			}
		}

		t := trait
		switch slot {
		case SlotPrimary:
			assignment.Primary = &t
		case SlotSecondary:
			assignment.Secondary = &t
		case SlotTertiary:
			assignment.Tertiary = &t
		}
	}

	return assignment, nil
}

func labelFor(seed rng.Seed, slot Slot) string {
	return fmt.Sprintf("%d-%s", seed, slot)
}
