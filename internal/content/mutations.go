package content

import (
	"context"
	"fmt"

	"creatures-server/internal/dist"
	"creatures-server/internal/evolution"
	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
	"creatures-server/internal/rng"
)

// mutationRarityWeights bias the in-category pick toward common
// mutations; rarer entries stay possible but infrequent.
var mutationRarityWeights = map[rarity.Rarity]float64{
	rarity.Common:    55,
	rarity.Uncommon:  25,
	rarity.Rare:      12,
	rarity.Epic:      5,
	rarity.Legendary: 2.5,
	rarity.Mythic:    0.5,
}

// MutationService materializes concrete mutations from the loaded pool.
// It implements the mutator interface the evolution engine hands off to.
type MutationService struct {
	pools *Pools
}

func NewMutationService(pools *Pools) *MutationService {
	return &MutationService{pools: pools}
}

// Generate selects one mutation of the requested category that is
// compatible with the creature's roles, has its prerequisites met, and
// is not already applied. The pick is rarity-weighted over the
// surviving candidates using the event stream, so it replays
// deterministically.
func (s *MutationService) Generate(ctx context.Context, req evolution.GenerateRequest, stream *rng.Stream) (evolution.Mutation, error) {
	candidates := s.candidates(req)
	if len(candidates) == 0 {
		return evolution.Mutation{}, fmt.Errorf("no eligible %s mutations for creature %s", req.Category, req.CreatureID)
	}

	weights := make([]float64, len(candidates))
	for i, c := range candidates {
		weights[i] = mutationRarityWeights[c.Rarity]
	}

	weighted, err := dist.NewWeighted(stream, candidates, weights)
	if err != nil {
		return evolution.Mutation{}, fmt.Errorf("building mutation distribution: %w", err)
	}

	picked := weighted.Sample()
	return evolution.Mutation{
		ID:                picked.ID,
		Category:          picked.Category,
		Rarity:            picked.Rarity,
		Effect:            picked.Effect,
		CompatibleRoles:   picked.CompatibleRoles,
		RequiresMutations: picked.RequiresMutations,
	}, nil
}

func (s *MutationService) candidates(req evolution.GenerateRequest) []MutationDef {
	applied := make(map[string]bool, len(req.Applied))
	for _, id := range req.Applied {
		applied[id] = true
	}

	var out []MutationDef
	for _, m := range s.pools.mutations {
		if m.Category != req.Category {
			continue
		}
		if applied[m.ID] {
			continue
		}
		if !rolesCompatible(m.CompatibleRoles, req.Roles) {
			continue
		}
		if !prerequisitesMet(m.RequiresMutations, applied) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// rolesCompatible: an empty compatibility list means any role.
func rolesCompatible(compatible, roles []particle.Role) bool {
	if len(compatible) == 0 {
		return true
	}
	for _, c := range compatible {
		for _, r := range roles {
			if c == r {
				return true
			}
		}
	}
	return false
}

func prerequisitesMet(required []string, applied map[string]bool) bool {
	for _, id := range required {
		if !applied[id] {
			return false
		}
	}
	return true
}
