// Package particle allocates a creature's fixed particle budget across
// its five roles using seed-driven proportions under hard min/max
// constraints. The allocation is exact: the returned counts always sum
// to the requested total.
package particle

import (
	"fmt"
	"math"
	"sort"

	"creatures-server/internal/dist"
	"creatures-server/internal/rng"
)

const (
	// TotalParticles is the canonical creature budget.
	TotalParticles = 500
	// BasePerGroup is the unconditional floor handed to each role before
	// proportional distribution.
	BasePerGroup = 40
	// RangeMin and RangeMax bound each role's count wherever the budget
	// makes that feasible.
	RangeMin = 60
	RangeMax = 200
	// MinPerGroup is the absolute floor the over-allocation pass may
	// strip a role down to.
	MinPerGroup = 40
)

// Group is one allocated role with its derived attribute value.
type Group struct {
	Role      Role      `json:"role"`
	Count     int       `json:"count"`
	Attribute Attribute `json:"attribute"`
	Value     float64   `json:"value"`
}

// Allocate splits total particles across roles with the normalized
// random split: a base floor per role, proportional shares drawn from
// index-suffixed label seeds, clamping into [RangeMin, RangeMax], and a
// deterministic redistribution of any remainder.
//
// A total below BasePerGroup*len(roles) is a configuration error, never
// a best-effort allocation.
func Allocate(roles []Role, total int, seed rng.Seed) (map[Role]int, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("no roles to allocate particles to")
	}
	if total < BasePerGroup*len(roles) {
		return nil, fmt.Errorf("particle budget %d below base allocation %d for %d roles",
			total, BasePerGroup*len(roles), len(roles))
	}

	distributable := total - BasePerGroup*len(roles)

	// One raw draw per role, each from its own index-suffixed seed.
	raws := make([]float64, len(roles))
	var rawSum float64
	for i := range roles {
		label := fmt.Sprintf("%d-%d", seed, i)
		raws[i] = rng.NewStream(uint32(rng.SeedFromString(label))).Next()
		rawSum += raws[i]
	}

	counts := make([]int, len(roles))
	for i := range roles {
		proportion := 1.0 / float64(len(roles))
		if rawSum > 0 {
			proportion = raws[i] / rawSum
		}
		counts[i] = BasePerGroup + int(math.Floor(proportion*float64(distributable)))
	}

	// Clamp into the per-role range, then settle the difference.
	allocated := 0
	for i := range counts {
		if counts[i] < RangeMin {
			counts[i] = RangeMin
		}
		if counts[i] > RangeMax {
			counts[i] = RangeMax
		}
		allocated += counts[i]
	}

	remaining := total - allocated
	switch {
	case remaining > 0:
		topUp(counts, remaining)
	case remaining < 0:
		drainExcess(counts, -remaining)
	}

	result := make(map[Role]int, len(roles))
	for i, role := range roles {
		result[role] = counts[i]
	}
	return result, nil
}

// topUp adds the shortfall back, smallest groups first up to RangeMax,
// then a second index-order pass that ignores the cap so the exact-sum
// invariant holds even for infeasible budgets.
func topUp(counts []int, remaining int) {
	order := sortedIndexes(counts, false)
	for _, i := range order {
		if remaining == 0 {
			return
		}
		add := RangeMax - counts[i]
		if add > remaining {
			add = remaining
		}
		if add > 0 {
			counts[i] += add
			remaining -= add
		}
	}
	for i := range counts {
		if remaining == 0 {
			return
		}
		counts[i] += remaining
		remaining = 0
	}
}

// drainExcess removes over-allocation, largest groups first down to
// MinPerGroup, looping until balanced.
func drainExcess(counts []int, excess int) {
	for excess > 0 {
		order := sortedIndexes(counts, true)
		removedAny := false
		for _, i := range order {
			if excess == 0 {
				return
			}
			remove := counts[i] - MinPerGroup
			if remove > excess {
				remove = excess
			}
			if remove > 0 {
				counts[i] -= remove
				excess -= remove
				removedAny = true
			}
		}
		if !removedAny {
			return
		}
	}
}

// sortedIndexes orders group indexes by count, ties broken by index so
// the walk is deterministic.
func sortedIndexes(counts []int, descending bool) []int {
	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if descending {
			return counts[order[a]] > counts[order[b]]
		}
		return counts[order[a]] < counts[order[b]]
	})
	return order
}

// BuildGroups allocates counts for the canonical roles and derives each
// group's attribute value from the physics stream: count times the role
// multiplier, jittered by a narrow Gaussian.
func BuildGroups(total int, seed rng.Seed, physics *rng.Stream) ([]Group, error) {
	counts, err := Allocate(Roles, total, seed)
	if err != nil {
		return nil, err
	}

	jitter, err := dist.NewNormal(physics, 1.0, 0.05)
	if err != nil {
		return nil, fmt.Errorf("building attribute jitter: %w", err)
	}

	groups := make([]Group, 0, len(Roles))
	for _, role := range Roles {
		spec := roleAttributes[role]
		value := float64(counts[role]) * spec.mult * jitter.Sample()
		groups = append(groups, Group{
			Role:      role,
			Count:     counts[role],
			Attribute: spec.attr,
			Value:     math.Round(value*100) / 100,
		})
	}
	return groups, nil
}
