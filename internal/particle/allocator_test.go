package particle

import (
	"testing"

	"creatures-server/internal/rng"
)

// TestAllocateExactSum verifies the exact-sum invariant across seeds and
// budgets.
func TestAllocateExactSum(t *testing.T) {
	totals := []int{200, 300, 400, 500, 650}
	seeds := []rng.Seed{0, 1, 42, 1234567, 4294967295}

	for _, total := range totals {
		for _, seed := range seeds {
			counts, err := Allocate(Roles, total, seed)
			if err != nil {
				t.Fatalf("Allocate(total=%d, seed=%d) returned error: %v", total, seed, err)
			}
			sum := 0
			for _, role := range Roles {
				sum += counts[role]
			}
			if sum != total {
				t.Fatalf("Allocate(total=%d, seed=%d) sums to %d", total, seed, sum)
			}
		}
	}
}

// TestAllocateRespectsBounds checks counts stay within the feasible
// range for the canonical budget.
func TestAllocateRespectsBounds(t *testing.T) {
	for seed := rng.Seed(0); seed < 50; seed++ {
		counts, err := Allocate(Roles, TotalParticles, seed)
		if err != nil {
			t.Fatalf("Allocate returned error: %v", err)
		}
		for role, count := range counts {
			if count < MinPerGroup || count > RangeMax {
				t.Fatalf("seed %d: role %s count %d outside [%d,%d]",
					seed, role, count, MinPerGroup, RangeMax)
			}
		}
	}
}

// TestAllocateDeterminism verifies identical seeds produce identical
// allocations.
func TestAllocateDeterminism(t *testing.T) {
	a, err := Allocate(Roles, TotalParticles, 987654)
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	b, err := Allocate(Roles, TotalParticles, 987654)
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	for _, role := range Roles {
		if a[role] != b[role] {
			t.Fatalf("role %s diverged: %d != %d", role, a[role], b[role])
		}
	}
}

// TestAllocateRejectsTinyBudget ensures a budget below the base
// allocation is a configuration error.
func TestAllocateRejectsTinyBudget(t *testing.T) {
	if _, err := Allocate(Roles, BasePerGroup*len(Roles)-1, 1); err == nil {
		t.Fatal("expected error for budget below base allocation")
	}
	if _, err := Allocate(nil, TotalParticles, 1); err == nil {
		t.Fatal("expected error for empty role list")
	}
}

// TestAllocateEqualProportions checks the worked example: 500 particles,
// 5 roles, base 40, equal proportions give 100 each with no remainder.
func TestAllocateEqualProportions(t *testing.T) {
	// distributable = 500 - 5*40 = 300; 40 + floor(0.2*300) = 100.
	distributable := TotalParticles - BasePerGroup*len(Roles)
	if distributable != 300 {
		t.Fatalf("distributable = %d, want 300", distributable)
	}
	want := BasePerGroup + distributable/len(Roles)
	if want != 100 {
		t.Fatalf("per-role equal share = %d, want 100", want)
	}
}

// TestBuildGroupsCanonicalOrder verifies groups come back in role order
// with classified counts and positive attribute values.
func TestBuildGroupsCanonicalOrder(t *testing.T) {
	sys := rng.NewSystem(20240101)
	physics, err := sys.Stream("physics")
	if err != nil {
		t.Fatalf("physics stream: %v", err)
	}

	groups, err := BuildGroups(TotalParticles, sys.Seed(), physics)
	if err != nil {
		t.Fatalf("BuildGroups returned error: %v", err)
	}
	if len(groups) != len(Roles) {
		t.Fatalf("expected %d groups, got %d", len(Roles), len(groups))
	}

	sum := 0
	for i, g := range groups {
		if g.Role != Roles[i] {
			t.Fatalf("group %d role = %s, want %s", i, g.Role, Roles[i])
		}
		if g.Attribute != Roles[i].AttributeFor() {
			t.Fatalf("group %d attribute = %s, want %s", i, g.Attribute, Roles[i].AttributeFor())
		}
		if g.Value <= 0 {
			t.Fatalf("group %d attribute value = %v, want > 0", i, g.Value)
		}
		sum += g.Count
	}
	if sum != TotalParticles {
		t.Fatalf("group counts sum to %d, want %d", sum, TotalParticles)
	}
}
