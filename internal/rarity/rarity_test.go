package rarity

import "testing"

// TestForCountBoundaries checks the closed-interval edges of the rarity
// table.
func TestForCountBoundaries(t *testing.T) {
	cases := []struct {
		count int
		want  Rarity
	}{
		{60, Common},
		{116, Common},
		{117, Uncommon},
		{158, Uncommon},
		{159, Rare},
		{186, Rare},
		{187, Epic},
		{197, Epic},
		{198, Legendary},
		{199, Legendary},
		{200, Mythic},
	}

	for _, tc := range cases {
		if got := ForCount(tc.count); got != tc.want {
			t.Fatalf("ForCount(%d) = %s, want %s", tc.count, got, tc.want)
		}
	}
}

// TestForCountCoversRangeWithoutGaps walks every count in [60,200] and
// checks each lands in exactly one bucket.
func TestForCountCoversRangeWithoutGaps(t *testing.T) {
	prev := Common
	for count := 60; count <= 200; count++ {
		got := ForCount(count)
		if !got.IsValid() {
			t.Fatalf("ForCount(%d) = %q, not a canonical rarity", count, got)
		}
		if got.Index() < prev.Index() {
			t.Fatalf("rarity regressed at count %d: %s after %s", count, got, prev)
		}
		prev = got
	}
}

// TestForCountDefaultsToCommon checks the out-of-range default branch.
func TestForCountDefaultsToCommon(t *testing.T) {
	for _, count := range []int{-5, 0, 59, 201, 100000} {
		if got := ForCount(count); got != Common {
			t.Fatalf("ForCount(%d) = %s, want COMMON", count, got)
		}
	}
}

// TestCanonicalOrder pins the fixed walk order used by cumulative
// probability selection.
func TestCanonicalOrder(t *testing.T) {
	want := []Rarity{Common, Uncommon, Rare, Epic, Legendary, Mythic}
	if len(Canonical) != len(want) {
		t.Fatalf("canonical order has %d levels, want %d", len(Canonical), len(want))
	}
	for i, r := range want {
		if Canonical[i] != r {
			t.Fatalf("canonical[%d] = %s, want %s", i, Canonical[i], r)
		}
	}
}

// TestTierForTotal checks tier boundaries and the clamping defaults.
func TestTierForTotal(t *testing.T) {
	cases := []struct {
		total int
		want  Tier
	}{
		{60, Tier1},
		{116, Tier1},
		{117, Tier2},
		{175, Tier2},
		{176, Tier3},
		{233, Tier3},
		{234, Tier4},
		{291, Tier4},
		{292, Tier5},
		{350, Tier5},
		{351, Tier6},
		{400, Tier6},
		// Below the table floor falls back to tier 1.
		{0, Tier1},
		{59, Tier1},
		// Above the table ceiling clamps to tier 6 so full-budget
		// creatures keep their top classification.
		{401, Tier6},
		{500, Tier6},
	}

	for _, tc := range cases {
		if got := TierForTotal(tc.total); got != tc.want {
			t.Fatalf("TierForTotal(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}
