package rarity

// Tier is the coarse creature power level derived from the total
// particle count.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
	Tier5
	Tier6
)

type tierRange struct {
	min, max int
	tier     Tier
}

var tierRanges = []tierRange{
	{60, 116, Tier1},
	{117, 175, Tier2},
	{176, 233, Tier3},
	{234, 291, Tier4},
	{292, 350, Tier5},
	{351, 400, Tier6},
}

// TierForTotal classifies a creature's total particle count. Totals
// below the table floor fall back to tier 1; totals above the table
// ceiling clamp to tier 6 so that full-budget creatures (500 particles)
// land in the top tier rather than the bottom one.
func TierForTotal(total int) Tier {
	for _, r := range tierRanges {
		if total >= r.min && total <= r.max {
			return r.tier
		}
	}
	if total > tierRanges[len(tierRanges)-1].max {
		return Tier6
	}
	return Tier1
}
