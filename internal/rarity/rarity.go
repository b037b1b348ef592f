// Package rarity maps particle counts to rarity and tier buckets through
// fixed range tables. Both lookups are total functions: values outside
// every range fall into a documented default bucket instead of erroring.
package rarity

// Rarity is the fine-grained quality label applied to particle groups
// and traits.
type Rarity string

const (
	Common    Rarity = "COMMON"
	Uncommon  Rarity = "UNCOMMON"
	Rare      Rarity = "RARE"
	Epic      Rarity = "EPIC"
	Legendary Rarity = "LEGENDARY"
	Mythic    Rarity = "MYTHIC"
)

// Canonical is the fixed iteration order for every cumulative-probability
// walk. Walking a map instead of this list would make trait rolls depend
// on hash order and break cross-implementation determinism.
var Canonical = []Rarity{Common, Uncommon, Rare, Epic, Legendary, Mythic}

// IsValid reports whether r is one of the canonical levels.
func (r Rarity) IsValid() bool {
	for _, c := range Canonical {
		if r == c {
			return true
		}
	}
	return false
}

// Index returns the ordinal position of r in the canonical order, or -1.
func (r Rarity) Index() int {
	for i, c := range Canonical {
		if r == c {
			return i
		}
	}
	return -1
}

type countRange struct {
	min, max int
	rarity   Rarity
}

// Closed intervals covering [60,200] with no gaps.
var particleRanges = []countRange{
	{60, 116, Common},
	{117, 158, Uncommon},
	{159, 186, Rare},
	{187, 197, Epic},
	{198, 199, Legendary},
	{200, 200, Mythic},
}

// ForCount classifies a per-group particle count. Counts outside every
// range default to COMMON.
func ForCount(count int) Rarity {
	for _, r := range particleRanges {
		if count >= r.min && count <= r.max {
			return r.rarity
		}
	}
	return Common
}
