package creature

import (
	"time"

	"creatures-server/internal/evolution"
	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
	"creatures-server/internal/traits"
)

// Group is one of a creature's five particle groups with its
// classification and resolved traits.
type Group struct {
	Role      particle.Role      `json:"role"`
	Count     int                `json:"count"`
	Attribute particle.Attribute `json:"attribute"`
	Value     float64            `json:"value"`
	Rarity    rarity.Rarity      `json:"rarity"`
	Traits    traits.Assignment  `json:"traits"`
}

// Creature is a generated creature. Seed, block identity and group
// counts are immutable after generation; group attribute values change
// only through evolution.
type Creature struct {
	ID             string          `json:"id"`
	OwnerID        int             `json:"owner_id"`
	Name           string          `json:"name"`
	BlockHeight    int64           `json:"block_height"`
	BlockHash      string          `json:"block_hash"`
	Seed           int64           `json:"seed"`
	TotalParticles int             `json:"total_particles"`
	Tier           rarity.Tier     `json:"tier"`
	Rarity         rarity.Rarity   `json:"rarity"`
	Stage          evolution.Stage `json:"stage"`
	Groups         []Group         `json:"groups"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RoleList returns the creature's roles in stored group order.
func (c *Creature) RoleList() []particle.Role {
	roles := make([]particle.Role, len(c.Groups))
	for i, g := range c.Groups {
		roles[i] = g.Role
	}
	return roles
}

// HighestGroupRarity is the creature-level rarity: the best rarity any
// of its groups reached.
func HighestGroupRarity(groups []Group) rarity.Rarity {
	best := rarity.Common
	for _, g := range groups {
		if g.Rarity.Index() > best.Index() {
			best = g.Rarity
		}
	}
	return best
}
