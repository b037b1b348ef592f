package evolution

import (
	"encoding/json"
	"time"

	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
)

// Category classifies what part of a creature a mutation touches.
type Category string

const (
	CategoryAttribute Category = "ATTRIBUTE"
	CategoryBehavior  Category = "BEHAVIOR"
	CategoryAbility   Category = "ABILITY"
	CategoryParticle  Category = "PARTICLE"
	CategorySubclass  Category = "SUBCLASS"
	CategorySynergy   Category = "SYNERGY"
	CategoryFormation Category = "FORMATION"
	CategoryExotic    Category = "EXOTIC"
)

// categoryWeights drive the per-mutation category pick. EXOTIC and
// SUBCLASS are dropped from the table when their config gates are off.
var categoryWeights = []struct {
	category Category
	weight   float64
}{
	{CategoryAttribute, 40},
	{CategoryBehavior, 25},
	{CategoryAbility, 15},
	{CategoryParticle, 5},
	{CategorySubclass, 5},
	{CategorySynergy, 5},
	{CategoryFormation, 3},
	{CategoryExotic, 2},
}

// Mutation is a selected mutation reference. The effect payload is
// opaque to the engine; only the identity, category and rarity feed
// engine decisions.
type Mutation struct {
	ID                string          `json:"id"`
	Category          Category        `json:"category"`
	Rarity            rarity.Rarity   `json:"rarity"`
	Effect            json.RawMessage `json:"effect,omitempty"`
	CompatibleRoles   []particle.Role `json:"compatible_roles,omitempty"`
	RequiresMutations []string        `json:"requires_mutations,omitempty"`
}

// Entry is one immutable record in a creature's append-only evolution
// history. Entries are created by the engine and never modified.
type Entry struct {
	CreatureID    string     `json:"creature_id"`
	BlockNumber   int64      `json:"block_number"`
	Confirmations int64      `json:"confirmations"`
	Milestone     int64      `json:"milestone,omitempty"`
	Mutations     []Mutation `json:"mutations"`
	Timestamp     time.Time  `json:"timestamp"`
	Guaranteed    bool       `json:"is_guaranteed,omitempty"`
}

// Result is what one evolution event reports back to the caller.
type Result struct {
	CreatureID    string     `json:"creature_id"`
	BlockNumber   int64      `json:"block_number"`
	Confirmations int64      `json:"confirmations"`
	Stage         Stage      `json:"stage"`
	Mutations     []Mutation `json:"mutations"`
	Milestone     int64      `json:"milestone,omitempty"`
	Guaranteed    bool       `json:"guaranteed,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// BlockInfo carries the two block fields the engine needs. The full
// block model lives in the block package; the engine stays independent
// of fetching concerns.
type BlockInfo struct {
	Height        int64
	Confirmations int64
}

// Config is the evolution tuning surface consumed by the engine.
type Config struct {
	MutationIntensity       float64
	MaxMutationsPerEvent    int
	EnableExoticMutations   bool
	EnableSubclassMutations bool
}

// DefaultConfig mirrors the canonical production settings.
func DefaultConfig() Config {
	return Config{
		MutationIntensity:       1.0,
		MaxMutationsPerEvent:    3,
		EnableExoticMutations:   false,
		EnableSubclassMutations: true,
	}
}
