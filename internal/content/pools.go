// Package content loads the trait and mutation pools from JSON files
// and serves them to the generation and evolution pipelines. The pool
// files are data, not code: designers edit them without touching the
// engine.
package content

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"creatures-server/internal/evolution"
	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
)

// TraitDef is one entry in the trait pool file.
type TraitDef struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Role   particle.Role `json:"role"`
	Rarity rarity.Rarity `json:"rarity"`
}

// MutationDef is one entry in the mutation pool file.
type MutationDef struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Category          evolution.Category `json:"category"`
	Rarity            rarity.Rarity      `json:"rarity"`
	Effect            json.RawMessage    `json:"effect,omitempty"`
	CompatibleRoles   []particle.Role    `json:"compatible_roles,omitempty"`
	RequiresMutations []string           `json:"requires_mutations,omitempty"`
}

type traitFile struct {
	Traits []TraitDef `json:"traits"`
}

type mutationFile struct {
	Mutations []MutationDef `json:"mutations"`
}

// Pools holds the loaded content, indexed for the lookups the engine
// performs.
type Pools struct {
	traits    map[particle.Role]map[rarity.Rarity][]TraitDef
	mutations []MutationDef
	logger    *slog.Logger
}

// LoadPools reads traits.json and mutations.json from dir and validates
// every entry. A malformed pool is a startup error, not a runtime
// surprise.
func LoadPools(dir string, logger *slog.Logger) (*Pools, error) {
	logger = logger.With("component", "content_pools")
	logger.Debug("Loading content pools", "dir", dir)

	var tf traitFile
	if err := loadJSON(filepath.Join(dir, "traits.json"), &tf); err != nil {
		return nil, fmt.Errorf("loading trait pool: %w", err)
	}

	var mf mutationFile
	if err := loadJSON(filepath.Join(dir, "mutations.json"), &mf); err != nil {
		return nil, fmt.Errorf("loading mutation pool: %w", err)
	}

	pools, err := NewPools(tf.Traits, mf.Mutations, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Content pools loaded",
		"trait_count", len(tf.Traits),
		"mutation_count", len(mf.Mutations),
	)
	return pools, nil
}

// NewPools indexes and validates already-decoded pool entries.
func NewPools(traits []TraitDef, mutations []MutationDef, logger *slog.Logger) (*Pools, error) {
	indexed := make(map[particle.Role]map[rarity.Rarity][]TraitDef)

	seen := make(map[string]bool, len(traits))
	for i, t := range traits {
		if t.ID == "" {
			return nil, fmt.Errorf("trait %d: missing id", i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("trait %q: duplicate id", t.ID)
		}
		seen[t.ID] = true
		if !t.Role.IsValid() {
			return nil, fmt.Errorf("trait %q: unknown role %q", t.ID, t.Role)
		}
		if !t.Rarity.IsValid() {
			return nil, fmt.Errorf("trait %q: unknown rarity %q", t.ID, t.Rarity)
		}

		byRarity, ok := indexed[t.Role]
		if !ok {
			byRarity = make(map[rarity.Rarity][]TraitDef)
			indexed[t.Role] = byRarity
		}
		byRarity[t.Rarity] = append(byRarity[t.Rarity], t)
	}

	seenMut := make(map[string]bool, len(mutations))
	for i, m := range mutations {
		if m.ID == "" {
			return nil, fmt.Errorf("mutation %d: missing id", i)
		}
		if seenMut[m.ID] {
			return nil, fmt.Errorf("mutation %q: duplicate id", m.ID)
		}
		seenMut[m.ID] = true
		if !validCategory(m.Category) {
			return nil, fmt.Errorf("mutation %q: unknown category %q", m.ID, m.Category)
		}
		if !m.Rarity.IsValid() {
			return nil, fmt.Errorf("mutation %q: unknown rarity %q", m.ID, m.Rarity)
		}
		for _, role := range m.CompatibleRoles {
			if !role.IsValid() {
				return nil, fmt.Errorf("mutation %q: unknown compatible role %q", m.ID, role)
			}
		}
	}
	for _, m := range mutations {
		for _, req := range m.RequiresMutations {
			if !seenMut[req] {
				return nil, fmt.Errorf("mutation %q: unknown prerequisite %q", m.ID, req)
			}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Pools{
		traits:    indexed,
		mutations: mutations,
		logger:    logger,
	}, nil
}

// TraitCount reports pool size, for the status endpoint.
func (p *Pools) TraitCount() int {
	count := 0
	for _, byRarity := range p.traits {
		for _, defs := range byRarity {
			count += len(defs)
		}
	}
	return count
}

// MutationCount reports pool size, for the status endpoint.
func (p *Pools) MutationCount() int {
	return len(p.mutations)
}

func loadJSON(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func validCategory(c evolution.Category) bool {
	switch c {
	case evolution.CategoryAttribute, evolution.CategoryBehavior,
		evolution.CategoryAbility, evolution.CategoryParticle,
		evolution.CategorySubclass, evolution.CategorySynergy,
		evolution.CategoryFormation, evolution.CategoryExotic:
		return true
	}
	return false
}
