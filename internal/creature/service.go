package creature

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"

	"creatures-server/internal/block"
	"creatures-server/internal/evolution"
	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
	"creatures-server/internal/rng"
	"creatures-server/internal/shared/errors"
	"creatures-server/internal/traits"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, c *Creature) error
	GetByID(ctx context.Context, id string) (*Creature, error)
	ListByOwner(ctx context.Context, ownerID int) ([]Creature, error)
	UpdateGroupValues(ctx context.Context, creatureID string, groups []Group) error
	ExistsByOwnerAndBlock(ctx context.Context, ownerID int, blockHeight int64) (bool, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Config holds the generation-side knobs.
type Config struct {
	TotalParticles int
	Evolution      evolution.Config
}

// Service orchestrates the full pipeline: block fetch, seed derivation,
// allocation, classification, trait assignment, persistence, and
// evolution events.
type Service struct {
	store     Store
	blocks    block.Fetcher
	traitRepo traits.Repository
	mutator   evolution.Mutator
	history   evolution.History
	cfg       Config
	logger    *slog.Logger
}

func NewService(store Store, blocks block.Fetcher, traitRepo traits.Repository, mutator evolution.Mutator, history evolution.History, cfg Config, logger *slog.Logger) *Service {
	if cfg.TotalParticles <= 0 {
		cfg.TotalParticles = particle.TotalParticles
	}
	logger.Debug("Initializing creature service", "total_particles", cfg.TotalParticles)

	return &Service{
		store:     store,
		blocks:    blocks,
		traitRepo: traitRepo,
		mutator:   mutator,
		history:   history,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate derives a creature from a Bitcoin block. The same block
// always yields the same seed, allocation, classification and traits;
// only identity fields (owner, name, timestamps) vary.
func (s *Service) Generate(ctx context.Context, ownerID int, name string, blockHeight int64) (*Creature, error) {
	logger := s.logger.With(
		"component", "creature_service",
		"operation", "generate",
		"owner_id", ownerID,
		"block_height", blockHeight,
	)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("creature name is required")
	}
	if len(name) > 64 {
		return nil, errors.Validation("creature name must be at most 64 characters")
	}

	exists, err := s.store.ExistsByOwnerAndBlock(ctx, ownerID, blockHeight)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Conflictf("creature already generated from block %d", blockHeight)
	}

	blockData, err := s.blocks.FetchByHeight(ctx, blockHeight)
	if err != nil {
		logger.Error("Failed to fetch block", "error", err)
		return nil, err
	}

	seed, err := rng.DeriveSeed(blockData.Hash, blockData.Nonce.String(), blockData.Timestamp)
	if err != nil {
		logger.Error("Failed to derive seed from block", "error", err)
		return nil, errors.WrapValidation("failed to derive seed from block", err)
	}

	system := rng.NewSystem(seed)
	physics, err := system.Stream("physics")
	if err != nil {
		return nil, errors.WrapInternal("failed to build physics stream", err)
	}

	rawGroups, err := particle.BuildGroups(s.cfg.TotalParticles, seed, physics)
	if err != nil {
		logger.Error("Particle allocation failed", "error", err)
		return nil, errors.WrapInternal("particle allocation failed", err)
	}

	tier := rarity.TierForTotal(s.cfg.TotalParticles)

	groups := make([]Group, 0, len(rawGroups))
	for _, rg := range rawGroups {
		assignment, err := traits.Assign(ctx, s.traitRepo, rg.Role, tier, seed, logger)
		if err != nil {
			return nil, errors.WrapInternal("trait assignment failed", err)
		}
		groups = append(groups, Group{
			Role:      rg.Role,
			Count:     rg.Count,
			Attribute: rg.Attribute,
			Value:     rg.Value,
			Rarity:    rarity.ForCount(rg.Count),
			Traits:    assignment,
		})
	}

	c := &Creature{
		OwnerID:        ownerID,
		Name:           name,
		BlockHeight:    blockData.Height,
		BlockHash:      blockData.Hash,
		Seed:           int64(seed),
		TotalParticles: s.cfg.TotalParticles,
		Tier:           tier,
		Rarity:         HighestGroupRarity(groups),
		Stage:          evolution.StageFor(blockData.Confirmations),
		Groups:         groups,
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.Info("Creature generated",
		"creature_id", c.ID,
		"seed", c.Seed,
		"tier", int(c.Tier),
		"rarity", c.Rarity,
		"stage", c.Stage.String(),
	)
	return c, nil
}

// Get loads a creature with its current evolution stage.
func (s *Service) Get(ctx context.Context, id string) (*Creature, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Stage reflects the latest recorded confirmations, not the value at
	// generation time.
	entries, err := s.history.Entries(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		c.Stage = evolution.StageFor(entries[len(entries)-1].Confirmations)
	}

	return c, nil
}

// List returns a player's creatures.
func (s *Service) List(ctx context.Context, ownerID int) ([]Creature, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// History returns a creature's append-only evolution log.
func (s *Service) History(ctx context.Context, id string) ([]evolution.Entry, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history.Entries(ctx, id)
}

// Delete removes a creature and its groups and history. Admin only;
// the route layer enforces the role.
func (s *Service) Delete(ctx context.Context, id string) error {
	logger := s.logger.With(
		"component", "creature_service",
		"operation", "delete",
		"creature_id", id,
	)

	if _, err := s.store.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Creature deleted")
	return nil
}

// Count returns the total creature count, for the status endpoint.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// Evolve runs one evolution event for a creature against its block's
// current confirmation count and applies attribute effects to the
// stored groups.
func (s *Service) Evolve(ctx context.Context, id string) (*evolution.Result, error) {
	logger := s.logger.With(
		"component", "creature_service",
		"operation", "evolve",
		"creature_id", id,
	)

	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	blockData, err := s.blocks.FetchByHash(ctx, c.BlockHash)
	if err != nil {
		logger.Error("Failed to refresh block confirmations", "error", err)
		return nil, err
	}

	entries, err := s.history.Entries(ctx, id)
	if err != nil {
		return nil, err
	}
	applied := appliedIDs(entries)

	engine, err := evolution.NewEngine(c.ID, rng.Seed(uint32(uint64(c.Seed))), s.cfg.Evolution, s.history, s.mutator, logger)
	if err != nil {
		return nil, errors.WrapInternal("failed to build evolution engine", err)
	}

	result, err := engine.Evolve(ctx, evolution.BlockInfo{
		Height:        blockData.Height,
		Confirmations: blockData.Confirmations,
	}, c.RoleList(), applied)
	if err != nil {
		return nil, errors.WrapInternal("evolution event failed", err)
	}

	if changed := applyAttributeEffects(c.Groups, result.Mutations, s.cfg.Evolution.MutationIntensity); changed {
		if err := s.store.UpdateGroupValues(ctx, c.ID, c.Groups); err != nil {
			return nil, err
		}
	}

	logger.Info("Creature evolved",
		"stage", result.Stage.String(),
		"mutations", len(result.Mutations),
		"guaranteed", result.Guaranteed,
	)
	return result, nil
}

// attributeEffect is the effect payload ATTRIBUTE mutations carry.
type attributeEffect struct {
	Attribute particle.Attribute `json:"attribute"`
	Modifier  float64            `json:"modifier"`
}

// applyAttributeEffects scales matching group values by each ATTRIBUTE
// mutation's modifier, with the configured intensity interpolating
// between no-op (0) and full effect (1).
func applyAttributeEffects(groups []Group, mutations []evolution.Mutation, intensity float64) bool {
	if intensity <= 0 {
		return false
	}

	changed := false
	for _, m := range mutations {
		if m.Category != evolution.CategoryAttribute || len(m.Effect) == 0 {
			continue
		}
		var effect attributeEffect
		if err := json.Unmarshal(m.Effect, &effect); err != nil || effect.Modifier <= 0 {
			continue
		}

		scale := 1 + (effect.Modifier-1)*intensity
		for i := range groups {
			if groups[i].Attribute != effect.Attribute {
				continue
			}
			groups[i].Value = math.Round(groups[i].Value*scale*100) / 100
			changed = true
		}
	}
	return changed
}

func appliedIDs(entries []evolution.Entry) []string {
	var out []string
	for _, e := range entries {
		for _, m := range e.Mutations {
			out = append(out, m.ID)
		}
	}
	return out
}
