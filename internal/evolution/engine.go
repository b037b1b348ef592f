// Package evolution implements the confirmation-driven mutation engine:
// stage and probability classification, the first-crossing milestone
// guarantee, weighted category selection, and the append-only history
// log behind it.
//
// An Engine is an explicit per-creature context object. The source
// design kept one process-wide live seed and history set; here every
// creature or session constructs its own Engine so concurrent evolution
// needs no global locking.
package evolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"creatures-server/internal/dist"
	"creatures-server/internal/particle"
	"creatures-server/internal/rng"
)

// Mutator is the external mutation content service. The engine selects a
// category and hands off; the mutator materializes the concrete effect.
type Mutator interface {
	Generate(ctx context.Context, req GenerateRequest, stream *rng.Stream) (Mutation, error)
}

// GenerateRequest tells the mutator what to materialize.
type GenerateRequest struct {
	CreatureID string
	Category   Category
	Roles      []particle.Role
	// Applied lists mutation IDs already on the creature, for
	// prerequisite checks.
	Applied []string
}

var (
	// ErrMissingHistory and ErrMissingMutator flag an engine used before
	// its collaborators were injected; evolving without them is fatal.
	ErrMissingHistory = errors.New("evolution engine has no history log")
	ErrMissingMutator = errors.New("evolution engine has no mutation service")
)

// Engine drives evolution for exactly one creature.
type Engine struct {
	creatureID string
	seed       rng.Seed
	cfg        Config
	history    History
	mutator    Mutator
	logger     *slog.Logger
}

// NewEngine validates the collaborators and returns a ready engine.
func NewEngine(creatureID string, seed rng.Seed, cfg Config, history History, mutator Mutator, logger *slog.Logger) (*Engine, error) {
	if creatureID == "" {
		return nil, fmt.Errorf("creature id is required")
	}
	if history == nil {
		return nil, ErrMissingHistory
	}
	if mutator == nil {
		return nil, ErrMissingMutator
	}
	if cfg.MaxMutationsPerEvent <= 0 {
		cfg.MaxMutationsPerEvent = DefaultConfig().MaxMutationsPerEvent
	}
	return &Engine{
		creatureID: creatureID,
		seed:       seed,
		cfg:        cfg,
		history:    history,
		mutator:    mutator,
		logger:     logger.With("component", "evolution_engine", "creature_id", creatureID),
	}, nil
}

// Evolve runs one evolution event against the current confirmation
// count, applies up to MaxMutationsPerEvent mutations, and appends one
// entry to the creature's history.
//
// Individual mutation generation failures are logged and skipped; the
// event completes with whatever mutations succeeded.
func (e *Engine) Evolve(ctx context.Context, block BlockInfo, roles []particle.Role, applied []string) (*Result, error) {
	logger := e.logger.With("operation", "evolve",
		"block_number", block.Height, "confirmations", block.Confirmations)

	history, err := e.history.Entries(ctx, e.creatureID)
	if err != nil {
		return nil, fmt.Errorf("loading evolution history: %w", err)
	}

	probability := MutationProbability(block.Confirmations)
	stage := StageFor(block.Confirmations)
	guaranteed := ShouldReceiveGuaranteedMutation(block.Confirmations, history)
	milestone := int64(0)
	if guaranteed {
		milestone = HighestMilestone(block.Confirmations)
	}

	// Each confirmation level gets its own deterministic event stream:
	// the creature seed XORed with the confirmation count, so replaying
	// the same event reproduces the same mutations.
	eventSeed := rng.Seed(uint32(e.seed) ^ uint32(uint64(block.Confirmations)))
	stream, err := rng.NewSystem(eventSeed).Stream("mutation")
	if err != nil {
		return nil, fmt.Errorf("building mutation stream: %w", err)
	}

	count := e.mutationCount(stage, probability, stream)
	if guaranteed && count == 0 {
		// First milestone crossing always yields at least one mutation.
		count = 1
	}

	logger.Debug("Evolution event computed",
		"stage", stage.String(),
		"probability", probability,
		"mutation_count", count,
		"guaranteed", guaranteed,
		"milestone", milestone,
	)

	categories, err := e.categoryPicker(stream)
	if err != nil {
		return nil, fmt.Errorf("building category distribution: %w", err)
	}

	mutations := make([]Mutation, 0, count)
	for i := 0; i < count; i++ {
		category := categories.Sample()
		mutation, err := e.mutator.Generate(ctx, GenerateRequest{
			CreatureID: e.creatureID,
			Category:   category,
			Roles:      roles,
			Applied:    appendIDs(applied, mutations),
		}, stream)
		if err != nil {
			logger.Warn("Mutation generation failed, skipping",
				"category", string(category), "index", i, "error", err)
			continue
		}
		mutations = append(mutations, mutation)
	}

	now := time.Now().UTC()
	entry := Entry{
		CreatureID:    e.creatureID,
		BlockNumber:   block.Height,
		Confirmations: block.Confirmations,
		Milestone:     milestone,
		Mutations:     mutations,
		Timestamp:     now,
		Guaranteed:    guaranteed,
	}
	if err := e.history.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending evolution entry: %w", err)
	}

	logger.Info("Evolution event recorded",
		"stage", stage.String(),
		"applied_mutations", len(mutations),
		"guaranteed", guaranteed,
	)

	return &Result{
		CreatureID:    e.creatureID,
		BlockNumber:   block.Height,
		Confirmations: block.Confirmations,
		Stage:         stage,
		Mutations:     mutations,
		Milestone:     milestone,
		Guaranteed:    guaranteed,
		Timestamp:     now,
	}, nil
}

// mutationCount decides how many mutations this event attempts. Nascent
// creatures get a single Bernoulli trial at the current probability;
// later stages scale with stage value, capped by configuration.
func (e *Engine) mutationCount(stage Stage, probability float64, stream *rng.Stream) int {
	if stage == StageNascent {
		if stream.NextBool(probability) {
			return 1
		}
		return 0
	}

	base := int(stage) / 2
	if base < 1 {
		base = 1
	}
	if base > e.cfg.MaxMutationsPerEvent {
		base = e.cfg.MaxMutationsPerEvent
	}
	return base
}

// categoryPicker builds the weighted category distribution with the
// config-gated categories removed.
func (e *Engine) categoryPicker(stream *rng.Stream) (dist.Weighted[Category], error) {
	items := make([]Category, 0, len(categoryWeights))
	weights := make([]float64, 0, len(categoryWeights))
	for _, cw := range categoryWeights {
		if cw.category == CategoryExotic && !e.cfg.EnableExoticMutations {
			continue
		}
		if cw.category == CategorySubclass && !e.cfg.EnableSubclassMutations {
			continue
		}
		items = append(items, cw.category)
		weights = append(weights, cw.weight)
	}
	return dist.NewWeighted(stream, items, weights)
}

func appendIDs(applied []string, mutations []Mutation) []string {
	out := make([]string, 0, len(applied)+len(mutations))
	out = append(out, applied...)
	for _, m := range mutations {
		out = append(out, m.ID)
	}
	return out
}
