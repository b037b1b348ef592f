package evolution

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
	"creatures-server/internal/rng"
)

// TestMutationProbabilitySteps pins the step function values and its
// monotonicity.
func TestMutationProbabilitySteps(t *testing.T) {
	cases := []struct {
		confirmations int64
		want          float64
	}{
		{0, 0.01},
		{9_999, 0.01},
		{10_000, 0.10},
		{24_999, 0.10},
		{25_000, 0.25},
		{50_000, 0.30},
		{100_000, 0.35},
		{250_000, 0.40},
		{500_000, 0.50},
		{1_000_000, 0.60},
		{5_000_000, 0.60},
	}

	prev := 0.0
	for _, tc := range cases {
		got := MutationProbability(tc.confirmations)
		if got != tc.want {
			t.Fatalf("MutationProbability(%d) = %v, want %v", tc.confirmations, got, tc.want)
		}
		if got < prev {
			t.Fatalf("probability decreased at %d confirmations", tc.confirmations)
		}
		prev = got
	}
}

// TestStageForThresholds checks stage names across the thresholds.
func TestStageForThresholds(t *testing.T) {
	cases := []struct {
		confirmations int64
		want          Stage
	}{
		{0, StageNascent},
		{9_999, StageNascent},
		{10_000, StageEmerging},
		{25_000, StageDeveloping},
		{50_000, StageMature},
		{100_000, StageEvolved},
		{250_000, StageAscendant},
		{500_000, StageAwakened},
		{1_000_000, StageTranscendent},
	}
	for _, tc := range cases {
		if got := StageFor(tc.confirmations); got != tc.want {
			t.Fatalf("StageFor(%d) = %s, want %s", tc.confirmations, got, tc.want)
		}
	}
}

// TestMilestoneGuaranteeIdempotence walks the first-crossing guarantee
// through record-and-repeat calls.
func TestMilestoneGuaranteeIdempotence(t *testing.T) {
	if ShouldReceiveGuaranteedMutation(9_999, nil) {
		t.Fatal("no milestone reached, expected false")
	}
	if !ShouldReceiveGuaranteedMutation(10_000, nil) {
		t.Fatal("first crossing of 10k, expected true")
	}

	history := []Entry{{CreatureID: "c1", Milestone: 10_000}}
	if ShouldReceiveGuaranteedMutation(15_000, history) {
		t.Fatal("10k already recorded and 25k not reached, expected false")
	}
	if !ShouldReceiveGuaranteedMutation(25_000, history) {
		t.Fatal("first crossing of 25k, expected true")
	}

	history = append(history, Entry{CreatureID: "c1", Milestone: 25_000})
	if ShouldReceiveGuaranteedMutation(25_000, history) {
		t.Fatal("25k already recorded, expected false")
	}
}

// stubMutator fabricates mutations, optionally failing specific calls.
type stubMutator struct {
	calls    int
	failOn   map[int]bool
	lastReqs []GenerateRequest
}

func (m *stubMutator) Generate(_ context.Context, req GenerateRequest, stream *rng.Stream) (Mutation, error) {
	m.calls++
	m.lastReqs = append(m.lastReqs, req)
	if m.failOn[m.calls] {
		return Mutation{}, fmt.Errorf("simulated generation failure")
	}
	return Mutation{
		ID:       fmt.Sprintf("mut-%d", m.calls),
		Category: req.Category,
		Rarity:   rarity.Common,
	}, nil
}

func newTestEngine(t *testing.T, history History, mutator Mutator, cfg Config) *Engine {
	t.Helper()
	engine, err := NewEngine("creature-1", 777, cfg, history, mutator, slog.Default())
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	return engine
}

// TestNewEngineRejectsMissingCollaborators ensures an uninitialized
// engine is a constructor error, not a runtime surprise.
func TestNewEngineRejectsMissingCollaborators(t *testing.T) {
	if _, err := NewEngine("c", 1, DefaultConfig(), nil, &stubMutator{}, slog.Default()); err != ErrMissingHistory {
		t.Fatalf("missing history error = %v, want %v", err, ErrMissingHistory)
	}
	if _, err := NewEngine("c", 1, DefaultConfig(), NewMemoryHistory(), nil, slog.Default()); err != ErrMissingMutator {
		t.Fatalf("missing mutator error = %v, want %v", err, ErrMissingMutator)
	}
	if _, err := NewEngine("", 1, DefaultConfig(), NewMemoryHistory(), &stubMutator{}, slog.Default()); err == nil {
		t.Fatal("expected error for empty creature id")
	}
}

// TestEvolveAppendsHistoryEntry runs one event past a milestone and
// checks the recorded entry.
func TestEvolveAppendsHistoryEntry(t *testing.T) {
	history := NewMemoryHistory()
	mutator := &stubMutator{}
	engine := newTestEngine(t, history, mutator, DefaultConfig())

	result, err := engine.Evolve(context.Background(),
		BlockInfo{Height: 800_000, Confirmations: 50_000}, particle.Roles, nil)
	if err != nil {
		t.Fatalf("Evolve returned error: %v", err)
	}

	if result.Stage != StageMature {
		t.Fatalf("stage = %s, want Mature", result.Stage)
	}
	if !result.Guaranteed || result.Milestone != 50_000 {
		t.Fatalf("expected guaranteed 50k milestone, got %+v", result)
	}
	// Mature is stage 3: floor(3/2) = 1 mutation.
	if len(result.Mutations) != 1 {
		t.Fatalf("expected 1 mutation, got %d", len(result.Mutations))
	}

	entries, err := history.Entries(context.Background(), "creature-1")
	if err != nil {
		t.Fatalf("Entries returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Milestone != 50_000 || !entries[0].Guaranteed {
		t.Fatalf("entry milestone flags wrong: %+v", entries[0])
	}

	// A second event at the same milestone is no longer guaranteed.
	again, err := engine.Evolve(context.Background(),
		BlockInfo{Height: 800_000, Confirmations: 60_000}, particle.Roles, nil)
	if err != nil {
		t.Fatalf("Evolve returned error: %v", err)
	}
	if again.Guaranteed {
		t.Fatal("milestone already recorded, expected no guarantee")
	}
}

// TestEvolveCapsMutationsPerEvent checks the configured ceiling applies
// at high stages.
func TestEvolveCapsMutationsPerEvent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMutationsPerEvent = 2
	mutator := &stubMutator{}
	engine := newTestEngine(t, NewMemoryHistory(), mutator, cfg)

	// Transcendent is stage 7: floor(7/2) = 3, capped to 2.
	result, err := engine.Evolve(context.Background(),
		BlockInfo{Height: 1, Confirmations: 1_000_000}, particle.Roles, nil)
	if err != nil {
		t.Fatalf("Evolve returned error: %v", err)
	}
	if len(result.Mutations) != 2 {
		t.Fatalf("expected 2 mutations, got %d", len(result.Mutations))
	}
}

// TestEvolveSkipsFailedMutations verifies a generation failure reduces
// the applied count without aborting the event.
func TestEvolveSkipsFailedMutations(t *testing.T) {
	mutator := &stubMutator{failOn: map[int]bool{1: true}}
	history := NewMemoryHistory()
	engine := newTestEngine(t, history, mutator, DefaultConfig())

	result, err := engine.Evolve(context.Background(),
		BlockInfo{Height: 1, Confirmations: 1_000_000}, particle.Roles, nil)
	if err != nil {
		t.Fatalf("Evolve returned error: %v", err)
	}
	// Stage 7 yields 3 attempts; one fails.
	if len(result.Mutations) != 2 {
		t.Fatalf("expected 2 applied mutations after one failure, got %d", len(result.Mutations))
	}

	entries, _ := history.Entries(context.Background(), "creature-1")
	if len(entries) != 1 || len(entries[0].Mutations) != 2 {
		t.Fatalf("history entry should record the 2 applied mutations: %+v", entries)
	}
}

// TestEvolveExcludesGatedCategories verifies EXOTIC and SUBCLASS never
// appear when their gates are off.
func TestEvolveExcludesGatedCategories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableExoticMutations = false
	cfg.EnableSubclassMutations = false
	cfg.MaxMutationsPerEvent = 5
	mutator := &stubMutator{}
	engine := newTestEngine(t, NewMemoryHistory(), mutator, cfg)

	for confirmations := int64(1_000_000); confirmations < 1_000_050; confirmations++ {
		if _, err := engine.Evolve(context.Background(),
			BlockInfo{Height: 1, Confirmations: confirmations}, particle.Roles, nil); err != nil {
			t.Fatalf("Evolve returned error: %v", err)
		}
	}
	for _, req := range mutator.lastReqs {
		if req.Category == CategoryExotic || req.Category == CategorySubclass {
			t.Fatalf("gated category %s was selected", req.Category)
		}
	}
}

// TestEvolveIsDeterministicPerEvent checks replaying the same event
// yields the same mutation selections.
func TestEvolveIsDeterministicPerEvent(t *testing.T) {
	run := func() []Mutation {
		mutator := &stubMutator{}
		engine := newTestEngine(t, NewMemoryHistory(), mutator, DefaultConfig())
		result, err := engine.Evolve(context.Background(),
			BlockInfo{Height: 1, Confirmations: 250_000}, particle.Roles, nil)
		if err != nil {
			t.Fatalf("Evolve returned error: %v", err)
		}
		return result.Mutations
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("replayed event mutation counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Category != b[i].Category {
			t.Fatalf("replayed event category %d differs: %s vs %s", i, a[i].Category, b[i].Category)
		}
	}
}

// TestHighestMilestone pins the floor lookup.
func TestHighestMilestone(t *testing.T) {
	cases := []struct {
		confirmations int64
		want          int64
	}{
		{0, 0},
		{9_999, 0},
		{10_000, 10_000},
		{24_999, 10_000},
		{1_500_000, 1_000_000},
	}
	for _, tc := range cases {
		if got := HighestMilestone(tc.confirmations); got != tc.want {
			t.Fatalf("HighestMilestone(%d) = %d, want %d", tc.confirmations, got, tc.want)
		}
	}
}
