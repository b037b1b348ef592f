package dist

import (
	"math"
	"testing"

	"creatures-server/internal/rng"
)

// scriptedSource replays a fixed list of uniforms, cycling at the end.
type scriptedSource struct {
	values []float64
	pos    int
}

func (s *scriptedSource) Next() float64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// TestUniformSample checks the min + u*(max-min) mapping.
func TestUniformSample(t *testing.T) {
	u, err := NewUniform(&scriptedSource{values: []float64{0.5}}, 10, 20)
	if err != nil {
		t.Fatalf("NewUniform returned error: %v", err)
	}
	if got := u.Sample(); got != 15 {
		t.Fatalf("Sample() = %v, want 15", got)
	}

	if _, err := NewUniform(&scriptedSource{values: []float64{0}}, 5, 1); err == nil {
		t.Fatal("expected error for max < min")
	}
}

// TestNormalSample checks Box-Muller against hand-computed draws.
func TestNormalSample(t *testing.T) {
	src := &scriptedSource{values: []float64{0.25, 0.75}}
	n, err := NewNormal(src, 100, 10)
	if err != nil {
		t.Fatalf("NewNormal returned error: %v", err)
	}

	want := 100 + 10*math.Sqrt(-2*math.Log(0.25))*math.Cos(2*math.Pi*0.75)
	if got := n.Sample(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Sample() = %v, want %v", got, want)
	}
}

// TestNormalSurvivesZeroDraw ensures a zero uniform cannot poison the sample.
func TestNormalSurvivesZeroDraw(t *testing.T) {
	n, _ := NewNormal(&scriptedSource{values: []float64{0, 0.5}}, 0, 1)
	got := n.Sample()
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("Sample() = %v, want finite", got)
	}
}

// TestExponentialSample checks -ln(u)/lambda.
func TestExponentialSample(t *testing.T) {
	e, err := NewExponential(&scriptedSource{values: []float64{0.5}}, 2)
	if err != nil {
		t.Fatalf("NewExponential returned error: %v", err)
	}
	want := -math.Log(0.5) / 2
	if got := e.Sample(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Sample() = %v, want %v", got, want)
	}

	if _, err := NewExponential(&scriptedSource{values: []float64{0}}, 0); err == nil {
		t.Fatal("expected error for lambda <= 0")
	}
}

// TestPoissonKnuthCounting verifies the multiply-until-limit loop.
func TestPoissonKnuthCounting(t *testing.T) {
	// lambda=1 -> L ~= 0.3679. Draws 0.9, 0.9: product 0.81 then 0.729...
	// 0.9^k dips under L at k=10, so the sample is 9.
	p, err := NewPoisson(&scriptedSource{values: []float64{0.9}}, 1)
	if err != nil {
		t.Fatalf("NewPoisson returned error: %v", err)
	}
	if got := p.Sample(); got != 9 {
		t.Fatalf("Sample() = %d, want 9", got)
	}

	// A first draw below L yields zero events.
	p2, _ := NewPoisson(&scriptedSource{values: []float64{0.1}}, 1)
	if got := p2.Sample(); got != 0 {
		t.Fatalf("Sample() = %d, want 0", got)
	}
}

// TestBinomialSample counts Bernoulli successes over scripted draws.
func TestBinomialSample(t *testing.T) {
	src := &scriptedSource{values: []float64{0.1, 0.9, 0.2, 0.8, 0.3}}
	b, err := NewBinomial(src, 5, 0.5)
	if err != nil {
		t.Fatalf("NewBinomial returned error: %v", err)
	}
	if got := b.Sample(); got != 3 {
		t.Fatalf("Sample() = %d, want 3", got)
	}

	if _, err := NewBinomial(src, -1, 0.5); err == nil {
		t.Fatal("expected error for n < 0")
	}
	if _, err := NewBinomial(src, 5, 1.5); err == nil {
		t.Fatal("expected error for p > 1")
	}
}

// TestWeightedDegenerate verifies a single carrying weight always wins.
func TestWeightedDegenerate(t *testing.T) {
	items := []string{"COMMON", "UNCOMMON", "RARE", "EPIC", "LEGENDARY", "MYTHIC"}
	weights := []float64{1, 0, 0, 0, 0, 0}

	stream := rng.NewStream(31337)
	w, err := NewWeighted(stream, items, weights)
	if err != nil {
		t.Fatalf("NewWeighted returned error: %v", err)
	}

	for i := 0; i < 200; i++ {
		if got := w.Sample(); got != "COMMON" {
			t.Fatalf("draw %d: Sample() = %q, want COMMON", i, got)
		}
	}
}

// TestWeightedProportions checks the cumulative walk picks by range.
func TestWeightedProportions(t *testing.T) {
	items := []string{"a", "b", "c"}
	weights := []float64{1, 2, 1}

	cases := []struct {
		draw float64
		want string
	}{
		{0.0, "a"},
		{0.24, "a"},
		{0.26, "b"},
		{0.74, "b"},
		{0.80, "c"},
		{0.999, "c"},
	}

	for _, tc := range cases {
		w, err := NewWeighted(&scriptedSource{values: []float64{tc.draw}}, items, weights)
		if err != nil {
			t.Fatalf("NewWeighted returned error: %v", err)
		}
		if got := w.Sample(); got != tc.want {
			t.Fatalf("draw %v: Sample() = %q, want %q", tc.draw, got, tc.want)
		}
	}
}

// TestWeightedRejectsBadInput covers the validation paths.
func TestWeightedRejectsBadInput(t *testing.T) {
	src := &scriptedSource{values: []float64{0}}

	if _, err := NewWeighted(src, []string{}, []float64{}); err != ErrBadWeights {
		t.Fatalf("empty input error = %v, want %v", err, ErrBadWeights)
	}
	if _, err := NewWeighted(src, []string{"a"}, []float64{1, 2}); err != ErrBadWeights {
		t.Fatalf("mismatched input error = %v, want %v", err, ErrBadWeights)
	}
	if _, err := NewWeighted(src, []string{"a", "b"}, []float64{0, 0}); err != ErrBadWeights {
		t.Fatalf("zero total error = %v, want %v", err, ErrBadWeights)
	}
	if _, err := NewWeighted(src, []string{"a", "b"}, []float64{2, -1}); err != ErrBadWeights {
		t.Fatalf("negative weight error = %v, want %v", err, ErrBadWeights)
	}
}
