// Package dist builds reusable probability distributions sampled through
// rng streams. Distributions are stateless value objects: all random
// state lives in the stream they are bound to.
package dist

import (
	"errors"
	"math"
)

// Source yields uniform floats in [0,1). *rng.Stream satisfies it.
type Source interface {
	Next() float64
}

var (
	// ErrInvalidParams reports distribution parameters outside their
	// valid domain.
	ErrInvalidParams = errors.New("invalid distribution parameters")
	// ErrBadWeights reports empty, mismatched or non-positive weight
	// inputs for a weighted distribution.
	ErrBadWeights = errors.New("weights must be non-empty, match items and sum to a positive total")
)

// tiny replaces a zero uniform draw before a logarithm. Mulberry32 can
// emit exactly 0, and ln(0) would poison the sample.
const tiny = 1e-12

// Uniform samples uniformly from [min, max).
type Uniform struct {
	min, max float64
	src      Source
}

// NewUniform builds a uniform distribution over [min, max).
func NewUniform(src Source, min, max float64) (Uniform, error) {
	if max < min {
		return Uniform{}, ErrInvalidParams
	}
	return Uniform{min: min, max: max, src: src}, nil
}

// Sample draws one value.
func (u Uniform) Sample() float64 {
	return u.min + u.src.Next()*(u.max-u.min)
}

// Normal samples a Gaussian via the Box-Muller transform. Each sample
// consumes exactly two uniform draws so sequences stay aligned across
// implementations.
type Normal struct {
	mean, sd float64
	src      Source
}

// NewNormal builds a normal distribution.
func NewNormal(src Source, mean, sd float64) (Normal, error) {
	if sd < 0 {
		return Normal{}, ErrInvalidParams
	}
	return Normal{mean: mean, sd: sd, src: src}, nil
}

// Sample draws one value.
func (n Normal) Sample() float64 {
	u1 := n.src.Next()
	u2 := n.src.Next()
	if u1 < tiny {
		u1 = tiny
	}
	return n.mean + n.sd*math.Sqrt(-2*math.Log(u1))*math.Cos(2*math.Pi*u2)
}

// Exponential samples an exponential distribution with rate lambda.
type Exponential struct {
	lambda float64
	src    Source
}

// NewExponential builds an exponential distribution; lambda must be
// positive.
func NewExponential(src Source, lambda float64) (Exponential, error) {
	if lambda <= 0 {
		return Exponential{}, ErrInvalidParams
	}
	return Exponential{lambda: lambda, src: src}, nil
}

// Sample draws one value.
func (e Exponential) Sample() float64 {
	u := e.src.Next()
	if u < tiny {
		u = tiny
	}
	return -math.Log(u) / e.lambda
}

// Poisson samples a Poisson distribution using Knuth's multiplicative
// algorithm. The number of uniform draws per sample varies with lambda.
type Poisson struct {
	limit float64
	src   Source
}

// NewPoisson builds a Poisson distribution; lambda must be positive.
func NewPoisson(src Source, lambda float64) (Poisson, error) {
	if lambda <= 0 {
		return Poisson{}, ErrInvalidParams
	}
	return Poisson{limit: math.Exp(-lambda), src: src}, nil
}

// Sample draws one value.
func (p Poisson) Sample() int {
	k := 0
	prod := 1.0
	for {
		k++
		prod *= p.src.Next()
		if prod <= p.limit {
			return k - 1
		}
	}
}

// Binomial samples the sum of n independent Bernoulli(p) trials,
// consuming exactly n uniform draws per sample.
type Binomial struct {
	n   int
	p   float64
	src Source
}

// NewBinomial builds a binomial distribution.
func NewBinomial(src Source, n int, p float64) (Binomial, error) {
	if n < 0 || p < 0 || p > 1 {
		return Binomial{}, ErrInvalidParams
	}
	return Binomial{n: n, p: p, src: src}, nil
}

// Sample draws one value.
func (b Binomial) Sample() int {
	count := 0
	for i := 0; i < b.n; i++ {
		if b.src.Next() < b.p {
			count++
		}
	}
	return count
}

// Weighted samples items proportionally to precomputed cumulative
// weights. Items are walked in slice order; the first item whose
// cumulative weight reaches the draw wins.
type Weighted[T any] struct {
	items      []T
	cumulative []float64
	total      float64
	src        Source
}

// NewWeighted builds a weighted-discrete distribution over items.
// Weights must match items one to one and sum to a positive total;
// individual zero weights are allowed.
func NewWeighted[T any](src Source, items []T, weights []float64) (Weighted[T], error) {
	if len(items) == 0 || len(items) != len(weights) {
		return Weighted[T]{}, ErrBadWeights
	}

	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return Weighted[T]{}, ErrBadWeights
		}
		total += w
		cumulative[i] = total
	}
	if total <= 0 {
		return Weighted[T]{}, ErrBadWeights
	}

	cp := make([]T, len(items))
	copy(cp, items)
	return Weighted[T]{items: cp, cumulative: cumulative, total: total, src: src}, nil
}

// Sample draws one item.
func (w Weighted[T]) Sample() T {
	r := w.src.Next() * w.total
	for i, c := range w.cumulative {
		if c >= r {
			return w.items[i]
		}
	}
	return w.items[len(w.items)-1]
}
