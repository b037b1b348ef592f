// Package rng implements the deterministic random number core: seed
// derivation from Bitcoin block data and named Mulberry32 streams.
//
// One System serves one creature or generation session. Nothing in this
// package holds global state; callers construct a System per seed and
// pass it down explicitly.
package rng

import "fmt"

// StreamNames is the fixed catalogue of named streams every System
// owns. The order is part of the contract and must not change.
var StreamNames = []string{
	"traits",
	"physics",
	"formation",
	"visual",
	"subclass",
	"ability",
	"mutation",
	"particle",
	"behavior",
	"general",
}

// System owns the active seed and one independent stream per catalogue
// name. Identical (seed, name) pairs always produce identical sequences.
type System struct {
	seed    Seed
	streams map[string]*Stream
}

// NewSystem builds a System with all catalogue streams seeded from the
// given seed.
func NewSystem(seed Seed) *System {
	s := &System{seed: seed}
	s.rebuild()
	return s
}

// Seed returns the seed this system was built from.
func (s *System) Seed() Seed {
	return s.seed
}

// Stream returns the named stream. Unknown names are an error rather
// than a lazily created stream: the catalogue is fixed so that every
// implementation draws from the same set of sequences.
func (s *System) Stream(name string) (*Stream, error) {
	st, ok := s.streams[name]
	if !ok {
		return nil, fmt.Errorf("unknown rng stream %q", name)
	}
	return st, nil
}

// Reseed discards all stream state and recreates the catalogue from the
// new seed.
func (s *System) Reseed(seed Seed) {
	s.seed = seed
	s.rebuild()
}

func (s *System) rebuild() {
	s.streams = make(map[string]*Stream, len(StreamNames))
	for _, name := range StreamNames {
		s.streams[name] = NewStream(StreamSeed(s.seed, name))
	}
}

// StreamSeed derives the per-stream state: the base seed XORed with the
// unweighted sum of the stream name's character codes. The fold is not
// positional; "ab" and "ba" collide on purpose because the canonical
// definition says so.
func StreamSeed(seed Seed, name string) uint32 {
	var sum uint32
	for _, c := range name {
		sum += uint32(c)
	}
	return uint32(seed) ^ sum
}
