package rng

import "errors"

// ErrEmptySlice is returned when a random pick is requested from an
// empty slice.
var ErrEmptySlice = errors.New("cannot pick from an empty slice")

// Stream is a single Mulberry32 sequence. The 32-bit state is the only
// persisted value; every draw advances it. A stream belongs to exactly
// one System (or one label-derived context) and is never shared.
type Stream struct {
	state uint32
}

// NewStream creates a stream starting from the given 32-bit state.
func NewStream(seed uint32) *Stream {
	return &Stream{state: seed}
}

// Next advances the stream and returns a float in [0, 1).
//
// This is Mulberry32, kept operation-for-operation identical to the
// canonical definition: any deviation in the wrap-around arithmetic
// diverges the sequence from other implementations.
func (s *Stream) Next() float64 {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// NextInt returns an integer in [min, max] inclusive.
func (s *Stream) NextInt(min, max int) int {
	if max <= min {
		return min
	}
	return int(s.Next()*float64(max-min+1)) + min
}

// NextBool returns true with probability p.
func (s *Stream) NextBool(p float64) bool {
	return s.Next() < p
}

// Item returns one element picked uniformly from items.
func Item[T any](s *Stream, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptySlice
	}
	return items[s.NextInt(0, len(items)-1)], nil
}

// Items returns n elements by shuffling a copy of items and slicing the
// front. When n exceeds the slice length the whole shuffled slice is
// returned.
func Items[T any](s *Stream, items []T, n int) ([]T, error) {
	if len(items) == 0 {
		return nil, ErrEmptySlice
	}
	cp := make([]T, len(items))
	copy(cp, items)
	Shuffle(s, cp)
	if n > len(cp) {
		n = len(cp)
	}
	return cp[:n], nil
}

// Shuffle permutes items in place with a Fisher-Yates walk from the last
// index down to 1, using NextInt(0, i) for the swap index.
func Shuffle[T any](s *Stream, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := s.NextInt(0, i)
		items[i], items[j] = items[j], items[i]
	}
}
