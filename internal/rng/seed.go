package rng

import (
	"fmt"
	"strconv"
	"strings"
)

// Seed is the 32-bit value from which every random decision for one
// creature is derived. All arithmetic on it wraps at 2^32 so that the
// same block data produces the same seed on every platform.
type Seed uint32

const hashPrefixLen = 8

// DeriveSeed combines a block's nonce, hash prefix and timestamp into a
// single seed: nonce XOR hex(hash[0:8]) XOR timestamp, each reduced
// modulo 2^32 first.
//
// The nonce may be a decimal integer or a hex string (with or without a
// 0x prefix). Malformed input is rejected outright: a silently defaulted
// seed would yield a different but valid-looking creature and break
// reproducibility.
func DeriveSeed(hash, nonce string, timestamp int64) (Seed, error) {
	if len(hash) < hashPrefixLen {
		return 0, fmt.Errorf("block hash too short: need at least %d hex characters, got %d", hashPrefixLen, len(hash))
	}

	prefix, err := strconv.ParseUint(hash[:hashPrefixLen], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid block hash prefix %q: %w", hash[:hashPrefixLen], err)
	}

	nonceVal, err := parseNonce(nonce)
	if err != nil {
		return 0, err
	}

	return Seed(uint32(nonceVal) ^ uint32(prefix) ^ uint32(uint64(timestamp))), nil
}

// parseNonce accepts a decimal nonce or a hex nonce. Values wider than
// 32 bits are reduced modulo 2^32.
func parseNonce(nonce string) (uint64, error) {
	if nonce == "" {
		return 0, fmt.Errorf("block nonce is empty")
	}

	if v, err := strconv.ParseUint(nonce, 10, 64); err == nil {
		return v, nil
	}

	hexPart := strings.TrimPrefix(strings.TrimPrefix(nonce, "0x"), "0X")
	v, err := strconv.ParseUint(hexPart, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block nonce %q: not a decimal or hex integer", nonce)
	}
	return v, nil
}

// SeedFromString folds a label into a seed by summing its character
// codes. Allocation and trait-slot seeds are built from labels such as
// "<seed>-2" or "<seed>-primary"; the fold is deliberately simple so
// other implementations can replicate it exactly.
func SeedFromString(label string) Seed {
	var sum uint32
	for _, c := range label {
		sum += uint32(c)
	}
	return Seed(sum)
}
