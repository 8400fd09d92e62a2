// Package sampler provides uniform integer length sampling for prompt
// truncation and response generation.
package sampler

import (
	"fmt"
	"math/rand"
)

// LengthSampler draws uniform integers from a fixed half-open range.
// Each call to Sample is an independent draw; the sampler carries no
// state beyond the range and its random source.
type LengthSampler struct {
	min int
	max int
	rng *rand.Rand
}

// New creates a sampler over [min, max). The range must be non-empty.
func New(min, max int) (*LengthSampler, error) {
	return NewWithSource(min, max, nil)
}

// NewWithSource creates a sampler over [min, max) drawing from rng.
// A nil rng falls back to the shared global source.
func NewWithSource(min, max int, rng *rand.Rand) (*LengthSampler, error) {
	if min >= max {
		return nil, fmt.Errorf("invalid length range [%d, %d): min must be below max", min, max)
	}
	return &LengthSampler{min: min, max: max, rng: rng}, nil
}

// Sample returns a uniform integer in [min, max).
func (s *LengthSampler) Sample() int {
	if s.rng != nil {
		return s.min + s.rng.Intn(s.max-s.min)
	}
	return s.min + rand.Intn(s.max-s.min)
}

// Min returns the inclusive lower bound.
func (s *LengthSampler) Min() int { return s.min }

// Max returns the exclusive upper bound.
func (s *LengthSampler) Max() int { return s.max }
