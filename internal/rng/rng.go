// Package rng provides the random number generation used by every
// game engine. Outcome generation depends only on the Source interface
// so engines can be driven by deterministic fixtures in tests.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"
)

// Source produces uniform random values. Implementations must be safe
// for concurrent use.
type Source interface {
	// Int returns a uniform integer in [0, max).
	Int(max int64) (int64, error)
	// IntRange returns a uniform integer in [min, max].
	IntRange(min, max int64) (int64, error)
	// Float64 returns a uniform float in [0.0, 1.0).
	Float64() (float64, error)
	// Weighted selects an index with probability proportional to its
	// relative integer weight.
	Weighted(weights []int) (int, error)
}

// Service is the production Source backed by crypto/rand.
type Service struct {
	entropy io.Reader
	mu      sync.Mutex

	lastHealthCheck  time.Time
	samplesGenerated int64
}

// New creates an RNG service using crypto/rand.
func New() *Service {
	return &Service{
		entropy:         rand.Reader,
		lastHealthCheck: time.Now(),
	}
}

// Int returns a random integer in [0, max).
// Uses rejection sampling to eliminate modulo bias.
func (s *Service) Int(max int64) (int64, error) {
	if max <= 0 {
		return 0, fmt.Errorf("max must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Values at or above the threshold are rejected so the
	// distribution over [0, max) stays uniform.
	threshold := uint64(1<<63-1) - (uint64(1<<63-1) % uint64(max))

	for {
		buf := make([]byte, 8)
		if _, err := io.ReadFull(s.entropy, buf); err != nil {
			return 0, fmt.Errorf("failed to generate random int: %w", err)
		}

		n := binary.BigEndian.Uint64(buf) >> 1 // 63 bits, positive range

		if n < threshold {
			s.samplesGenerated++
			return int64(n % uint64(max)), nil
		}
	}
}

// IntRange returns a random integer in [min, max].
func (s *Service) IntRange(min, max int64) (int64, error) {
	if min > max {
		return 0, fmt.Errorf("min cannot be greater than max")
	}

	n, err := s.Int(max - min + 1)
	if err != nil {
		return 0, err
	}
	return min + n, nil
}

// Float64 returns a random float in [0.0, 1.0).
func (s *Service) Float64() (float64, error) {
	n, err := s.Int(1 << 53) // 53 bits of precision
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(1<<53), nil
}

// Weighted selects an index based on relative integer weights.
// Heavier weights are selected more often.
func (s *Service) Weighted(weights []int) (int, error) {
	total, err := sumWeights(weights)
	if err != nil {
		return 0, err
	}

	r, err := s.Int(total)
	if err != nil {
		return 0, err
	}

	var cumulative int64
	for i, w := range weights {
		cumulative += int64(w)
		if r < cumulative {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}

func sumWeights(weights []int) (int64, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("weights cannot be empty")
	}
	var total int64
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("weights cannot be negative")
		}
		total += int64(w)
	}
	if total <= 0 {
		return 0, fmt.Errorf("total weight must be positive")
	}
	return total, nil
}

// HealthResult contains RNG health check results.
type HealthResult struct {
	Healthy          bool      `json:"healthy"`
	Timestamp        time.Time `json:"timestamp"`
	SamplesGenerated int64     `json:"samples_generated"`
	ChiSquare        float64   `json:"chi_square"`
	ChiSquarePassed  bool      `json:"chi_square_passed"`
	Error            string    `json:"error,omitempty"`
}

// HealthCheck verifies the RNG is producing an approximately uniform
// distribution by running a chi-square test over fresh samples.
func (s *Service) HealthCheck() (*HealthResult, error) {
	s.mu.Lock()
	s.lastHealthCheck = time.Now()
	s.mu.Unlock()

	const sampleSize = 1000
	samples := make([]int64, sampleSize)

	for i := 0; i < sampleSize; i++ {
		n, err := s.Int(100)
		if err != nil {
			return &HealthResult{
				Healthy:   false,
				Timestamp: time.Now(),
				Error:     err.Error(),
			}, err
		}
		samples[i] = n
	}

	chiSquare, passed := chiSquareTest(samples, 100)

	s.mu.Lock()
	generated := s.samplesGenerated
	s.mu.Unlock()

	return &HealthResult{
		Healthy:          passed,
		Timestamp:        time.Now(),
		SamplesGenerated: generated,
		ChiSquare:        chiSquare,
		ChiSquarePassed:  passed,
	}, nil
}

// chiSquareTest performs a basic chi-square test for uniformity.
func chiSquareTest(samples []int64, bins int) (float64, bool) {
	counts := make([]int, bins)
	for _, sample := range samples {
		counts[int(sample)%bins]++
	}

	expected := float64(len(samples)) / float64(bins)

	var chiSquare float64
	for _, count := range counts {
		diff := float64(count) - expected
		chiSquare += (diff * diff) / expected
	}

	// Critical value for 99 degrees of freedom at 99% confidence.
	criticalValue := 134.6
	if bins != 100 {
		criticalValue = float64(bins-1) + 2.576*math.Sqrt(2.0*float64(bins-1))
	}

	return chiSquare, chiSquare < criticalValue
}
