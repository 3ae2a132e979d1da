package rng

import (
	"fmt"
	"math/rand"
	"sync"
)

// Pseudo is a seeded Source for match simulation and statistical
// tests. It must never be used for real-money outcome generation.
type Pseudo struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewPseudo creates a deterministic Source from a seed.
func NewPseudo(seed int64) *Pseudo {
	return &Pseudo{r: rand.New(rand.NewSource(seed))}
}

// Int returns a uniform integer in [0, max).
func (p *Pseudo) Int(max int64) (int64, error) {
	if max <= 0 {
		return 0, fmt.Errorf("max must be positive")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.Int63n(max), nil
}

// IntRange returns a uniform integer in [min, max].
func (p *Pseudo) IntRange(min, max int64) (int64, error) {
	if min > max {
		return 0, fmt.Errorf("min cannot be greater than max")
	}
	n, err := p.Int(max - min + 1)
	if err != nil {
		return 0, err
	}
	return min + n, nil
}

// Float64 returns a uniform float in [0.0, 1.0).
func (p *Pseudo) Float64() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.Float64(), nil
}

// Weighted selects an index based on relative integer weights.
func (p *Pseudo) Weighted(weights []int) (int, error) {
	total, err := sumWeights(weights)
	if err != nil {
		return 0, err
	}
	r, err := p.Int(total)
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
