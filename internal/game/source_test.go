package game

import (
	"fmt"
	"sync"
)

// scriptSource is a deterministic rng.Source fed by fixed queues, so
// tests can dictate every card, reel and number an engine draws.
type scriptSource struct {
	mu      sync.Mutex
	ints    []int64 // consumed by Int and IntRange (absolute values)
	floats  []float64
	weights []int // indices consumed by Weighted
}

func (s *scriptSource) Int(max int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return 0, fmt.Errorf("script exhausted: Int(%d)", max)
	}
	n := s.ints[0]
	s.ints = s.ints[1:]
	if n < 0 || n >= max {
		return 0, fmt.Errorf("scripted value %d out of range [0, %d)", n, max)
	}
	return n, nil
}

func (s *scriptSource) IntRange(min, max int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return 0, fmt.Errorf("script exhausted: IntRange(%d, %d)", min, max)
	}
	n := s.ints[0]
	s.ints = s.ints[1:]
	if n < min || n > max {
		return 0, fmt.Errorf("scripted value %d out of range [%d, %d]", n, min, max)
	}
	return n, nil
}

func (s *scriptSource) Float64() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return 0, fmt.Errorf("script exhausted: Float64")
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f, nil
}

func (s *scriptSource) Weighted(weights []int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.weights) == 0 {
		return 0, fmt.Errorf("script exhausted: Weighted")
	}
	idx := s.weights[0]
	s.weights = s.weights[1:]
	if idx < 0 || idx >= len(weights) {
		return 0, fmt.Errorf("scripted index %d out of bounds", idx)
	}
	return idx, nil
}

// rankIdx maps a rank string to its index in the deck's rank order, for
// scripting drawCard (which draws rank then suit).
func rankIdx(rank Rank) int64 {
	for i, r := range ranks {
		if r == rank {
			return int64(i)
		}
	}
	panic("unknown rank " + string(rank))
}

// cardScript builds the Int queue for dealing the given ranks in order,
// all on spades.
func cardScript(cardRanks ...Rank) []int64 {
	script := make([]int64, 0, len(cardRanks)*2)
	for _, r := range cardRanks {
		script = append(script, rankIdx(r), 0)
	}
	return script
}
