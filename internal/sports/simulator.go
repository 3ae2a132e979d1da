package sports

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/rng"
)

// Simulator advances live matches on a fixed interval: scores change
// randomly, the clock runs, and a match reaching 90 minutes is settled
// from its score through the regular settlement path. It shares the
// sports service's settlement lock, so a concurrent manual settlement
// of the same match can never double-settle.
type Simulator struct {
	sports   *Service
	src      rng.Source
	log      *zap.Logger
	interval time.Duration
}

// NewSimulator creates a match simulator. The source should be a
// pseudo source; simulation outcomes are not wager outcomes.
func NewSimulator(sp *Service, src rng.Source, log *zap.Logger, interval time.Duration) *Simulator {
	return &Simulator{
		sports:   sp,
		src:      src,
		log:      log,
		interval: interval,
	}
}

// Run ticks until the context is cancelled. Meant to be started in its
// own goroutine.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Simulator) tick(ctx context.Context) {
	matches, err := s.sports.ListMatches(ctx)
	if err != nil {
		s.log.Warn("simulator failed to list matches", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	for _, m := range matches {
		switch m.Status {
		case domain.MatchScheduled:
			if !m.StartTime.After(now) {
				if _, err := s.sports.UpdateScore(ctx, m.ID, m.HomeScore, m.AwayScore, m.Minute, domain.MatchLive); err != nil {
					s.log.Warn("simulator failed to start match", zap.String("match_id", m.ID), zap.Error(err))
				}
			}
		case domain.MatchLive:
			s.advance(ctx, m)
		}
	}
}

// advance randomly progresses one live match.
func (s *Simulator) advance(ctx context.Context, m *domain.Match) {
	r, err := s.src.Float64()
	if err != nil || r >= 0.3 {
		return
	}

	home, away, minute := m.HomeScore, m.AwayScore, m.Minute
	scorer, err := s.src.Int(2)
	if err != nil {
		return
	}
	if scorer == 0 {
		home++
	} else {
		away++
	}
	step, err := s.src.Int(10)
	if err != nil {
		return
	}
	minute += int(step)
	if minute > 90 {
		minute = 90
	}

	if _, err := s.sports.UpdateScore(ctx, m.ID, home, away, minute, domain.MatchLive); err != nil {
		s.log.Warn("simulator failed to update score", zap.String("match_id", m.ID), zap.Error(err))
		return
	}

	if minute >= 90 {
		result := domain.PickDraw
		if home > away {
			result = domain.PickHome
		} else if away > home {
			result = domain.PickAway
		}
		if _, err := s.sports.Settle(ctx, m.ID, result); err != nil && !errors.Is(err, ErrMatchSettled) {
			s.log.Error("simulator failed to settle match", zap.String("match_id", m.ID), zap.Error(err))
		}
	}
}
