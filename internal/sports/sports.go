// Package sports implements sports bet placement and the
// non-randomized settlement path: pending bets are resolved against a
// declared match result and paid through the same settlement ledger as
// the casino games.
package sports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/ledger"
	"github.com/oddsworks/pointbook/internal/store"
)

var (
	ErrMatchFinished = errors.New("match already finished")
	ErrMatchSettled  = errors.New("match already settled")
	ErrDuplicateBet  = errors.New("pending bet already exists for this match")
	ErrInvalidPick   = errors.New("missing or invalid pick")
	ErrStakeTooLow   = errors.New("stake below minimum")
	ErrStakeTooHigh  = errors.New("stake above maximum")
	ErrUserBanned    = errors.New("account is banned")
)

// Feed receives match updates for live broadcast. Implementations must
// not block.
type Feed interface {
	BroadcastMatch(m *domain.Match)
}

// Service provides sports betting on top of the persistence port and
// the settlement ledger.
type Service struct {
	store  store.Store
	ledger *ledger.Service
	log    *zap.Logger
	minBet int64
	maxBet int64

	// settleMu serializes match settlement so the simulator and a
	// manual admin settlement can never settle the same match twice.
	settleMu sync.Mutex

	feed Feed
}

// New creates a sports betting service.
func New(st store.Store, led *ledger.Service, log *zap.Logger, minBet, maxBet int64) *Service {
	return &Service{
		store:  st,
		ledger: led,
		log:    log,
		minBet: minBet,
		maxBet: maxBet,
	}
}

// SetFeed attaches an optional live update broadcaster.
func (s *Service) SetFeed(f Feed) {
	s.feed = f
}

// ListMatches returns all matches ordered by start time.
func (s *Service) ListMatches(ctx context.Context) ([]*domain.Match, error) {
	return s.store.ListMatches(ctx)
}

// GetMatch returns one match.
func (s *Service) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	return s.store.GetMatch(ctx, id)
}

// PlaceBet stakes points on a match outcome. The odds for the pick are
// frozen onto the bet, the potential payout is floor(stake × odds) and
// the stake is debited immediately through the ledger. One pending bet
// per user per match.
func (s *Service) PlaceBet(ctx context.Context, userID, matchID string, pick domain.Pick, amount int64) (*domain.SportsBet, int64, error) {
	if amount < s.minBet {
		return nil, 0, fmt.Errorf("%w: minimum is %d", ErrStakeTooLow, s.minBet)
	}
	if amount > s.maxBet {
		return nil, 0, fmt.Errorf("%w: maximum is %d", ErrStakeTooHigh, s.maxBet)
	}

	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, 0, err
	}
	if match.Status == domain.MatchFinished {
		return nil, 0, ErrMatchFinished
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if u.Status == domain.UserBanned {
		return nil, 0, ErrUserBanned
	}

	if _, err := s.store.GetPendingBet(ctx, userID, matchID); err == nil {
		return nil, 0, ErrDuplicateBet
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, 0, err
	}

	var odds float64
	switch pick {
	case domain.PickHome:
		odds = match.HomeOdds
	case domain.PickDraw:
		odds = match.DrawOdds
	case domain.PickAway:
		odds = match.AwayOdds
	default:
		return nil, 0, ErrInvalidPick
	}
	if odds == 0 {
		return nil, 0, fmt.Errorf("%w: option not offered for this match", ErrInvalidPick)
	}

	matchName := match.Home + " vs " + match.Away
	desc := fmt.Sprintf("sports bet: %s (%s) x%.2f", matchName, pick, odds)

	st, err := s.ledger.Settle(ctx, userID, amount, 0, domain.TxSportsBet, desc)
	if err != nil {
		return nil, 0, err
	}

	bet := &domain.SportsBet{
		ID:           uuid.New().String(),
		UserID:       userID,
		MatchID:      matchID,
		MatchName:    matchName,
		League:       match.League,
		Pick:         pick,
		Odds:         odds,
		Amount:       amount,
		PotentialWin: int64(math.Floor(float64(amount) * odds)),
		Status:       domain.BetPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateBet(ctx, bet); err != nil {
		// The stake was already debited; give it back rather than
		// leave an orphaned debit with no bet behind it.
		if _, refundErr := s.ledger.Adjust(ctx, userID, amount, domain.TxAdjust, "bet placement failed, stake refunded"); refundErr != nil {
			s.log.Error("bet rollback failed; ledger may be inconsistent",
				zap.String("user_id", userID),
				zap.Error(refundErr))
		}
		return nil, 0, fmt.Errorf("failed to record bet: %w", err)
	}

	return bet, st.NewBalance, nil
}

// MyBets returns the user's bets, newest first.
func (s *Service) MyBets(ctx context.Context, userID string) ([]*domain.SportsBet, error) {
	return s.store.ListBetsByUser(ctx, userID)
}

// Settle declares the result of a match and resolves every pending bet
// on it exactly once. Winning bets are credited floor(stake × odds)
// through the ledger, each with its own win transaction; losing bets
// only transition status. Settling an already-finished match is a
// conflict, never a double payout.
func (s *Service) Settle(ctx context.Context, matchID string, result domain.Pick) (int, error) {
	if result != domain.PickHome && result != domain.PickDraw && result != domain.PickAway {
		return 0, ErrInvalidPick
	}

	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if match.Status == domain.MatchFinished {
		return 0, ErrMatchSettled
	}

	match.Status = domain.MatchFinished
	match.Result = result
	if err := s.store.UpdateMatch(ctx, match); err != nil {
		return 0, fmt.Errorf("failed to finish match: %w", err)
	}

	bets, err := s.store.GetPendingBets(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending bets: %w", err)
	}

	settled := 0
	now := time.Now().UTC()
	for _, bet := range bets {
		won := bet.Pick == result
		if won {
			desc := "sports bet won: " + bet.MatchName
			if _, err := s.ledger.Settle(ctx, bet.UserID, 0, bet.PotentialWin, domain.TxSportsWin, desc); err != nil {
				s.log.Error("failed to credit winning bet",
					zap.String("bet_id", bet.ID),
					zap.String("user_id", bet.UserID),
					zap.Error(err))
				continue
			}
			bet.Status = domain.BetWon
		} else {
			bet.Status = domain.BetLost
		}
		bet.SettledAt = &now
		if err := s.store.UpdateBet(ctx, bet); err != nil {
			s.log.Error("failed to update settled bet",
				zap.String("bet_id", bet.ID),
				zap.Error(err))
			continue
		}
		settled++
	}

	s.log.Info("match settled",
		zap.String("match_id", matchID),
		zap.String("result", string(result)),
		zap.Int("bets_settled", settled))

	if s.feed != nil {
		s.feed.BroadcastMatch(match)
	}
	return settled, nil
}

// CreateMatch registers a new match for betting.
func (s *Service) CreateMatch(ctx context.Context, m *domain.Match) (*domain.Match, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = domain.MatchScheduled
	}
	if m.StartTime.IsZero() {
		m.StartTime = time.Now().UTC()
	}
	if err := s.store.CreateMatch(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateScore applies an admin score/minute/status update and
// broadcasts it to the live feed.
func (s *Service) UpdateScore(ctx context.Context, matchID string, homeScore, awayScore, minute int, status domain.MatchStatus) (*domain.Match, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	match.HomeScore = homeScore
	match.AwayScore = awayScore
	match.Minute = minute
	if status != "" {
		match.Status = status
	}
	if err := s.store.UpdateMatch(ctx, match); err != nil {
		return nil, err
	}
	if s.feed != nil {
		s.feed.BroadcastMatch(match)
	}
	return match, nil
}
