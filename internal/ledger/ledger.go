// Package ledger is the settlement funnel every game and sports bet
// goes through. It owns the only code path that mutates a user's
// balance, serializes settlements per user, and appends exactly one
// transaction record per settlement.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/metrics"
	"github.com/oddsworks/pointbook/internal/store"
)

var (
	ErrInsufficientFunds = errors.New("insufficient points")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// largeWinThreshold triggers a structured significant-event log entry.
const largeWinThreshold = 1_000_000

// Scoreboard receives the updated user after every balance change so
// leaderboards stay current. Implementations must not block settlement.
type Scoreboard interface {
	Record(ctx context.Context, u *domain.User)
}

// Service provides balance settlement and transaction recording.
type Service struct {
	store store.Store
	log   *zap.Logger
	board Scoreboard

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a ledger service on top of a persistence port.
func New(st store.Store, log *zap.Logger) *Service {
	return &Service{
		store: st,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// SetScoreboard attaches an optional leaderboard recorder.
func (s *Service) SetScoreboard(b Scoreboard) {
	s.board = b
}

// userLock returns the mutex serializing settlements for one user.
// Locks for different users are independent, so concurrent wagers from
// different users never block each other.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Lock acquires the per-user settlement lock and returns its release
// function. Game engines hold it from validation through settlement so
// no other request can interleave with the same user's balance.
func (s *Service) Lock(userID string) func() {
	l := s.userLock(userID)
	l.Lock()
	return l.Unlock
}

// Settle converts one resolved wager into a net balance change plus a
// single transaction record:
//
//	newBalance = balance - staked + won
//
// The cumulative staked/won counters are updated on wins and losses
// alike. If the stake exceeds the balance nothing is mutated. Settle
// acquires the user lock itself; callers already holding it use
// SettleLocked instead.
func (s *Service) Settle(ctx context.Context, userID string, staked, won int64, txType domain.TransactionType, desc string) (*domain.Settlement, error) {
	unlock := s.Lock(userID)
	defer unlock()
	return s.settleLocked(ctx, userID, staked, won, txType, desc)
}

// SettleLocked is Settle for callers already holding the user lock.
func (s *Service) SettleLocked(ctx context.Context, userID string, staked, won int64, txType domain.TransactionType, desc string) (*domain.Settlement, error) {
	return s.settleLocked(ctx, userID, staked, won, txType, desc)
}

func (s *Service) settleLocked(ctx context.Context, userID string, staked, won int64, txType domain.TransactionType, desc string) (*domain.Settlement, error) {
	if staked < 0 || won < 0 {
		return nil, ErrInvalidAmount
	}

	start := time.Now()

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u.Points < staked {
		return nil, ErrInsufficientFunds
	}

	prev := *u
	u.Points = u.Points - staked + won
	u.TotalBet += staked
	u.TotalWon += won

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	tx := &domain.Transaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         txType,
		Amount:       won - staked,
		BalanceAfter: u.Points,
		Description:  desc,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		// A balance change without its transaction record would break
		// the audit trail, so undo the balance mutation.
		if revertErr := s.store.UpdateUser(ctx, &prev); revertErr != nil {
			s.log.Error("settlement revert failed; ledger may be inconsistent",
				zap.String("user_id", userID),
				zap.Error(revertErr))
		}
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	metrics.SettlementsTotal.WithLabelValues(string(txType)).Inc()
	metrics.SettlementDuration.Observe(time.Since(start).Seconds())

	if won >= largeWinThreshold {
		s.log.Info("large win settled",
			zap.String("user_id", userID),
			zap.Int64("won", won),
			zap.Int64("staked", staked),
			zap.String("description", desc))
	}

	if s.board != nil {
		s.board.Record(ctx, u)
	}

	return &domain.Settlement{NewBalance: u.Points, Transaction: tx}, nil
}

// Adjust applies a non-wager balance change: charges, withdrawals,
// bonuses and administrative grants or deductions. Withdrawals and
// bonuses are rejected if they would drive the balance negative;
// administrative deductions clamp at zero instead, matching operator
// expectations for confiscations.
func (s *Service) Adjust(ctx context.Context, userID string, delta int64, txType domain.TransactionType, desc string) (*domain.Settlement, error) {
	unlock := s.Lock(userID)
	defer unlock()

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	newPoints := u.Points + delta
	if newPoints < 0 {
		if txType != domain.TxAdjust {
			return nil, ErrInsufficientFunds
		}
		newPoints = 0
	}
	applied := newPoints - u.Points

	prev := *u
	u.Points = newPoints
	switch txType {
	case domain.TxCharge:
		u.TotalCharged += applied
	case domain.TxWithdraw:
		u.TotalWithdrawn += -applied
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	tx := &domain.Transaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         txType,
		Amount:       applied,
		BalanceAfter: u.Points,
		Description:  desc,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		if revertErr := s.store.UpdateUser(ctx, &prev); revertErr != nil {
			s.log.Error("adjustment revert failed; ledger may be inconsistent",
				zap.String("user_id", userID),
				zap.Error(revertErr))
		}
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	metrics.SettlementsTotal.WithLabelValues(string(txType)).Inc()

	if s.board != nil {
		s.board.Record(ctx, u)
	}

	return &domain.Settlement{NewBalance: u.Points, Transaction: tx}, nil
}

// Balance returns the user's current points.
func (s *Service) Balance(ctx context.Context, userID string) (int64, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Points, nil
}

// History returns the user's most recent transactions.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, limit)
}
