// Package store defines the persistence port the platform core depends
// on, plus its Postgres and in-memory implementations. The core never
// assumes a specific storage engine; it only needs atomic per-call
// reads and writes, with per-user serialization handled by the ledger.
package store

import (
	"context"
	"errors"

	"github.com/oddsworks/pointbook/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store is the document store contract required by the core.
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// AppendTransaction adds one immutable ledger record. There is no
	// update or delete counterpart; the transaction log is append-only.
	AppendTransaction(ctx context.Context, tx *domain.Transaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error)

	CreateMatch(ctx context.Context, m *domain.Match) error
	GetMatch(ctx context.Context, id string) (*domain.Match, error)
	UpdateMatch(ctx context.Context, m *domain.Match) error
	ListMatches(ctx context.Context) ([]*domain.Match, error)

	CreateBet(ctx context.Context, b *domain.SportsBet) error
	GetBet(ctx context.Context, id string) (*domain.SportsBet, error)
	// GetPendingBet returns the user's pending bet on a match, if any.
	GetPendingBet(ctx context.Context, userID, matchID string) (*domain.SportsBet, error)
	GetPendingBets(ctx context.Context, matchID string) ([]*domain.SportsBet, error)
	UpdateBet(ctx context.Context, b *domain.SportsBet) error
	ListBetsByUser(ctx context.Context, userID string) ([]*domain.SportsBet, error)
	ListBets(ctx context.Context) ([]*domain.SportsBet, error)
}
