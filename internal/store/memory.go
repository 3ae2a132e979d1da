package store

import (
	"context"
	"sort"
	"sync"

	"github.com/oddsworks/pointbook/internal/domain"
)

// Memory is a mutex-guarded in-memory Store. It backs tests and
// DSN-less development runs. All returned records are copies so
// callers can't mutate stored state without going through the port.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]*domain.User
	usernames    map[string]string // username -> user id
	transactions []*domain.Transaction
	matches      map[string]*domain.Match
	bets         map[string]*domain.SportsBet
	betOrder     []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]*domain.User),
		usernames: make(map[string]string),
		matches:   make(map[string]*domain.Match),
		bets:      make(map[string]*domain.SportsBet),
	}
}

func (m *Memory) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := m.usernames[u.Username]; ok {
		return ErrDuplicate
	}
	cp := *u
	m.users[u.ID] = &cp
	m.usernames[u.Username] = u.ID
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usernames[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *Memory) UpdateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) ListUsers(_ context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) AppendTransaction(_ context.Context, tx *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.transactions = append(m.transactions, &cp)
	return nil
}

func (m *Memory) ListTransactions(_ context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for i := len(m.transactions) - 1; i >= 0; i-- {
		tx := m.transactions[i]
		if userID != "" && tx.UserID != userID {
			continue
		}
		cp := *tx
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) CreateMatch(_ context.Context, match *domain.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[match.ID]; ok {
		return ErrDuplicate
	}
	cp := *match
	m.matches[match.ID] = &cp
	return nil
}

func (m *Memory) GetMatch(_ context.Context, id string) (*domain.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *match
	return &cp, nil
}

func (m *Memory) UpdateMatch(_ context.Context, match *domain.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[match.ID]; !ok {
		return ErrNotFound
	}
	cp := *match
	m.matches[match.ID] = &cp
	return nil
}

func (m *Memory) ListMatches(_ context.Context) ([]*domain.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Match, 0, len(m.matches))
	for _, match := range m.matches {
		cp := *match
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *Memory) CreateBet(_ context.Context, b *domain.SportsBet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bets[b.ID]; ok {
		return ErrDuplicate
	}
	cp := *b
	m.bets[b.ID] = &cp
	m.betOrder = append(m.betOrder, b.ID)
	return nil
}

func (m *Memory) GetBet(_ context.Context, id string) (*domain.SportsBet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) GetPendingBet(_ context.Context, userID, matchID string) (*domain.SportsBet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.betOrder {
		b := m.bets[id]
		if b.UserID == userID && b.MatchID == matchID && b.Status == domain.BetPending {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetPendingBets(_ context.Context, matchID string) ([]*domain.SportsBet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SportsBet
	for _, id := range m.betOrder {
		b := m.bets[id]
		if b.MatchID == matchID && b.Status == domain.BetPending {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) UpdateBet(_ context.Context, b *domain.SportsBet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bets[b.ID]; !ok {
		return ErrNotFound
	}
	cp := *b
	m.bets[b.ID] = &cp
	return nil
}

func (m *Memory) ListBetsByUser(_ context.Context, userID string) ([]*domain.SportsBet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SportsBet
	for i := len(m.betOrder) - 1; i >= 0; i-- {
		b := m.bets[m.betOrder[i]]
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) ListBets(_ context.Context) ([]*domain.SportsBet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.SportsBet, 0, len(m.betOrder))
	for i := len(m.betOrder) - 1; i >= 0; i-- {
		cp := *m.bets[m.betOrder[i]]
		out = append(out, &cp)
	}
	return out, nil
}
