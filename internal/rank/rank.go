// Package rank maintains the points, winnings and stake leaderboards
// in Redis sorted sets, fed by the ledger after every settlement.
package rank

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/store"
)

// Board selects which leaderboard to read.
type Board string

const (
	BoardPoints Board = "points"
	BoardWon    Board = "won"
	BoardBet    Board = "bet"
)

func boardKey(b Board) string {
	return "rank:" + string(b)
}

// Leaderboard keeps per-board sorted sets in Redis and resolves
// entries back through the store. Admin accounts never rank.
type Leaderboard struct {
	rdb   *redis.Client
	store store.Store
	log   *zap.Logger
}

// New creates a leaderboard on a Redis client.
func New(rdb *redis.Client, st store.Store, log *zap.Logger) *Leaderboard {
	return &Leaderboard{rdb: rdb, store: st, log: log}
}

// Record updates all boards for a user after a balance change.
// Implements the ledger's Scoreboard hook; failures only log, they
// never fail a settlement.
func (l *Leaderboard) Record(ctx context.Context, u *domain.User) {
	if u.Role == domain.RoleAdmin {
		return
	}
	pipe := l.rdb.Pipeline()
	pipe.ZAdd(ctx, boardKey(BoardPoints), redis.Z{Score: float64(u.Points), Member: u.ID})
	pipe.ZAdd(ctx, boardKey(BoardWon), redis.Z{Score: float64(u.TotalWon), Member: u.ID})
	pipe.ZAdd(ctx, boardKey(BoardBet), redis.Z{Score: float64(u.TotalBet), Member: u.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warn("failed to record leaderboard scores",
			zap.String("user_id", u.ID),
			zap.Error(err))
	}
}

// Remove drops a user from every board, e.g. after a ban.
func (l *Leaderboard) Remove(ctx context.Context, userID string) {
	pipe := l.rdb.Pipeline()
	for _, b := range []Board{BoardPoints, BoardWon, BoardBet} {
		pipe.ZRem(ctx, boardKey(b), userID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warn("failed to remove leaderboard entry",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// Rebuild reseeds every board from the store. Called at startup so
// the sorted sets survive a flushed Redis.
func (l *Leaderboard) Rebuild(ctx context.Context) error {
	users, err := l.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Status == domain.UserBanned {
			continue
		}
		l.Record(ctx, u)
	}
	return nil
}

// Entry is one leaderboard row. Usernames are masked before leaving
// the service.
type Entry struct {
	Rank      int       `json:"rank"`
	Nickname  string    `json:"nickname"`
	Username  string    `json:"username"`
	Points    int64     `json:"points"`
	TotalWon  int64     `json:"total_won"`
	TotalBet  int64     `json:"total_bet"`
	CreatedAt time.Time `json:"created_at"`
}

// Top returns the highest-ranked users on a board.
func (l *Leaderboard) Top(ctx context.Context, board Board, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	ids, err := l.rdb.ZRevRange(ctx, boardKey(board), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		u, err := l.store.GetUser(ctx, id)
		if err != nil {
			continue // dropped users just fall off the board
		}
		if u.Status == domain.UserBanned || u.Role == domain.RoleAdmin {
			continue
		}
		entries = append(entries, Entry{
			Rank:      len(entries) + 1,
			Nickname:  u.Nickname,
			Username:  MaskUsername(u.Username),
			Points:    u.Points,
			TotalWon:  u.TotalWon,
			TotalBet:  u.TotalBet,
			CreatedAt: u.CreatedAt,
		})
	}
	return entries, nil
}

// MaskUsername hides the middle of a username: "player1" → "pl***1".
// Names shorter than three characters are returned unchanged.
func MaskUsername(s string) string {
	r := []rune(s)
	if len(r) < 3 {
		return s
	}
	return string(r[:2]) + "***" + string(r[len(r)-1:])
}
