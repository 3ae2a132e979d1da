// Package domain contains the core models of the points betting platform.
//
// All monetary values are integer points. Balances must never go negative;
// the ledger is the only component allowed to mutate them.
package domain

import "time"

// Role distinguishes regular users from platform operators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserStatus represents the account state.
type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

// User is a registered account holding a points balance.
// Points and the cumulative counters are mutated only by the ledger
// and by administrative adjustments.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"-"`
	Nickname       string     `json:"nickname"`
	Role           Role       `json:"role"`
	Status         UserStatus `json:"status"`
	Points         int64      `json:"points"`
	TotalCharged   int64      `json:"total_charged"`
	TotalWithdrawn int64      `json:"total_withdrawn"`
	TotalBet       int64      `json:"total_bet"`
	TotalWon       int64      `json:"total_won"`
	ReferralCode   string     `json:"referral_code"`
	ReferredBy     *string    `json:"referred_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// TransactionType enumerates every way points can move.
type TransactionType string

const (
	TxWin       TransactionType = "win"        // game settlement where something was won
	TxLoss      TransactionType = "loss"       // game settlement where nothing was won
	TxBonus     TransactionType = "bonus"      // signup or promotional credit
	TxAdjust    TransactionType = "adjustment" // administrative grant or deduction
	TxSportsBet TransactionType = "sports_bet" // stake debit at sports bet placement
	TxSportsWin TransactionType = "sports_win" // payout credit at sports settlement
	TxCharge    TransactionType = "charge"     // point purchase
	TxWithdraw  TransactionType = "withdraw"   // point redemption
)

// Transaction is one append-only ledger entry. Amount is signed
// (net change), BalanceAfter snapshots the balance it produced.
// Records are never mutated or deleted; replaying them from account
// creation reconstructs the balance at any instant.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Settlement is the result of one ledger settlement: the balance the
// user ended on and the single transaction that recorded the move.
type Settlement struct {
	NewBalance  int64        `json:"new_balance"`
	Transaction *Transaction `json:"transaction"`
}

// MatchStatus is the lifecycle of a sports match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchFinished  MatchStatus = "finished"
)

// Pick is a sports bet selection.
type Pick string

const (
	PickHome Pick = "home"
	PickDraw Pick = "draw"
	PickAway Pick = "away"
)

// Match is a sports event users can bet on. Odds are decimal and are
// frozen onto each bet at placement time; later odds changes never
// affect placed bets. DrawOdds is zero for sports without draws.
type Match struct {
	ID        string      `json:"id"`
	League    string      `json:"league"`
	Home      string      `json:"home"`
	Away      string      `json:"away"`
	HomeOdds  float64     `json:"home_odds"`
	DrawOdds  float64     `json:"draw_odds,omitempty"`
	AwayOdds  float64     `json:"away_odds"`
	Status    MatchStatus `json:"status"`
	HomeScore int         `json:"home_score"`
	AwayScore int         `json:"away_score"`
	Minute    int         `json:"minute"`
	Result    Pick        `json:"result,omitempty"`
	StartTime time.Time   `json:"start_time"`
}

// BetStatus is the lifecycle of a sports bet. A bet transitions from
// pending to won or lost exactly once, when its match is settled.
type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
)

// SportsBet is a stake against a match outcome. PotentialWin is
// floor(Amount × Odds), computed once at placement.
type SportsBet struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	MatchID      string     `json:"match_id"`
	MatchName    string     `json:"match_name"`
	League       string     `json:"league"`
	Pick         Pick       `json:"pick"`
	Odds         float64    `json:"odds"`
	Amount       int64      `json:"amount"`
	PotentialWin int64      `json:"potential_win"`
	Status       BetStatus  `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}
