package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/oddsworks/pointbook/internal/domain"
)

// Postgres implements Store on PostgreSQL via lib/pq.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens and pings a PostgreSQL connection.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Ping checks database reachability, for health probes.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// schema is the full DDL applied by Migrate. Columns holding user or
// match IDs are UUID typed; values come from uuid.New().String().
const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		nickname VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
		total_charged BIGINT NOT NULL DEFAULT 0,
		total_withdrawn BIGINT NOT NULL DEFAULT 0,
		total_bet BIGINT NOT NULL DEFAULT 0,
		total_won BIGINT NOT NULL DEFAULT 0,
		referral_code VARCHAR(32) NOT NULL,
		referred_by UUID REFERENCES users(id),
		created_at TIMESTAMP NOT NULL,
		last_login TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		type VARCHAR(30) NOT NULL,
		amount BIGINT NOT NULL,
		balance_after BIGINT NOT NULL,
		description TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS matches (
		id UUID PRIMARY KEY,
		league VARCHAR(255) NOT NULL,
		home VARCHAR(255) NOT NULL,
		away VARCHAR(255) NOT NULL,
		home_odds DOUBLE PRECISION NOT NULL,
		draw_odds DOUBLE PRECISION NOT NULL DEFAULT 0,
		away_odds DOUBLE PRECISION NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
		home_score INT NOT NULL DEFAULT 0,
		away_score INT NOT NULL DEFAULT 0,
		minute INT NOT NULL DEFAULT 0,
		result VARCHAR(10),
		start_time TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bets (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		match_id UUID NOT NULL REFERENCES matches(id),
		match_name VARCHAR(512) NOT NULL,
		league VARCHAR(255) NOT NULL,
		pick VARCHAR(10) NOT NULL,
		odds DOUBLE PRECISION NOT NULL,
		amount BIGINT NOT NULL,
		potential_win BIGINT NOT NULL,
		status VARCHAR(10) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		settled_at TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_bets_match_pending ON bets(match_id) WHERE status = 'pending';
	`

// Migrate creates all required tables.
func (p *Postgres) Migrate() error {
	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

const userColumns = `id, username, password_hash, nickname, role, status, points,
	total_charged, total_withdrawn, total_bet, total_won, referral_code, referred_by,
	created_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var referredBy sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Nickname, &u.Role, &u.Status,
		&u.Points, &u.TotalCharged, &u.TotalWithdrawn, &u.TotalBet, &u.TotalWon,
		&u.ReferralCode, &referredBy, &u.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if referredBy.Valid {
		u.ReferredBy = &referredBy.String
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, u.ID, u.Username, u.PasswordHash, u.Nickname, u.Role, u.Status, u.Points,
		u.TotalCharged, u.TotalWithdrawn, u.TotalBet, u.TotalWon, u.ReferralCode,
		u.ReferredBy, u.CreatedAt, u.LastLogin)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (p *Postgres) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, nickname = $3, role = $4, status = $5,
			points = $6, total_charged = $7, total_withdrawn = $8, total_bet = $9,
			total_won = $10, last_login = $11
		WHERE id = $1
	`, u.ID, u.PasswordHash, u.Nickname, u.Role, u.Status, u.Points,
		u.TotalCharged, u.TotalWithdrawn, u.TotalBet, u.TotalWon, u.LastLogin)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *Postgres) AppendTransaction(ctx context.Context, tx *domain.Transaction) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, balance_after, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tx.ID, tx.UserID, tx.Type, tx.Amount, tx.BalanceAfter, tx.Description, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (p *Postgres) ListTransactions(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, balance_after, description, created_at
		FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount,
			&tx.BalanceAfter, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}

const matchColumns = `id, league, home, away, home_odds, draw_odds, away_odds,
	status, home_score, away_score, minute, result, start_time`

func scanMatch(row interface{ Scan(...any) error }) (*domain.Match, error) {
	var m domain.Match
	var result sql.NullString
	err := row.Scan(&m.ID, &m.League, &m.Home, &m.Away, &m.HomeOdds, &m.DrawOdds,
		&m.AwayOdds, &m.Status, &m.HomeScore, &m.AwayScore, &m.Minute, &result, &m.StartTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if result.Valid {
		m.Result = domain.Pick(result.String)
	}
	return &m, nil
}

func (p *Postgres) CreateMatch(ctx context.Context, m *domain.Match) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13)
	`, m.ID, m.League, m.Home, m.Away, m.HomeOdds, m.DrawOdds, m.AwayOdds,
		m.Status, m.HomeScore, m.AwayScore, m.Minute, string(m.Result), m.StartTime)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (p *Postgres) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (p *Postgres) UpdateMatch(ctx context.Context, m *domain.Match) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE matches SET home_odds = $2, draw_odds = $3, away_odds = $4, status = $5,
			home_score = $6, away_score = $7, minute = $8, result = NULLIF($9, '')
		WHERE id = $1
	`, m.ID, m.HomeOdds, m.DrawOdds, m.AwayOdds, m.Status,
		m.HomeScore, m.AwayScore, m.Minute, string(m.Result))
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListMatches(ctx context.Context) ([]*domain.Match, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

const betColumns = `id, user_id, match_id, match_name, league, pick, odds,
	amount, potential_win, status, created_at, settled_at`

func scanBet(row interface{ Scan(...any) error }) (*domain.SportsBet, error) {
	var b domain.SportsBet
	var settledAt sql.NullTime
	err := row.Scan(&b.ID, &b.UserID, &b.MatchID, &b.MatchName, &b.League, &b.Pick,
		&b.Odds, &b.Amount, &b.PotentialWin, &b.Status, &b.CreatedAt, &settledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if settledAt.Valid {
		b.SettledAt = &settledAt.Time
	}
	return &b, nil
}

func (p *Postgres) CreateBet(ctx context.Context, b *domain.SportsBet) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (`+betColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, b.ID, b.UserID, b.MatchID, b.MatchName, b.League, b.Pick, b.Odds,
		b.Amount, b.PotentialWin, b.Status, b.CreatedAt, b.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

func (p *Postgres) GetBet(ctx context.Context, id string) (*domain.SportsBet, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id)
	return scanBet(row)
}

func (p *Postgres) GetPendingBet(ctx context.Context, userID, matchID string) (*domain.SportsBet, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+betColumns+` FROM bets
		WHERE user_id = $1 AND match_id = $2 AND status = 'pending' LIMIT 1
	`, userID, matchID)
	return scanBet(row)
}

func (p *Postgres) GetPendingBets(ctx context.Context, matchID string) ([]*domain.SportsBet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets
		WHERE match_id = $1 AND status = 'pending' ORDER BY created_at
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBets(rows)
}

func (p *Postgres) UpdateBet(ctx context.Context, b *domain.SportsBet) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status = $2, settled_at = $3 WHERE id = $1
	`, b.ID, b.Status, b.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to update bet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListBetsByUser(ctx context.Context, userID string) ([]*domain.SportsBet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBets(rows)
}

func (p *Postgres) ListBets(ctx context.Context) ([]*domain.SportsBet, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+betColumns+` FROM bets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBets(rows)
}

func collectBets(rows *sql.Rows) ([]*domain.SportsBet, error) {
	var bets []*domain.SportsBet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// Ensure the concrete stores satisfy the port.
var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
