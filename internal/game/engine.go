package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/ledger"
	"github.com/oddsworks/pointbook/internal/metrics"
	"github.com/oddsworks/pointbook/internal/rng"
	"github.com/oddsworks/pointbook/internal/store"
)

// Product identifies a game with its own stake bounds and payouts.
type Product string

const (
	ProductBaccarat Product = "baccarat"
	ProductSlots    Product = "slots"
	ProductRoulette Product = "roulette"
	ProductOddEven  Product = "oddeven"
	ProductLadder   Product = "ladder"
	ProductCoin     Product = "coin"
	ProductDice     Product = "dice"
)

// Limits are the stake bounds of one product.
type Limits struct {
	MinBet int64
	MaxBet int64
}

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrStakeTooLow    = errors.New("stake below product minimum")
	ErrStakeTooHigh   = errors.New("stake above product maximum")
	ErrInvalidPick    = errors.New("missing or invalid pick")
	ErrUserBanned     = errors.New("account is banned")
)

// Engine validates wagers, runs the game generators and funnels every
// resolved outcome through the settlement ledger. Validation always
// happens before any random draw: a rejected wager leaves no state
// change and deals no cards.
type Engine struct {
	store  store.Store
	src    rng.Source
	ledger *ledger.Service
	log    *zap.Logger
	limits map[Product]Limits
}

// NewEngine creates a game engine.
func NewEngine(st store.Store, src rng.Source, led *ledger.Service, log *zap.Logger, limits map[Product]Limits) *Engine {
	return &Engine{
		store:  st,
		src:    src,
		ledger: led,
		log:    log,
		limits: limits,
	}
}

// Limits returns the stake bounds of a product.
func (e *Engine) Limits(p Product) (Limits, error) {
	lim, ok := e.limits[p]
	if !ok {
		return Limits{}, ErrUnknownProduct
	}
	return lim, nil
}

// PlayResult is the outcome of one resolved wager, with the detail the
// client needs to animate it.
type PlayResult struct {
	Product    Product `json:"product"`
	Won        bool    `json:"won"`
	WinAmount  int64   `json:"win_amount"`
	NetChange  int64   `json:"net_change"`
	NewBalance int64   `json:"new_balance"`
	Outcome    any     `json:"outcome"`
}

// checkStake validates one stake against a product's bounds.
func (e *Engine) checkStake(p Product, stake int64) error {
	lim, ok := e.limits[p]
	if !ok {
		return ErrUnknownProduct
	}
	if stake < lim.MinBet {
		return fmt.Errorf("%w: minimum is %d", ErrStakeTooLow, lim.MinBet)
	}
	if stake > lim.MaxBet {
		return fmt.Errorf("%w: maximum is %d", ErrStakeTooHigh, lim.MaxBet)
	}
	return nil
}

// loadActiveUser fetches the user and rejects banned accounts.
func (e *Engine) loadActiveUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Status == domain.UserBanned {
		return nil, ErrUserBanned
	}
	return u, nil
}

// PlayBaccarat validates the staked legs, deals one hand and settles
// the aggregate result. Legs are validated individually against the
// product bounds; the total stake is checked against the balance.
// Exactly one ledger settlement records the net of all legs.
func (e *Engine) PlayBaccarat(ctx context.Context, userID string, legs BaccaratLegs) (*PlayResult, error) {
	unlock := e.ledger.Lock(userID)
	defer unlock()

	u, err := e.loadActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := legs.Total()
	if total <= 0 {
		return nil, fmt.Errorf("%w: no legs staked", ErrInvalidPick)
	}
	var legErr error
	legs.each(func(name string, stake int64) {
		if legErr != nil || stake == 0 {
			return
		}
		if stake < 0 {
			legErr = fmt.Errorf("%w: negative stake on %s", ErrInvalidPick, name)
			return
		}
		if err := e.checkStake(ProductBaccarat, stake); err != nil {
			legErr = fmt.Errorf("leg %s: %w", name, err)
		}
	})
	if legErr != nil {
		return nil, legErr
	}
	if u.Points < total {
		return nil, ledger.ErrInsufficientFunds
	}

	out, err := dealBaccarat(e.src)
	if err != nil {
		return nil, fmt.Errorf("failed to deal: %w", err)
	}
	winAmount := evaluateBaccarat(out, legs)

	return e.settleLocked(ctx, userID, ProductBaccarat, total, winAmount, describeBaccarat(out), out)
}

// PlaySlots spins the reels for a single stake.
func (e *Engine) PlaySlots(ctx context.Context, userID string, amount int64) (*PlayResult, error) {
	unlock := e.ledger.Lock(userID)
	defer unlock()

	u, err := e.loadActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := e.checkStake(ProductSlots, amount); err != nil {
		return nil, err
	}
	if u.Points < amount {
		return nil, ledger.ErrInsufficientFunds
	}

	out, err := spinSlots(e.src)
	if err != nil {
		return nil, fmt.Errorf("failed to spin: %w", err)
	}
	winAmount := amount * out.Multiplier / 100

	return e.settleLocked(ctx, userID, ProductSlots, amount, winAmount, describeSlots(out), out)
}

// PlayRoulette spins the wheel and resolves a single bet type.
// betNumber is only consulted for number bets. An unrecognized bet
// type resolves as a loss, not a rejection.
func (e *Engine) PlayRoulette(ctx context.Context, userID string, betType RouletteBetType, betNumber int, amount int64) (*PlayResult, error) {
	unlock := e.ledger.Lock(userID)
	defer unlock()

	u, err := e.loadActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := e.checkStake(ProductRoulette, amount); err != nil {
		return nil, err
	}
	if u.Points < amount {
		return nil, ledger.ErrInsufficientFunds
	}

	out, err := spinRoulette(e.src, betType, betNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to spin: %w", err)
	}
	var winAmount int64
	if out.Won {
		winAmount = amount * out.Multiplier / 100
	}

	return e.settleLocked(ctx, userID, ProductRoulette, amount, winAmount, describeRoulette(out, betType), out)
}

// miniPicks is the set of valid picks per mini game.
var miniPicks = map[Product][2]string{
	ProductOddEven: {"odd", "even"},
	ProductLadder:  {"left", "right"},
	ProductCoin:    {"heads", "tails"},
	ProductDice:    {"high", "low"},
}

// PlayMini runs one mini-game round and resolves the binary pick at
// the fixed ×1.95 payout.
func (e *Engine) PlayMini(ctx context.Context, userID string, product Product, pick string, amount int64) (*PlayResult, error) {
	picks, ok := miniPicks[product]
	if !ok {
		return nil, ErrUnknownProduct
	}

	unlock := e.ledger.Lock(userID)
	defer unlock()

	u, err := e.loadActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pick != picks[0] && pick != picks[1] {
		return nil, fmt.Errorf("%w: choose %s or %s", ErrInvalidPick, picks[0], picks[1])
	}
	if err := e.checkStake(product, amount); err != nil {
		return nil, err
	}
	if u.Points < amount {
		return nil, ledger.ErrInsufficientFunds
	}

	var out *MiniOutcome
	switch product {
	case ProductOddEven:
		out, err = playOddEven(e.src)
	case ProductLadder:
		out, err = playLadder(e.src)
	case ProductCoin:
		out, err = playCoin(e.src)
	case ProductDice:
		out, err = playDice(e.src)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to play %s: %w", product, err)
	}

	var winAmount int64
	won := pick == out.Result
	if won {
		winAmount = amount * miniGamePayout / 100
	}

	return e.settleLocked(ctx, userID, product, amount, winAmount, describeMini(product, out, won), out)
}

// settleLocked runs the single ledger settlement for a resolved wager.
// The caller holds the per-user lock.
func (e *Engine) settleLocked(ctx context.Context, userID string, product Product, staked, winAmount int64, desc string, outcome any) (*PlayResult, error) {
	txType := domain.TxLoss
	if winAmount > 0 {
		txType = domain.TxWin
	}

	st, err := e.ledger.SettleLocked(ctx, userID, staked, winAmount, txType, desc)
	if err != nil {
		return nil, err
	}

	metrics.WagersTotal.WithLabelValues(string(product)).Inc()
	metrics.StakePointsTotal.WithLabelValues(string(product)).Add(float64(staked))
	metrics.WinPointsTotal.WithLabelValues(string(product)).Add(float64(winAmount))

	e.log.Debug("wager settled",
		zap.String("user_id", userID),
		zap.String("product", string(product)),
		zap.Int64("staked", staked),
		zap.Int64("won", winAmount))

	return &PlayResult{
		Product:    product,
		Won:        winAmount > 0,
		WinAmount:  winAmount,
		NetChange:  winAmount - staked,
		NewBalance: st.NewBalance,
		Outcome:    outcome,
	}, nil
}
