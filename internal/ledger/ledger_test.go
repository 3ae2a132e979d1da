package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/store"
)

func newTestLedger(t *testing.T, points int64) (*Service, store.Store, string) {
	t.Helper()
	st := store.NewMemory()
	led := New(st, zap.NewNop())

	u := &domain.User{
		ID:       "u1",
		Username: "player1",
		Role:     domain.RoleUser,
		Status:   domain.UserActive,
		Points:   points,
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return led, st, u.ID
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	t.Run("ConservesPoints", func(t *testing.T) {
		led, st, id := newTestLedger(t, 100000)

		res, err := led.Settle(ctx, id, 10000, 19500, domain.TxWin, "baccarat banker win")
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if res.NewBalance != 109500 {
			t.Errorf("NewBalance: got %d, want 109500", res.NewBalance)
		}
		if res.Transaction.Amount != 9500 {
			t.Errorf("Transaction amount: got %d, want 9500", res.Transaction.Amount)
		}
		if res.Transaction.BalanceAfter != 109500 {
			t.Errorf("BalanceAfter: got %d, want 109500", res.Transaction.BalanceAfter)
		}

		u, _ := st.GetUser(ctx, id)
		if u.Points != 109500 {
			t.Errorf("Stored points: got %d, want 109500", u.Points)
		}
		if u.TotalBet != 10000 || u.TotalWon != 19500 {
			t.Errorf("Counters: bet=%d won=%d, want 10000/19500", u.TotalBet, u.TotalWon)
		}
	})

	t.Run("CountersGrowEvenOnLoss", func(t *testing.T) {
		led, st, id := newTestLedger(t, 100000)

		if _, err := led.Settle(ctx, id, 5000, 0, domain.TxLoss, "slots no match"); err != nil {
			t.Fatalf("Settle failed: %v", err)
		}

		u, _ := st.GetUser(ctx, id)
		if u.Points != 95000 {
			t.Errorf("Points: got %d, want 95000", u.Points)
		}
		if u.TotalBet != 5000 || u.TotalWon != 0 {
			t.Errorf("Counters: bet=%d won=%d, want 5000/0", u.TotalBet, u.TotalWon)
		}
	})

	t.Run("RejectsStakeAboveBalance", func(t *testing.T) {
		led, st, id := newTestLedger(t, 1000)

		_, err := led.Settle(ctx, id, 5000, 0, domain.TxLoss, "overdraw")
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
		}

		u, _ := st.GetUser(ctx, id)
		if u.Points != 1000 || u.TotalBet != 0 {
			t.Error("Failed settlement mutated state")
		}
		txs, _ := st.ListTransactions(ctx, id, 0)
		if len(txs) != 0 {
			t.Error("Failed settlement recorded a transaction")
		}
	})

	t.Run("RejectsNegativeAmounts", func(t *testing.T) {
		led, _, id := newTestLedger(t, 10000)

		if _, err := led.Settle(ctx, id, -100, 0, domain.TxLoss, "bad"); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount for negative stake, got %v", err)
		}
		if _, err := led.Settle(ctx, id, 0, -100, domain.TxWin, "bad"); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount for negative win, got %v", err)
		}
	})

	t.Run("ExactBalanceStakeIsAllowed", func(t *testing.T) {
		led, st, id := newTestLedger(t, 5000)

		res, err := led.Settle(ctx, id, 5000, 0, domain.TxLoss, "all in")
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if res.NewBalance != 0 {
			t.Errorf("NewBalance: got %d, want 0", res.NewBalance)
		}

		u, _ := st.GetUser(ctx, id)
		if u.Points != 0 {
			t.Errorf("Points: got %d, want 0", u.Points)
		}
	})

	t.Run("ConcurrentSettlementsSerialize", func(t *testing.T) {
		led, st, id := newTestLedger(t, 5000)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				led.Settle(ctx, id, 100, 0, domain.TxLoss, "concurrent")
			}()
		}
		wg.Wait()

		u, _ := st.GetUser(ctx, id)
		if u.Points != 0 {
			t.Errorf("Points after 50×100 stakes from 5000: got %d, want 0", u.Points)
		}
		txs, _ := st.ListTransactions(ctx, id, 0)
		if len(txs) != 50 {
			t.Errorf("Transactions: got %d, want 50", len(txs))
		}
	})
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("ChargeUpdatesCounter", func(t *testing.T) {
		led, st, id := newTestLedger(t, 0)

		res, err := led.Adjust(ctx, id, 50000, domain.TxCharge, "point charge")
		if err != nil {
			t.Fatalf("Adjust failed: %v", err)
		}
		if res.NewBalance != 50000 {
			t.Errorf("NewBalance: got %d, want 50000", res.NewBalance)
		}

		u, _ := st.GetUser(ctx, id)
		if u.TotalCharged != 50000 {
			t.Errorf("TotalCharged: got %d, want 50000", u.TotalCharged)
		}
	})

	t.Run("WithdrawalRejectedWhenOverdrawn", func(t *testing.T) {
		led, st, id := newTestLedger(t, 10000)

		_, err := led.Adjust(ctx, id, -30000, domain.TxWithdraw, "withdrawal")
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
		}

		u, _ := st.GetUser(ctx, id)
		if u.Points != 10000 {
			t.Error("Failed withdrawal mutated balance")
		}
	})

	t.Run("WithdrawalUpdatesCounter", func(t *testing.T) {
		led, st, id := newTestLedger(t, 50000)

		if _, err := led.Adjust(ctx, id, -30000, domain.TxWithdraw, "withdrawal"); err != nil {
			t.Fatalf("Adjust failed: %v", err)
		}

		u, _ := st.GetUser(ctx, id)
		if u.Points != 20000 {
			t.Errorf("Points: got %d, want 20000", u.Points)
		}
		if u.TotalWithdrawn != 30000 {
			t.Errorf("TotalWithdrawn: got %d, want 30000", u.TotalWithdrawn)
		}
	})

	t.Run("AdminDeductionClampsAtZero", func(t *testing.T) {
		led, st, id := newTestLedger(t, 10000)

		res, err := led.Adjust(ctx, id, -30000, domain.TxAdjust, "confiscation")
		if err != nil {
			t.Fatalf("Adjust failed: %v", err)
		}
		if res.NewBalance != 0 {
			t.Errorf("NewBalance: got %d, want 0", res.NewBalance)
		}
		if res.Transaction.Amount != -10000 {
			t.Errorf("Applied amount: got %d, want -10000", res.Transaction.Amount)
		}

		u, _ := st.GetUser(ctx, id)
		if u.Points != 0 {
			t.Errorf("Points: got %d, want 0", u.Points)
		}
	})

	t.Run("BonusRejectedWhenItWouldGoNegative", func(t *testing.T) {
		led, _, id := newTestLedger(t, 100)

		if _, err := led.Adjust(ctx, id, -500, domain.TxBonus, "bad bonus"); !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("Expected ErrInsufficientFunds, got %v", err)
		}
	})
}

type recordingBoard struct {
	mu    sync.Mutex
	users []string
}

func (b *recordingBoard) Record(_ context.Context, u *domain.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append(b.users, u.ID)
}

func TestScoreboardHook(t *testing.T) {
	ctx := context.Background()
	led, _, id := newTestLedger(t, 10000)

	board := &recordingBoard{}
	led.SetScoreboard(board)

	if _, err := led.Settle(ctx, id, 1000, 1950, domain.TxWin, "win"); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if _, err := led.Adjust(ctx, id, 5000, domain.TxCharge, "charge"); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	if len(board.users) != 2 {
		t.Errorf("Scoreboard recorded %d updates, want 2", len(board.users))
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	led, _, id := newTestLedger(t, 100000)

	for i := 0; i < 5; i++ {
		if _, err := led.Settle(ctx, id, 1000, 0, domain.TxLoss, "loss"); err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
	}

	txs, err := led.History(ctx, id, 3)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(txs) != 3 {
		t.Errorf("History limit: got %d entries, want 3", len(txs))
	}

	balance, err := led.Balance(ctx, id)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 95000 {
		t.Errorf("Balance: got %d, want 95000", balance)
	}
}
