package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/ledger"
	"github.com/oddsworks/pointbook/internal/store"
)

func newTestAuth(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st := store.NewMemory()
	led := ledger.New(st, zap.NewNop())
	return New(st, led, zap.NewNop(), "test-secret", time.Hour, 10000), st
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesAccountWithSignupBonus", func(t *testing.T) {
		svc, st := newTestAuth(t)

		u, err := svc.Register(ctx, &RegisterRequest{
			Username: "Player1",
			Password: "secret-password",
			Nickname: "The Player",
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if u.Username != "player1" {
			t.Errorf("Username should be lowercased, got %q", u.Username)
		}
		if u.Points != 10000 {
			t.Errorf("Points: got %d, want 10000", u.Points)
		}
		if u.ReferralCode == "" {
			t.Error("Expected a referral code")
		}
		if u.PasswordHash == "secret-password" {
			t.Error("Password stored in plaintext")
		}

		txs, _ := st.ListTransactions(ctx, u.ID, 0)
		if len(txs) != 1 || txs[0].Type != domain.TxBonus {
			t.Errorf("Expected one bonus transaction, got %+v", txs)
		}
	})

	t.Run("RejectsDuplicateUsername", func(t *testing.T) {
		svc, _ := newTestAuth(t)

		req := &RegisterRequest{Username: "player1", Password: "secret-password"}
		if _, err := svc.Register(ctx, req); err != nil {
			t.Fatalf("First register failed: %v", err)
		}
		if _, err := svc.Register(ctx, req); !errors.Is(err, ErrUserExists) {
			t.Fatalf("Expected ErrUserExists, got %v", err)
		}
	})

	t.Run("RejectsShortPassword", func(t *testing.T) {
		svc, _ := newTestAuth(t)

		if _, err := svc.Register(ctx, &RegisterRequest{Username: "player1", Password: "short"}); err == nil {
			t.Error("Expected error for short password")
		}
	})

	t.Run("RejectsBadUsername", func(t *testing.T) {
		svc, _ := newTestAuth(t)

		if _, err := svc.Register(ctx, &RegisterRequest{Username: "ab", Password: "secret-password"}); err == nil {
			t.Error("Expected error for too-short username")
		}
	})

	t.Run("ResolvesReferralCode", func(t *testing.T) {
		svc, _ := newTestAuth(t)

		ref, err := svc.Register(ctx, &RegisterRequest{Username: "referrer", Password: "secret-password"})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		u, err := svc.Register(ctx, &RegisterRequest{
			Username:     "referred",
			Password:     "secret-password",
			ReferralCode: ref.ReferralCode,
		})
		if err != nil {
			t.Fatalf("Register with referral failed: %v", err)
		}
		if u.ReferredBy == nil || *u.ReferredBy != ref.ID {
			t.Errorf("ReferredBy: got %v, want %s", u.ReferredBy, ref.ID)
		}
	})

	t.Run("RejectsUnknownReferralCode", func(t *testing.T) {
		svc, _ := newTestAuth(t)

		_, err := svc.Register(ctx, &RegisterRequest{
			Username:     "player1",
			Password:     "secret-password",
			ReferralCode: "NOPE1234",
		})
		if !errors.Is(err, ErrInvalidReferral) {
			t.Fatalf("Expected ErrInvalidReferral, got %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("IssuesValidToken", func(t *testing.T) {
		svc, _ := newTestAuth(t)

		u, err := svc.Register(ctx, &RegisterRequest{Username: "player1", Password: "secret-password"})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		res, err := svc.Login(ctx, "player1", "secret-password")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if res.Token == "" {
			t.Fatal("Expected a token")
		}

		claims, err := svc.ValidateToken(res.Token)
		if err != nil {
			t.Fatalf("ValidateToken failed: %v", err)
		}
		if claims.UserID != u.ID {
			t.Errorf("Claims user: got %s, want %s", claims.UserID, u.ID)
		}
		if claims.Role != domain.RoleUser {
			t.Errorf("Claims role: got %s, want user", claims.Role)
		}
		if res.User.LastLogin == nil {
			t.Error("LastLogin not recorded")
		}
	})

	t.Run("RejectsWrongPassword", func(t *testing.T) {
		svc, _ := newTestAuth(t)

		if _, err := svc.Register(ctx, &RegisterRequest{Username: "player1", Password: "secret-password"}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := svc.Login(ctx, "player1", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("RejectsUnknownUser", func(t *testing.T) {
		svc, _ := newTestAuth(t)

		if _, err := svc.Login(ctx, "ghost", "secret-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("RejectsBannedAccount", func(t *testing.T) {
		svc, st := newTestAuth(t)

		u, err := svc.Register(ctx, &RegisterRequest{Username: "player1", Password: "secret-password"})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		u.Status = domain.UserBanned
		if err := st.UpdateUser(ctx, u); err != nil {
			t.Fatalf("Failed to ban user: %v", err)
		}

		if _, err := svc.Login(ctx, "player1", "secret-password"); !errors.Is(err, ErrAccountBanned) {
			t.Fatalf("Expected ErrAccountBanned, got %v", err)
		}
	})
}

func TestValidateToken(t *testing.T) {
	svc, _ := newTestAuth(t)

	t.Run("RejectsGarbage", func(t *testing.T) {
		if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("RejectsTokenFromOtherSecret", func(t *testing.T) {
		otherStore := store.NewMemory()
		other := New(otherStore, ledger.New(otherStore, zap.NewNop()), zap.NewNop(), "other-secret", time.Hour, 0)

		ctx := context.Background()
		if _, err := other.Register(ctx, &RegisterRequest{Username: "player1", Password: "secret-password"}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		res, err := other.Login(ctx, "player1", "secret-password")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		if _, err := svc.ValidateToken(res.Token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Expected ErrInvalidToken for foreign token, got %v", err)
		}
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestAuth(t)

	u, err := svc.Register(ctx, &RegisterRequest{Username: "player1", Password: "secret-password"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := svc.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Username != "player1" {
		t.Errorf("Username: got %s", got.Username)
	}

	u.Status = domain.UserBanned
	if err := st.UpdateUser(ctx, u); err != nil {
		t.Fatalf("Failed to ban user: %v", err)
	}
	if _, err := svc.GetUser(ctx, u.ID); !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("Expected ErrAccountBanned, got %v", err)
	}
}
