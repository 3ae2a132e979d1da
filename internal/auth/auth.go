// Package auth provides account registration, login and JWT session
// validation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/ledger"
	"github.com/oddsworks/pointbook/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account is banned")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidReferral    = errors.New("unknown referral code")
)

// Service provides authentication functionality.
type Service struct {
	store       store.Store
	ledger      *ledger.Service
	log         *zap.Logger
	jwtSecret   []byte
	tokenExpiry time.Duration
	signupBonus int64
}

// New creates a new auth service.
func New(st store.Store, led *ledger.Service, log *zap.Logger, jwtSecret string, tokenExpiry time.Duration, signupBonus int64) *Service {
	return &Service{
		store:       st,
		ledger:      led,
		log:         log,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
		signupBonus: signupBonus,
	}
}

// RegisterRequest contains registration data.
type RegisterRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Nickname     string `json:"nickname"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// Register creates a new account and credits the signup bonus through
// the ledger so it shows up in the transaction history.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(strings.ToLower(req.Username))
	if len(username) < 3 || len(username) > 20 {
		return nil, errors.New("username must be 3-20 characters")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = username
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var referredBy *string
	if req.ReferralCode != "" {
		ref, err := s.findByReferralCode(ctx, strings.ToUpper(req.ReferralCode))
		if err != nil {
			return nil, err
		}
		referredBy = &ref.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Role:         domain.RoleUser,
		Status:       domain.UserActive,
		Points:       0,
		ReferralCode: newReferralCode(),
		ReferredBy:   referredBy,
		CreatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.signupBonus > 0 {
		st, err := s.ledger.Adjust(ctx, u.ID, s.signupBonus, domain.TxBonus, "signup bonus")
		if err != nil {
			s.log.Error("failed to credit signup bonus",
				zap.String("user_id", u.ID),
				zap.Error(err))
		} else {
			u.Points = st.NewBalance
		}
	}

	s.log.Info("user registered",
		zap.String("user_id", u.ID),
		zap.String("username", u.Username))

	return u, nil
}

// LoginResponse contains login result.
type LoginResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Login authenticates a user and issues a signed token. Banned
// accounts cannot log in.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(strings.ToLower(username)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Status == domain.UserBanned {
		return nil, ErrAccountBanned
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"role":     string(u.Role),
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	u.LastLogin = &now
	if err := s.store.UpdateUser(ctx, u); err != nil {
		s.log.Warn("failed to record last login",
			zap.String("user_id", u.ID),
			zap.Error(err))
	}

	return &LoginResponse{User: u, Token: tokenString, ExpiresAt: expiresAt}, nil
}

// Claims is the validated identity carried by a token.
type Claims struct {
	UserID   string
	Username string
	Role     domain.Role
}

// ValidateToken parses and validates a JWT and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)

	return &Claims{
		UserID:   sub,
		Username: username,
		Role:     domain.Role(role),
	}, nil
}

// GetUser loads the current account for a validated token, rejecting
// accounts banned after the token was issued.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Status == domain.UserBanned {
		return nil, ErrAccountBanned
	}
	return u, nil
}

// findByReferralCode scans for the owner of a referral code.
func (s *Service) findByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	for _, u := range users {
		if u.ReferralCode == code {
			return u, nil
		}
	}
	return nil, ErrInvalidReferral
}

// newReferralCode derives a short shareable code from a fresh UUID.
func newReferralCode() string {
	id := uuid.New().String()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
