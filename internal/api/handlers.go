// Package api provides the HTTP API of the points betting platform.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/auth"
	"github.com/oddsworks/pointbook/internal/config"
	"github.com/oddsworks/pointbook/internal/domain"
	"github.com/oddsworks/pointbook/internal/game"
	"github.com/oddsworks/pointbook/internal/ledger"
	"github.com/oddsworks/pointbook/internal/rank"
	"github.com/oddsworks/pointbook/internal/rng"
	"github.com/oddsworks/pointbook/internal/sports"
	"github.com/oddsworks/pointbook/internal/store"
)

// Handler contains all HTTP handlers.
type Handler struct {
	auth   *auth.Service
	ledger *ledger.Service
	engine *game.Engine
	sports *sports.Service
	rank   *rank.Leaderboard
	store  store.Store
	rng    *rng.Service
	feed   *MatchFeed
	wager  config.WagerConfig
	log    *zap.Logger
}

// New creates a new API handler. rank and feed may be nil when Redis
// or the live feed are disabled.
func New(authSvc *auth.Service, led *ledger.Service, engine *game.Engine, sportsSvc *sports.Service, board *rank.Leaderboard, st store.Store, rngSvc *rng.Service, feed *MatchFeed, wager config.WagerConfig, log *zap.Logger) *Handler {
	return &Handler{
		auth:   authSvc,
		ledger: led,
		engine: engine,
		sports: sportsSvc,
		rank:   board,
		store:  st,
		rng:    rngSvc,
		feed:   feed,
		wager:  wager,
		log:    log,
	}
}

// Response helpers

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondServiceError maps service errors to HTTP responses.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "INSUFFICIENT_POINTS", "Not enough points")
	case errors.Is(err, game.ErrUnknownProduct):
		respondError(w, http.StatusNotFound, "UNKNOWN_PRODUCT", "Unknown game")
	case errors.Is(err, game.ErrStakeTooLow), errors.Is(err, game.ErrStakeTooHigh),
		errors.Is(err, sports.ErrStakeTooLow), errors.Is(err, sports.ErrStakeTooHigh):
		respondError(w, http.StatusBadRequest, "INVALID_STAKE", err.Error())
	case errors.Is(err, game.ErrInvalidPick), errors.Is(err, sports.ErrInvalidPick):
		respondError(w, http.StatusBadRequest, "INVALID_PICK", err.Error())
	case errors.Is(err, game.ErrUserBanned), errors.Is(err, sports.ErrUserBanned):
		respondError(w, http.StatusForbidden, "ACCOUNT_BANNED", "Account is banned")
	case errors.Is(err, sports.ErrDuplicateBet):
		respondError(w, http.StatusConflict, "DUPLICATE_BET", "A pending bet already exists for this match")
	case errors.Is(err, sports.ErrMatchFinished):
		respondError(w, http.StatusBadRequest, "MATCH_FINISHED", "Match has already finished")
	case errors.Is(err, sports.ErrMatchSettled):
		respondError(w, http.StatusConflict, "MATCH_SETTLED", "Match has already been settled")
	default:
		h.log.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func queryLimit(r *http.Request, def, max int) int {
	limit := def
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= max {
			limit = n
		}
	}
	return limit
}

// === Health & Info ===

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rngHealth, _ := h.rng.HealthCheck()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"rng_status": rngHealth,
	})
}

// ServerInfo handles GET /.
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "pointbook",
		"version":     "1.0.0",
		"description": "Points betting platform",
	})
}

// === Authentication ===

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	u, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondError(w, http.StatusConflict, "USER_EXISTS", "Username already taken")
		case errors.Is(err, auth.ErrInvalidReferral):
			respondError(w, http.StatusBadRequest, "INVALID_REFERRAL", "Unknown referral code")
		default:
			respondError(w, http.StatusBadRequest, "REGISTRATION_FAILED", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id":       u.ID,
		"username":      u.Username,
		"points":        u.Points,
		"referral_code": u.ReferralCode,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		case errors.Is(err, auth.ErrAccountBanned):
			respondError(w, http.StatusForbidden, "ACCOUNT_BANNED", "Account is banned")
		default:
			respondError(w, http.StatusInternalServerError, "LOGIN_FAILED", "Login failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
	})
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currentUser(r))
}

// === Points ===

// GetBalance handles GET /api/v1/points/balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	balance, err := h.ledger.Balance(r.Context(), u.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"points": balance,
	})
}

// Charge handles POST /api/v1/points/charge. Any signed-in account
// can top itself up within the configured bounds; operator grants and
// confiscations go through the admin points route instead.
func (h *Handler) Charge(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Amount < h.wager.ChargeMin || req.Amount > h.wager.ChargeMax {
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Charge amount out of range")
		return
	}

	st, err := h.ledger.Adjust(r.Context(), u.ID, req.Amount, domain.TxCharge, "point charge")
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": st.Transaction.ID,
		"amount":         st.Transaction.Amount,
		"balance_after":  st.NewBalance,
	})
}

// Withdraw handles POST /api/v1/points/withdraw.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Amount < h.wager.WithdrawMin {
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Withdrawal below minimum")
		return
	}

	st, err := h.ledger.Adjust(r.Context(), u.ID, -req.Amount, domain.TxWithdraw, "point withdrawal")
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": st.Transaction.ID,
		"amount":         st.Transaction.Amount,
		"balance_after":  st.NewBalance,
	})
}

// GetTransactions handles GET /api/v1/points/transactions.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	transactions, err := h.ledger.History(r.Context(), u.ID, queryLimit(r, 50, 100))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transactions)
}

// === Casino ===

// GetLimits handles GET /api/v1/casino/limits/{product}.
func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	product := game.Product(mux.Vars(r)["product"])

	lim, err := h.engine.Limits(product)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"product": product,
		"min_bet": lim.MinBet,
		"max_bet": lim.MaxBet,
	})
}

// PlayBaccarat handles POST /api/v1/casino/baccarat.
func (h *Handler) PlayBaccarat(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req struct {
		Player     int64 `json:"player"`
		Banker     int64 `json:"banker"`
		Tie        int64 `json:"tie"`
		PlayerPair int64 `json:"player_pair"`
		BankerPair int64 `json:"banker_pair"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.engine.PlayBaccarat(r.Context(), u.ID, game.BaccaratLegs{
		Player:     req.Player,
		Banker:     req.Banker,
		Tie:        req.Tie,
		PlayerPair: req.PlayerPair,
		BankerPair: req.BankerPair,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// PlaySlots handles POST /api/v1/casino/slots.
func (h *Handler) PlaySlots(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.engine.PlaySlots(r.Context(), u.ID, req.Amount)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// PlayRoulette handles POST /api/v1/casino/roulette.
func (h *Handler) PlayRoulette(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req struct {
		BetType   string `json:"bet_type"`
		BetNumber int    `json:"bet_number"`
		Amount    int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.engine.PlayRoulette(r.Context(), u.ID, game.RouletteBetType(req.BetType), req.BetNumber, req.Amount)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// PlayMini handles POST /api/v1/minigame/{game}.
func (h *Handler) PlayMini(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	product := game.Product(mux.Vars(r)["game"])

	var req struct {
		Pick   string `json:"pick"`
		Amount int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.engine.PlayMini(r.Context(), u.ID, product, req.Pick, req.Amount)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// === Sports ===

// GetMatches handles GET /api/v1/sports/matches.
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.sports.ListMatches(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

// GetMatch handles GET /api/v1/sports/matches/{id}.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := h.sports.GetMatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, match)
}

// PlaceBet handles POST /api/v1/sports/bets.
func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req struct {
		MatchID string `json:"match_id"`
		Pick    string `json:"pick"`
		Amount  int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	bet, balance, err := h.sports.PlaceBet(r.Context(), u.ID, req.MatchID, domain.Pick(req.Pick), req.Amount)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"bet":           bet,
		"balance_after": balance,
	})
}

// MyBets handles GET /api/v1/sports/bets.
func (h *Handler) MyBets(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	bets, err := h.sports.MyBets(r.Context(), u.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bets)
}

// === Ranking ===

// GetRanking handles GET /api/v1/ranking/{board}.
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	if h.rank == nil {
		respondError(w, http.StatusServiceUnavailable, "RANKING_DISABLED", "Leaderboards are not enabled")
		return
	}

	board := rank.Board(mux.Vars(r)["board"])
	switch board {
	case rank.BoardPoints, rank.BoardWon, rank.BoardBet:
	default:
		respondError(w, http.StatusNotFound, "UNKNOWN_BOARD", "Unknown leaderboard")
		return
	}

	entries, err := h.rank.Top(r.Context(), board, queryLimit(r, 20, 100))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
