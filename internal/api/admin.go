// Package api - Administrative handlers.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
)

// GetStats handles GET /api/v1/admin/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	var active, banned int
	var totalPoints, totalStaked, totalWon int64
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			continue
		}
		switch u.Status {
		case domain.UserBanned:
			banned++
		default:
			active++
		}
		totalPoints += u.Points
		totalStaked += u.TotalBet
		totalWon += u.TotalWon
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_users":  active + banned,
		"active_users": active,
		"banned_users": banned,
		"total_points": totalPoints,
		"total_staked": totalStaked,
		"total_won":    totalWon,
		"house_net":    totalStaked - totalWon,
	})
}

// ListUsers handles GET /api/v1/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUserDetail handles GET /api/v1/admin/users/{id}.
func (h *Handler) GetUserDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	transactions, err := h.ledger.History(r.Context(), id, 50)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":         u,
		"transactions": transactions,
	})
}

// AdjustPoints handles POST /api/v1/admin/users/{id}/points.
// A positive amount grants points, a negative amount deducts them;
// deductions clamp at zero.
func (h *Handler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	admin := currentUser(r)

	var req struct {
		Amount int64  `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Amount == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be non-zero")
		return
	}
	desc := req.Reason
	if desc == "" {
		desc = "administrative adjustment"
	}

	st, err := h.ledger.Adjust(r.Context(), id, req.Amount, domain.TxAdjust, desc)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.log.Info("admin point adjustment",
		zap.String("admin_id", admin.ID),
		zap.String("user_id", id),
		zap.Int64("amount", req.Amount))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": st.Transaction.ID,
		"applied":        st.Transaction.Amount,
		"balance_after":  st.NewBalance,
	})
}

// SetUserStatus handles POST /api/v1/admin/users/{id}/status.
func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	admin := currentUser(r)

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	status := domain.UserStatus(req.Status)
	if status != domain.UserActive && status != domain.UserBanned {
		respondError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be active or banned")
		return
	}

	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	u.Status = status
	if err := h.store.UpdateUser(r.Context(), u); err != nil {
		h.respondServiceError(w, err)
		return
	}

	if h.rank != nil && status == domain.UserBanned {
		h.rank.Remove(r.Context(), id)
	}

	h.log.Info("admin status change",
		zap.String("admin_id", admin.ID),
		zap.String("user_id", id),
		zap.String("status", string(status)))

	respondJSON(w, http.StatusOK, u)
}

// ListBets handles GET /api/v1/admin/bets. Returns every sports bet,
// newest first, for operator auditing.
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	bets, err := h.store.ListBets(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if limit := queryLimit(r, 100, 500); len(bets) > limit {
		bets = bets[:limit]
	}
	respondJSON(w, http.StatusOK, bets)
}

// GetBetDetail handles GET /api/v1/admin/bets/{id}.
func (h *Handler) GetBetDetail(w http.ResponseWriter, r *http.Request) {
	bet, err := h.store.GetBet(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bet)
}

// CreateMatch handles POST /api/v1/admin/matches.
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		League    string    `json:"league"`
		Home      string    `json:"home"`
		Away      string    `json:"away"`
		HomeOdds  float64   `json:"home_odds"`
		DrawOdds  float64   `json:"draw_odds"`
		AwayOdds  float64   `json:"away_odds"`
		StartTime time.Time `json:"start_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Home == "" || req.Away == "" || req.HomeOdds <= 0 || req.AwayOdds <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_MATCH", "Teams and positive home/away odds are required")
		return
	}

	match, err := h.sports.CreateMatch(r.Context(), &domain.Match{
		League:    req.League,
		Home:      req.Home,
		Away:      req.Away,
		HomeOdds:  req.HomeOdds,
		DrawOdds:  req.DrawOdds,
		AwayOdds:  req.AwayOdds,
		StartTime: req.StartTime,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, match)
}

// UpdateMatchScore handles PUT /api/v1/admin/matches/{id}/score.
func (h *Handler) UpdateMatchScore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		HomeScore int    `json:"home_score"`
		AwayScore int    `json:"away_score"`
		Minute    int    `json:"minute"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	match, err := h.sports.UpdateScore(r.Context(), id, req.HomeScore, req.AwayScore, req.Minute, domain.MatchStatus(req.Status))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, match)
}

// SettleMatch handles POST /api/v1/admin/matches/{id}/settle.
func (h *Handler) SettleMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	admin := currentUser(r)

	var req struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	settled, err := h.sports.Settle(r.Context(), id, domain.Pick(req.Result))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.log.Info("admin match settlement",
		zap.String("admin_id", admin.ID),
		zap.String("match_id", id),
		zap.String("result", req.Result),
		zap.Int("bets_settled", settled))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"match_id":     id,
		"result":       req.Result,
		"bets_settled": settled,
	})
}
