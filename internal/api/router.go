// Package api - Router setup.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router.
func (h *Handler) SetupRouter(log *zap.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(RecoveryMiddleware(log))
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware(log))

	// Public routes
	r.HandleFunc("/", h.ServerInfo).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth routes (public)
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", h.Register).Methods("POST")
	authRoutes.HandleFunc("/login", h.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(h.AuthMiddleware)

	protected.HandleFunc("/auth/me", h.Me).Methods("GET")

	// Points
	protected.HandleFunc("/points/balance", h.GetBalance).Methods("GET")
	protected.HandleFunc("/points/charge", h.Charge).Methods("POST")
	protected.HandleFunc("/points/withdraw", h.Withdraw).Methods("POST")
	protected.HandleFunc("/points/transactions", h.GetTransactions).Methods("GET")

	// Casino
	protected.HandleFunc("/casino/limits/{product}", h.GetLimits).Methods("GET")
	protected.HandleFunc("/casino/baccarat", h.PlayBaccarat).Methods("POST")
	protected.HandleFunc("/casino/slots", h.PlaySlots).Methods("POST")
	protected.HandleFunc("/casino/roulette", h.PlayRoulette).Methods("POST")
	protected.HandleFunc("/minigame/{game}", h.PlayMini).Methods("POST")

	// Sports
	protected.HandleFunc("/sports/matches", h.GetMatches).Methods("GET")
	protected.HandleFunc("/sports/matches/{id}", h.GetMatch).Methods("GET")
	protected.HandleFunc("/sports/bets", h.PlaceBet).Methods("POST")
	protected.HandleFunc("/sports/bets", h.MyBets).Methods("GET")

	// Ranking
	protected.HandleFunc("/ranking/{board}", h.GetRanking).Methods("GET")

	// Live match feed
	protected.HandleFunc("/ws/matches", h.HandleMatchFeed).Methods("GET")

	// Admin
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(AdminMiddleware)
	admin.HandleFunc("/stats", h.GetStats).Methods("GET")
	admin.HandleFunc("/users", h.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", h.GetUserDetail).Methods("GET")
	admin.HandleFunc("/users/{id}/points", h.AdjustPoints).Methods("POST")
	admin.HandleFunc("/users/{id}/status", h.SetUserStatus).Methods("POST")
	admin.HandleFunc("/bets", h.ListBets).Methods("GET")
	admin.HandleFunc("/bets/{id}", h.GetBetDetail).Methods("GET")
	admin.HandleFunc("/matches", h.CreateMatch).Methods("POST")
	admin.HandleFunc("/matches/{id}/score", h.UpdateMatchScore).Methods("PUT")
	admin.HandleFunc("/matches/{id}/settle", h.SettleMatch).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	return r
}

// NotFoundHandler handles 404 errors.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}
