// Package metrics exposes Prometheus instrumentation for the wager
// pipeline and a small standalone server for /metrics and /healthz.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WagersTotal counts resolved wagers per product.
	WagersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pointbook_wagers_total",
		Help: "Number of resolved wagers by product.",
	}, []string{"product"})

	// StakePointsTotal accumulates staked points per product.
	StakePointsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pointbook_stake_points_total",
		Help: "Total points staked by product.",
	}, []string{"product"})

	// WinPointsTotal accumulates won points per product.
	WinPointsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pointbook_win_points_total",
		Help: "Total points paid out by product.",
	}, []string{"product"})

	// SettlementsTotal counts ledger settlements by transaction type.
	SettlementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pointbook_settlements_total",
		Help: "Number of ledger settlements by transaction type.",
	}, []string{"type"})

	// SettlementDuration observes end-to-end settlement latency.
	SettlementDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pointbook_settlement_duration_seconds",
		Help:    "Latency of ledger settlements.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		WagersTotal,
		StakePointsTotal,
		WinPointsTotal,
		SettlementsTotal,
		SettlementDuration,
	)
}

// HealthFunc reports whether downstream dependencies are reachable.
type HealthFunc func(ctx context.Context) error

// StartServer runs a lightweight HTTP server serving only /metrics and
// /healthz, meant to be started in its own goroutine from main.
func StartServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if healthFn != nil {
			if err := healthFn(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, "unhealthy: %v", err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return srv
}
