package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/api"
	"github.com/oddsworks/pointbook/internal/auth"
	"github.com/oddsworks/pointbook/internal/config"
	"github.com/oddsworks/pointbook/internal/game"
	"github.com/oddsworks/pointbook/internal/ledger"
	"github.com/oddsworks/pointbook/internal/metrics"
	"github.com/oddsworks/pointbook/internal/rank"
	"github.com/oddsworks/pointbook/internal/rng"
	"github.com/oddsworks/pointbook/internal/sports"
	"github.com/oddsworks/pointbook/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Persistence: Postgres when a DSN is configured, in-memory otherwise.
	var st store.Store
	var healthFn metrics.HealthFunc
	if cfg.Database.DSN != "" {
		pg, err := store.NewPostgres(cfg.Database.DSN)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Migrate(); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		st = pg
		healthFn = pg.Ping
		log.Info("using postgres store")
	} else {
		st = store.NewMemory()
		log.Info("using in-memory store")
	}

	src := rng.New()
	led := ledger.New(st, log)

	// Leaderboards are optional; without Redis the ledger simply has no
	// scoreboard hook.
	var board *rank.Leaderboard
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, leaderboards disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			board = rank.New(rdb, st, log)
			led.SetScoreboard(board)
			if err := board.Rebuild(ctx); err != nil {
				log.Warn("failed to rebuild leaderboards", zap.Error(err))
			}
			log.Info("leaderboards enabled", zap.String("redis", cfg.Redis.Addr))
		}
	}

	limits := map[game.Product]game.Limits{
		game.ProductBaccarat: {MinBet: cfg.Wager.MinBet, MaxBet: cfg.Wager.MaxBet},
		game.ProductSlots:    {MinBet: cfg.Wager.MinBet, MaxBet: cfg.Wager.SlotsMaxBet},
		game.ProductRoulette: {MinBet: cfg.Wager.MinBet, MaxBet: cfg.Wager.MaxBet},
		game.ProductOddEven:  {MinBet: cfg.Wager.MinBet, MaxBet: cfg.Wager.MaxBet},
		game.ProductLadder:   {MinBet: cfg.Wager.MinBet, MaxBet: cfg.Wager.MaxBet},
		game.ProductCoin:     {MinBet: cfg.Wager.MinBet, MaxBet: cfg.Wager.MaxBet},
		game.ProductDice:     {MinBet: cfg.Wager.MinBet, MaxBet: cfg.Wager.MaxBet},
	}
	engine := game.NewEngine(st, src, led, log, limits)

	sportsSvc := sports.New(st, led, log, cfg.Sports.MinBet, cfg.Sports.MaxBet)
	feed := api.NewMatchFeed(log)
	sportsSvc.SetFeed(feed)

	authSvc := auth.New(st, led, log, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, cfg.Auth.SignupBonus)

	if cfg.Sports.SimEnabled {
		sim := sports.NewSimulator(sportsSvc, rng.NewPseudo(time.Now().UnixNano()), log, cfg.Sports.SimInterval)
		go sim.Run(ctx)
		log.Info("match simulator started", zap.Duration("interval", cfg.Sports.SimInterval))
	}

	metricsSrv := metrics.StartServer(cfg.Server.MetricsPort, healthFn)
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	handler := api.New(authSvc, led, engine, sportsSvc, board, st, src, feed, cfg.Wager, log)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.SetupRouter(log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown failed", zap.Error(err))
	}
}
