package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gokatarajesh/quiz-race/internal/config"
	"github.com/gokatarajesh/quiz-race/internal/game"
	"github.com/gokatarajesh/quiz-race/internal/game/race"
	"github.com/gokatarajesh/quiz-race/internal/game/scoring"
	"github.com/gokatarajesh/quiz-race/internal/game/session"
	"github.com/gokatarajesh/quiz-race/internal/metrics"
	"github.com/gokatarajesh/quiz-race/internal/question"
	"github.com/gokatarajesh/quiz-race/internal/server"
	ws "github.com/gokatarajesh/quiz-race/pkg/http/ws"
)

// Application aggregates shared infrastructure (bank, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	hub   *ws.Hub
	http  *http.Server
}

// New wires the question bank, optional Redis snapshots, metrics and the HTTP server.
func New(cfg *config.App, logger zerolog.Logger) (*Application, error) {
	logger.Info().Msg("starting application bootstrap")

	bank, err := question.LoadBank(cfg.Game.QuestionBank)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	opts, err := EngineOptions(cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts.Recorder = metrics.New(reg)

	var (
		redisClient *redis.Client
		snapshots   game.Snapshots
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		snapshots = game.NewSnapshotStore(redisClient, cfg.Redis.SnapshotTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis snapshots enabled")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; session resume disabled")
	}

	hub := ws.NewHub(logger)
	raceHandler := game.NewHandler(bank, snapshots, hub, opts, logger)
	questionHandler := question.NewHTTPHandler(bank, logger)

	apiServer := server.NewHTTPServer(cfg, logger, reg, redisClient, server.Routes{
		Categories: questionHandler.HandleCategories,
		RaceWS:     raceHandler.HandleWebSocket,
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		redis:  redisClient,
		hub:    hub,
		http:   apiServer,
	}, nil
}

// EngineOptions maps configuration onto the engine template.
func EngineOptions(cfg *config.App) (game.Options, error) {
	policy, err := session.ParseRetryPolicy(cfg.Game.RetryPolicy)
	if err != nil {
		return game.Options{}, fmt.Errorf("parse config: %w", err)
	}

	raceCfg := race.DefaultConfig()
	raceCfg.TickInterval = cfg.Race.TickInterval
	raceCfg.FinishLine = cfg.Race.FinishLine

	return game.Options{
		Race: raceCfg,
		Scoring: scoring.Config{
			StreakStep:   cfg.Scoring.StreakStep,
			StreakBonus:  cfg.Scoring.StreakBonus,
			WrongPenalty: cfg.Scoring.WrongPenalty,
		},
		RetryPolicy:   policy,
		ManualAdvance: cfg.Game.ManualAdvance,
		Seed:          cfg.Race.Seed,
	}, nil
}

// Run starts the HTTP server and waits for a termination signal or ctx.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
		defer cancel()

		a.hub.CloseAll()
		if err := a.http.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("http shutdown error")
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				a.logger.Error().Err(err).Msg("redis shutdown error")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info().Msg("shutdown complete")
	return nil
}
