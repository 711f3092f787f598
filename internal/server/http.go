package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-race/internal/config"
	httperrors "github.com/gokatarajesh/quiz-race/pkg/http/errors"
)

// WSUpgrader handles WebSocket upgrades.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const pingTimeout = 2 * time.Second

// Routes are the feature handlers mounted next to the base routes. Nil
// handlers answer 501.
type Routes struct {
	Categories http.HandlerFunc
	RaceWS     http.HandlerFunc
}

// NewHTTPServer wires base routes (health, metrics, ping) and the feature routes.
// redis may be nil when snapshots are disabled.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, gatherer prometheus.Gatherer, redis *redis.Client, routes Routes) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewMux(logger, gatherer, redis, routes),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewMux builds the route table.
func NewMux(logger zerolog.Logger, gatherer prometheus.Gatherer, redis *redis.Client, routes Routes) *http.ServeMux {
	logger = logger.With().Str("component", "http").Logger()
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), redis); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "upstream error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	mux.HandleFunc("/v1/categories", orNotImplemented(routes.Categories))
	mux.HandleFunc("/ws/race", orNotImplemented(routes.RaceWS))
	return mux
}

func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondError(w, http.StatusNotImplemented, httperrors.ErrCodeInternalError, "handler not configured")
	}
}

func pingDependencies(ctx context.Context, redis *redis.Client) error {
	if redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return redis.Ping(ctx).Err()
}
