package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-race"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Redis   Redis
	Race    Race
	Scoring Scoring
	Game    Game
}

// Redis configures the optional snapshot store. An empty address disables it.
type Redis struct {
	Addr        string        `env:"REDIS_ADDR"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize    int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	SnapshotTTL time.Duration `env:"REDIS_SNAPSHOT_TTL" envDefault:"30m"`
}

// Race governs the simulation clock and track.
type Race struct {
	TickInterval time.Duration `env:"RACE_TICK_INTERVAL" envDefault:"80ms"`
	FinishLine   float64       `env:"RACE_FINISH_LINE" envDefault:"100"`
	Seed         int64         `env:"RACE_SEED" envDefault:"0"`
}

// Scoring holds the streak and penalty constants.
type Scoring struct {
	StreakStep   int `env:"SCORING_STREAK_STEP" envDefault:"3"`
	StreakBonus  int `env:"SCORING_STREAK_BONUS" envDefault:"10"`
	WrongPenalty int `env:"SCORING_WRONG_PENALTY" envDefault:"5"`
}

// Game groups session behavior.
type Game struct {
	RetryPolicy   string `env:"GAME_RETRY_POLICY" envDefault:"retry_until_correct"`
	ManualAdvance bool   `env:"GAME_MANUAL_ADVANCE" envDefault:"false"`
	QuestionBank  string `env:"GAME_QUESTION_BANK"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Race.TickInterval <= 0 {
		return nil, fmt.Errorf("parse config: RACE_TICK_INTERVAL must be positive, got %s", cfg.Race.TickInterval)
	}
	return cfg, nil
}
