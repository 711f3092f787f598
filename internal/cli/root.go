package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/quiz-race/internal/config"
	"github.com/gokatarajesh/quiz-race/internal/logging"
)

type configKey struct{}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the quizrace command tree.
func NewRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "quizrace",
		Short:         "Single-player quiz race engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := bootstrap(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "configs/.env", "dotenv file loaded when APP_ENV is not production")
	cmd.AddCommand(newServeCmd(), newSimulateCmd())
	return cmd
}

// bootstrap loads the dotenv file, parses configuration and stores both the
// config and the logger in ctx.
func bootstrap(ctx context.Context, envFile string) (context.Context, error) {
	var dotenvErr error
	if os.Getenv("APP_ENV") != "production" && envFile != "" {
		dotenvErr = godotenv.Load(envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	switch {
	case dotenvErr == nil:
	case errors.Is(dotenvErr, fs.ErrNotExist):
		logger.Debug().Str("path", envFile).Msg("no .env file")
	default:
		logger.Warn().Err(dotenvErr).Str("path", envFile).Msg("could not load .env file")
	}

	ctx = context.WithValue(ctx, configKey{}, cfg)
	return logging.IntoContext(ctx, logger), nil
}

func configFrom(ctx context.Context) *config.App {
	if cfg, ok := ctx.Value(configKey{}).(*config.App); ok {
		return cfg
	}
	return &config.App{}
}
