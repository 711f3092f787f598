package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/quiz-race/internal/app"
	"github.com/gokatarajesh/quiz-race/internal/logging"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd.Context())
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			instance, err := app.New(cfg, logging.FromContext(cmd.Context()))
			if err != nil {
				return fmt.Errorf("failed to build app: %w", err)
			}
			return instance.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}
