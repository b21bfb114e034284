package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"robotops-sim/internal/config"
	"robotops-sim/internal/watch"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the fleet from the terminal",
	Long:  "watch polls the collector and renders a live fleet table, falling back to plain output when not attached to a terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, schemaPath)
		if err != nil {
			return err
		}

		client, err := watch.NewClient(cfg.Agent.CollectorURL, cfg.Agent.Username, cfg.Agent.Password)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := client.Login(ctx); err != nil {
			return err
		}

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			err := watch.RunPlain(ctx, client, watchInterval, os.Stdout)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		return watch.Run(client, watchInterval)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "Poll interval")
}
