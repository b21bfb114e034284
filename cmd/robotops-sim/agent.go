package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"robotops-sim/internal/agent"
	"robotops-sim/internal/config"
	"robotops-sim/internal/logging"
)

var agentID string

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run one simulated robot agent",
	Long:  "agent simulates a single robot: it authenticates with the collector, streams deduplicated telemetry, and executes queued commands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, schemaPath)
		if err != nil {
			return err
		}

		id := agentID
		if id == "" {
			id = cfg.Agent.ID
		}
		if id == "" {
			return fmt.Errorf("no agent id: set agent.id in config or pass --id")
		}
		if cfg.Agent.CollectorURL == "" {
			return fmt.Errorf("agent.collector_url is required")
		}

		log := logging.New().With("agent_id", id)
		ctx := logging.NewContext(cmd.Context(), log)
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := agent.NewClient(cfg.Agent.CollectorURL, id, cfg.Agent.Username, cfg.Agent.Password)
		if err != nil {
			return err
		}

		runner := agent.NewRunner(agent.New(id), client, agent.RunnerConfig{
			TelemetryInterval:    cfg.Agent.TelemetryInterval.Std(),
			CommandInterval:      cfg.Agent.CommandInterval.Std(),
			SessionCheckInterval: cfg.Agent.SessionCheckInterval.Std(),
		})

		log.Info("agent starting", "collector", cfg.Agent.CollectorURL)
		if err := runner.Run(ctx); err != nil {
			return err
		}
		log.Info("agent stopped")
		return nil
	},
}

func init() {
	agentCmd.Flags().StringVar(&agentID, "id", "", "Agent identifier (overrides config)")
}
