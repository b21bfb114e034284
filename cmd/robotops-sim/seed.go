package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"robotops-sim/internal/config"
	"robotops-sim/internal/seed"
	"robotops-sim/internal/store"
)

var (
	seedAgents string
	seedDays   int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic telemetry history",
	Long:  "seed fills the collector database with patrol history for demos and dashboard development.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, schemaPath)
		if err != nil {
			return err
		}

		agents := strings.Split(seedAgents, ",")
		for i := range agents {
			agents[i] = strings.TrimSpace(agents[i])
		}

		db, err := store.Open(cfg.Collector.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		health, path, err := seed.Run(db, seed.Options{
			Agents: agents,
			Days:   seedDays,
		})
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d agents: %d health rows, %d path rows\n", len(agents), health, path)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAgents, "agents", "robot-1,robot-2,robot-3", "Comma-separated agent IDs to seed")
	seedCmd.Flags().IntVar(&seedDays, "days", 7, "Days of history to generate")
}
