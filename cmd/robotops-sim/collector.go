package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"robotops-sim/internal/collector"
	"robotops-sim/internal/config"
	"robotops-sim/internal/logging"
	"robotops-sim/internal/store"
)

var (
	collectorAddr      string
	collectorLogFile   string
	collectorPrintOnly bool
	operatorUser       string
	operatorPassword   string
)

var collectorCmd = &cobra.Command{
	Use:   "collector",
	Short: "Run the telemetry collector service",
	Long:  "collector serves the ingest and operator API backed by SQLite, with optional GreptimeDB and JSONL fan-out.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, schemaPath)
		if err != nil {
			return err
		}

		log := logging.New()
		ctx := logging.NewContext(cmd.Context(), log)
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := store.Open(cfg.Collector.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if obstacles := cfg.Obstacles(); len(obstacles) > 0 {
			if err := db.ReplaceObstacles(obstacles); err != nil {
				return err
			}
			log.Info("workspace loaded", "obstacles", len(obstacles))
		}

		if password := operatorPasswordValue(); password != "" {
			hash, err := collector.HashPassword(password)
			if err != nil {
				return err
			}
			if err := db.UpsertUser(operatorUser, hash); err != nil {
				return err
			}
			log.Info("operator account ready", "username", operatorUser)
		}

		sink, cleanup, err := newSink(cfg, collectorPrintOnly, collectorLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := collector.NewServer(db, cfg.Collector.SessionSecret, sink)
		go srv.RunMaintenance(ctx)

		addr := collectorAddr
		if addr == "" {
			addr = cfg.Collector.ListenAddr
		}
		log.Info("collector listening", "addr", addr)
		if err := srv.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("collector stopped")
		return nil
	},
}

// operatorPasswordValue prefers the flag, then the environment, so secrets
// can stay out of shell history.
func operatorPasswordValue() string {
	if operatorPassword != "" {
		return operatorPassword
	}
	return os.Getenv("ROBOTOPS_OPERATOR_PASSWORD")
}

func init() {
	collectorCmd.Flags().StringVar(&collectorAddr, "addr", "", "Listen address (overrides config)")
	collectorCmd.Flags().StringVar(&collectorLogFile, "log-file", "", "Path to export accepted telemetry (JSONL)")
	collectorCmd.Flags().BoolVar(&collectorPrintOnly, "print-telemetry", false, "Print accepted telemetry to STDOUT")
	collectorCmd.Flags().StringVar(&operatorUser, "operator-user", "operator", "Operator account to create or update on startup")
	collectorCmd.Flags().StringVar(&operatorPassword, "operator-password", "", "Operator password (or ROBOTOPS_OPERATOR_PASSWORD)")
}
