package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"robotops-sim/internal/collector"
	"robotops-sim/internal/config"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a telemetry export",
	Long:  "replay feeds telemetry rows from a JSONL export back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg, err := config.Load(configPath, schemaPath)
		if err != nil {
			return err
		}
		writer, cleanup, err := newSink(cfg, replayPrintOnly, "")
		if err != nil {
			return err
		}
		defer cleanup()
		if writer == nil {
			writer = &collector.StdoutWriter{}
		}
		return collector.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to telemetry JSONL export")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
