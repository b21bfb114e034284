package watch

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// RunPlain polls the fleet and prints a tab-aligned snapshot per interval.
// Used when stdout is not a terminal (pipes, CI logs).
func RunPlain(ctx context.Context, client *Client, interval time.Duration, out io.Writer) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		rows, err := client.Fleet(ctx)
		if err != nil {
			fmt.Fprintf(out, "poll failed: %v\n", err)
		} else {
			printSnapshot(out, rows)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func printSnapshot(out io.Writer, rows []AgentRow) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGENT\tSTATUS\tBATT\tTEMP\tX\tY\tCYCLES\tLAST SEEN")
	for _, r := range rows {
		if r.Last == nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\tnever\n", r.Info.ID, r.Info.Status)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.1f\t%.1f\t%.1f\t%d\t%s\n",
			r.Info.ID, r.Last.Status, r.Last.BatteryVoltage, r.Last.Temperature,
			r.Last.X, r.Last.Y, r.Last.CycleCount,
			r.Last.Timestamp.Format(time.RFC3339))
	}
	tw.Flush()
}
