package collector

import (
	"context"
	"log"
	"net"
	"strconv"

	"robotops-sim/internal/telemetry"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeWriter forwards accepted telemetry rows to GreptimeDB via the
// ingester client.
type GreptimeWriter struct {
	client *greptime.Client
	db     string
	table  string
}

// NewGreptimeWriter creates a GreptimeDB writer. The table is auto-created
// on first write from the declared column schema, with a 30-day TTL passed
// as an ingestion hint (the gRPC ingester has no SQL/DDL interface).
func NewGreptimeWriter(endpoint, database, tableName string) (*GreptimeWriter, error) {
	host := endpoint
	port := 0
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		host = h
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}

	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port != 0 {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if tableName == "" {
		tableName = telemetry.TableName
	}

	return &GreptimeWriter{
		client: client,
		db:     database,
		table:  tableName,
	}, nil
}

// Write inserts a single telemetry row.
func (w *GreptimeWriter) Write(row telemetry.Row) error {
	return w.WriteBatch([]telemetry.Row{row})
}

// WriteBatch inserts multiple telemetry rows.
func (w *GreptimeWriter) WriteBatch(rows []telemetry.Row) error {
	if len(rows) == 0 {
		return nil
	}

	ctx := ingesterContext.New(context.Background(),
		ingesterContext.WithHint([]*ingesterContext.Hint{
			{Key: "ttl", Value: "30d"},
		}))

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("agent_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("battery_voltage", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("temperature", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("motor_load", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("status", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("cycle_count", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("x", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("y", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("orientation", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(r.AgentID, r.BatteryVoltage, r.Temperature,
			int64(r.MotorLoad), r.Status, r.CycleCount,
			r.X, r.Y, r.Orientation, r.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Printf("[GreptimeWriter] write failed: %v", err)
		return err
	}
	return nil
}
