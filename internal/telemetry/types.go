// Telemetry sample types shared by agent and collector
package telemetry

import (
	"math"
	"os"
	"time"
)

// Sample is one immutable telemetry snapshot, created every reporting tick
// and compared by value for agent-side deduplication. All numeric fields are
// rounded before the sample leaves the agent.
type Sample struct {
	AgentID        string    `json:"agent_id"`
	Timestamp      time.Time `json:"timestamp"`
	BatteryVoltage float64   `json:"battery_voltage"`
	Temperature    float64   `json:"temperature"`
	MotorLoad      int       `json:"motor_load"`
	Status         string    `json:"status"`
	CycleCount     int64     `json:"cycle_count"`
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	Orientation    float64   `json:"orientation"`
}

// Equal compares everything except the timestamp. Two consecutive rounded
// samples that differ only in time are duplicates and must not be
// retransmitted.
func (s Sample) Equal(other Sample) bool {
	return s.AgentID == other.AgentID &&
		s.BatteryVoltage == other.BatteryVoltage &&
		s.Temperature == other.Temperature &&
		s.MotorLoad == other.MotorLoad &&
		s.Status == other.Status &&
		s.CycleCount == other.CycleCount &&
		s.X == other.X &&
		s.Y == other.Y &&
		s.Orientation == other.Orientation
}

// Round returns a copy with wire precision applied: battery 2dp, temperature
// 1dp, position 2dp, orientation 2dp.
func (s Sample) Round() Sample {
	s.BatteryVoltage = round(s.BatteryVoltage, 2)
	s.Temperature = round(s.Temperature, 1)
	s.X = round(s.X, 2)
	s.Y = round(s.Y, 2)
	s.Orientation = round(s.Orientation, 2)
	return s
}

func round(v float64, places int) float64 {
	f := math.Pow10(places)
	return math.Round(v*f) / f
}

// Row is the time-series representation of a sample for GreptimeDB.
type Row struct {
	AgentID        string    `json:"agent_id"` // TAG
	BatteryVoltage float64   `json:"battery_voltage"`
	Temperature    float64   `json:"temperature"`
	MotorLoad      int       `json:"motor_load"`
	Status         string    `json:"status"`
	CycleCount     int64     `json:"cycle_count"`
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	Orientation    float64   `json:"orientation"`
	Timestamp      time.Time `json:"ts"` // TIME INDEX
}

// TableName holds the table name used when writing to GreptimeDB. It
// defaults to "agent_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "agent_telemetry"
}()

func (Row) TableName() string {
	return TableName
}

// RowFromSample converts an accepted sample into its time-series row.
func RowFromSample(s Sample) Row {
	return Row{
		AgentID:        s.AgentID,
		BatteryVoltage: s.BatteryVoltage,
		Temperature:    s.Temperature,
		MotorLoad:      s.MotorLoad,
		Status:         s.Status,
		CycleCount:     s.CycleCount,
		X:              s.X,
		Y:              s.Y,
		Orientation:    s.Orientation,
		Timestamp:      s.Timestamp,
	}
}

// LastState is the collector's last known view of an agent, returned by the
// lastState endpoint and used by a restarting agent to resume.
type LastState struct {
	AgentID        string    `json:"agent_id"`
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	Orientation    float64   `json:"orientation"`
	BatteryVoltage float64   `json:"battery_voltage"`
	Temperature    float64   `json:"temperature"`
	Status         string    `json:"status"`
	CycleCount     int64     `json:"cycle_count"`
	Timestamp      time.Time `json:"timestamp"`
}

// VersionReport carries an agent's controller component versions.
type VersionReport struct {
	AgentID    string            `json:"agent_id"`
	Components map[string]string `json:"components"`
	ReportedAt time.Time         `json:"reported_at"`
}
