package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"robotops-sim/internal/geo"
	"robotops-sim/internal/telemetry"
)

// EnsureAgent inserts the agent row if it does not exist yet.
func (db *DB) EnsureAgent(agentID string) error {
	_, err := db.Exec(`INSERT INTO agents (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, agentID)
	return err
}

// InsertHealth appends a gated health sample.
func (db *DB) InsertHealth(s telemetry.Sample) error {
	_, err := db.Exec(`
		INSERT INTO telemetry_logs (agent_id, ts, battery_voltage, temperature, motor_load, cycle_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.AgentID, formatTime(s.Timestamp), s.BatteryVoltage, s.Temperature, s.MotorLoad, s.CycleCount, s.Status)
	if err != nil {
		return fmt.Errorf("insert health: %w", err)
	}
	return nil
}

// InsertPath appends a path point. Path rows are written on every ingest,
// independent of the health gate.
func (db *DB) InsertPath(s telemetry.Sample) error {
	_, err := db.Exec(`
		INSERT INTO path_logs (agent_id, ts, x, y, orientation)
		VALUES (?, ?, ?, ?, ?)`,
		s.AgentID, formatTime(s.Timestamp), s.X, s.Y, s.Orientation)
	if err != nil {
		return fmt.Errorf("insert path: %w", err)
	}
	return nil
}

// LastHealth returns the most recent persisted health sample for an agent,
// or nil when none exists. The collector primes its persistence gate from
// this on restart.
func (db *DB) LastHealth(agentID string) (*telemetry.Sample, error) {
	row := db.QueryRow(`
		SELECT ts, battery_voltage, temperature, motor_load, cycle_count, status
		FROM telemetry_logs WHERE agent_id = ? ORDER BY ts DESC LIMIT 1`, agentID)

	var ts string
	s := telemetry.Sample{AgentID: agentID}
	err := row.Scan(&ts, &s.BatteryVoltage, &s.Temperature, &s.MotorLoad, &s.CycleCount, &s.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Timestamp = scanTime(ts)
	return &s, nil
}

// LastState joins the latest health and path rows into the agent's last
// known state, or nil when the agent has never reported.
func (db *DB) LastState(agentID string) (*telemetry.LastState, error) {
	health, err := db.LastHealth(agentID)
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(`
		SELECT ts, x, y, orientation
		FROM path_logs WHERE agent_id = ? ORDER BY ts DESC LIMIT 1`, agentID)
	var ts string
	var x, y, orientation float64
	err = row.Scan(&ts, &x, &y, &orientation)
	if errors.Is(err, sql.ErrNoRows) {
		if health == nil {
			return nil, nil
		}
		// Health without path: report the workspace center.
		x, y = geo.CenterX, geo.CenterY
	} else if err != nil {
		return nil, err
	}

	last := &telemetry.LastState{
		AgentID:     agentID,
		X:           x,
		Y:           y,
		Orientation: orientation,
		Timestamp:   scanTime(ts),
	}
	if health != nil {
		last.BatteryVoltage = health.BatteryVoltage
		last.Temperature = health.Temperature
		last.Status = health.Status
		last.CycleCount = health.CycleCount
		if health.Timestamp.After(last.Timestamp) {
			last.Timestamp = health.Timestamp
		}
	}
	return last, nil
}

// AgentInfo summarizes one agent for the agent list endpoint.
type AgentInfo struct {
	ID        string     `json:"id"`
	ModelType string     `json:"model_type"`
	Status    string     `json:"status"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// ListAgents returns all known agents with their latest status.
func (db *DB) ListAgents() ([]AgentInfo, error) {
	rows, err := db.Query(`SELECT id, model_type FROM agents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []AgentInfo
	for rows.Next() {
		var a AgentInfo
		if err := rows.Scan(&a.ID, &a.ModelType); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range agents {
		health, err := db.LastHealth(agents[i].ID)
		if err != nil {
			return nil, err
		}
		if health == nil {
			agents[i].Status = "OFFLINE"
			continue
		}
		agents[i].Status = health.Status
		ts := health.Timestamp
		agents[i].LastSeen = &ts
	}
	return agents, nil
}

// Prune deletes telemetry and path rows older than the cutoff and returns
// the number of rows removed.
func (db *DB) Prune(olderThan time.Time) (int64, error) {
	cutoff := formatTime(olderThan)
	var total int64
	res, err := db.Exec(`DELETE FROM telemetry_logs WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune telemetry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}
	res, err = db.Exec(`DELETE FROM path_logs WHERE ts < ?`, cutoff)
	if err != nil {
		return total, fmt.Errorf("prune path: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}
	return total, nil
}
