package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertVersion records a reported component version. History rows are
// appended only when the version actually changed; the first report for a
// component records no history.
func (db *DB) UpsertVersion(agentID, component, version string, reportedAt time.Time) (changed bool, err error) {
	var current string
	err = db.QueryRow(`
		SELECT current_version FROM software_versions
		WHERE agent_id = ? AND component = ?`, agentID, component).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.Exec(`
			INSERT INTO software_versions (agent_id, component, current_version, reported_at)
			VALUES (?, ?, ?, ?)`, agentID, component, version, formatTime(reportedAt))
		return false, err
	case err != nil:
		return false, err
	}

	if current == version {
		_, err = db.Exec(`
			UPDATE software_versions SET reported_at = ?
			WHERE agent_id = ? AND component = ?`, formatTime(reportedAt), agentID, component)
		return false, err
	}

	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`
		UPDATE software_versions SET current_version = ?, reported_at = ?
		WHERE agent_id = ? AND component = ?`, version, formatTime(reportedAt), agentID, component); err != nil {
		return false, fmt.Errorf("update version: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO version_history (agent_id, component, old_version, new_version, changed_at)
		VALUES (?, ?, ?, ?, ?)`, agentID, component, current, version, formatTime(reportedAt)); err != nil {
		return false, fmt.Errorf("record history: %w", err)
	}
	return true, tx.Commit()
}

// Versions returns the current component versions for an agent.
func (db *DB) Versions(agentID string) (map[string]string, error) {
	rows, err := db.Query(`
		SELECT component, current_version FROM software_versions
		WHERE agent_id = ? ORDER BY component`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make(map[string]string)
	for rows.Next() {
		var component, version string
		if err := rows.Scan(&component, &version); err != nil {
			return nil, err
		}
		versions[component] = version
	}
	return versions, rows.Err()
}

// VersionChange is one recorded component version transition.
type VersionChange struct {
	Component  string    `json:"component"`
	OldVersion string    `json:"old_version"`
	NewVersion string    `json:"new_version"`
	ChangedAt  time.Time `json:"changed_at"`
}

// VersionHistory returns the most recent version transitions for an agent.
func (db *DB) VersionHistory(agentID string, limit int) ([]VersionChange, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`
		SELECT component, old_version, new_version, changed_at
		FROM version_history WHERE agent_id = ?
		ORDER BY changed_at DESC LIMIT ?`, agentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []VersionChange
	for rows.Next() {
		var c VersionChange
		var ts string
		if err := rows.Scan(&c.Component, &c.OldVersion, &c.NewVersion, &ts); err != nil {
			return nil, err
		}
		c.ChangedAt = scanTime(ts)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
