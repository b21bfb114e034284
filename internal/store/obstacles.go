package store

import (
	"fmt"

	"robotops-sim/internal/geo"
)

// ListObstacles returns the workspace obstacle set.
func (db *DB) ListObstacles() ([]geo.Obstacle, error) {
	rows, err := db.Query(`
		SELECT id, name, shape, x, y, width, height, radius, buffer_margin
		FROM obstacles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obstacles []geo.Obstacle
	for rows.Next() {
		var o geo.Obstacle
		var shape string
		if err := rows.Scan(&o.ID, &o.Name, &shape, &o.X, &o.Y, &o.Width, &o.Height, &o.Radius, &o.BufferMargin); err != nil {
			return nil, err
		}
		o.Shape = geo.Shape(shape)
		obstacles = append(obstacles, o)
	}
	return obstacles, rows.Err()
}

// ReplaceObstacles swaps the workspace obstacle set in one transaction.
func (db *DB) ReplaceObstacles(obstacles []geo.Obstacle) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM obstacles`); err != nil {
		return fmt.Errorf("clear obstacles: %w", err)
	}
	for _, o := range obstacles {
		_, err := tx.Exec(`
			INSERT INTO obstacles (name, shape, x, y, width, height, radius, buffer_margin)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.Name, string(o.Shape), o.X, o.Y, o.Width, o.Height, o.Radius, o.BufferMargin)
		if err != nil {
			return fmt.Errorf("insert obstacle %q: %w", o.Name, err)
		}
	}
	return tx.Commit()
}
