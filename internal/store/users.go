package store

import (
	"database/sql"
	"errors"
)

// UpsertUser creates or updates a user with the given bcrypt hash.
func (db *DB) UpsertUser(username, passwordHash string) error {
	_, err := db.Exec(`
		INSERT INTO users (username, password_hash) VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash`,
		username, passwordHash)
	return err
}

// UserHash returns the stored bcrypt hash for a username, or "" when the
// user does not exist.
func (db *DB) UserHash(username string) (string, error) {
	var hash string
	err := db.QueryRow(`SELECT password_hash FROM users WHERE username = ?`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}
