// Package session keeps the browser's link to the external identity:
// a cookie token maps to the bearer tokens obtained from the API plus
// a cached user snapshot. The store never talks to the network.
package session

import (
	"database/sql"
	"encoding/json"
	"time"

	"arcadia-news/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// Duration is how long sessions last (30 days).
const Duration = 30 * 24 * time.Hour

// Store wraps the session database.
type Store struct {
	conn *sql.DB
}

// NewStore opens the session database and runs migrations.
func NewStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_json TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		last_activity DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Session is one browser login: the API tokens plus the user snapshot
// cached at login time. The snapshot is display-only; authoritative
// user state always comes from the API.
type Session struct {
	Token        string
	AccessToken  string
	RefreshToken string
	User         models.User
	ExpiresAt    time.Time
	LastActivity time.Time
}

// Create stores a new session.
func (s *Store) Create(token, accessToken, refreshToken string, user models.User, expiresAt time.Time) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(
		"INSERT INTO sessions (token, access_token, refresh_token, user_json, expires_at, last_activity) VALUES (?, ?, ?, ?, ?, ?)",
		token, accessToken, refreshToken, string(userJSON), expiresAt, time.Now(),
	)
	return err
}

// Validate returns the session for a cookie token, or an error when it
// is unknown or expired.
func (s *Store) Validate(token string) (*Session, error) {
	row := s.conn.QueryRow(`
		SELECT token, access_token, refresh_token, user_json, expires_at, last_activity
		FROM sessions
		WHERE token = ? AND expires_at > CURRENT_TIMESTAMP
	`, token)

	var sess Session
	var userJSON string
	if err := row.Scan(&sess.Token, &sess.AccessToken, &sess.RefreshToken, &userJSON, &sess.ExpiresAt, &sess.LastActivity); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Renew updates last_activity and extends a session's expiry.
func (s *Store) Renew(token string, newExpiresAt time.Time) error {
	_, err := s.conn.Exec(
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
		time.Now(), newExpiresAt, token,
	)
	return err
}

// Delete removes a session by token.
func (s *Store) Delete(token string) error {
	_, err := s.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpired removes all expired sessions.
func (s *Store) CleanExpired() error {
	_, err := s.conn.Exec("DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	return err
}
