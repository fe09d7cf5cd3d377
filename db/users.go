// ABOUTME: User and session database operations
// ABOUTME: Handles user lookup/creation and bearer session validation
package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dayflow/models"
)

func CreateUser(db *sql.DB, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO users (id, email, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID.String(), user.Email, user.DisplayName, user.CreatedAt, user.UpdatedAt)

	return err
}

func GetUser(db *sql.DB, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	var displayName sql.NullString

	err := db.QueryRow(`
		SELECT id, email, display_name, created_at, updated_at
		FROM users WHERE id = ?
	`, id.String()).Scan(
		&user.ID,
		&user.Email,
		&displayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.DisplayName = displayName.String
	return user, nil
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	user := &models.User{}
	var displayName sql.NullString

	err := db.QueryRow(`
		SELECT id, email, display_name, created_at, updated_at
		FROM users WHERE email = ?
	`, email).Scan(
		&user.ID,
		&user.Email,
		&displayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.DisplayName = displayName.String
	return user, nil
}

func CreateSession(db *sql.DB, session *models.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, session.Token, session.UserID.String(), session.CreatedAt, session.ExpiresAt)

	return err
}

// GetSession returns the session for a token, or nil if the token is unknown
// or expired.
func GetSession(db *sql.DB, token string) (*models.Session, error) {
	session := &models.Session{}

	err := db.QueryRow(`
		SELECT token, user_id, created_at, expires_at
		FROM sessions WHERE token = ?
	`, token).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, nil
	}

	return session, nil
}

func DeleteSession(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}
