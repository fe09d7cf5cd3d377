// ABOUTME: Linked account database operations
// ABOUTME: Handles OAuth credential storage and token rotation per (user, provider)
package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dayflow/models"
)

// UpsertLinkedAccount creates or replaces the credential row for
// (user, provider). Used by the OAuth consent callback.
func UpsertLinkedAccount(db *sql.DB, account *models.LinkedAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO linked_accounts (id, user_id, provider, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, account.ID.String(), account.UserID.String(), account.Provider,
		account.AccessToken, account.RefreshToken, account.ExpiresAt,
		account.CreatedAt, account.UpdatedAt)

	return err
}

func GetLinkedAccount(db *sql.DB, userID uuid.UUID, provider string) (*models.LinkedAccount, error) {
	account := &models.LinkedAccount{}
	var accessToken, refreshToken sql.NullString

	err := db.QueryRow(`
		SELECT id, user_id, provider, access_token, refresh_token, expires_at, created_at, updated_at
		FROM linked_accounts WHERE user_id = ? AND provider = ?
	`, userID.String(), provider).Scan(
		&account.ID,
		&account.UserID,
		&account.Provider,
		&accessToken,
		&refreshToken,
		&account.ExpiresAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	account.AccessToken = accessToken.String
	account.RefreshToken = refreshToken.String
	return account, nil
}

// UpdateAccountTokens persists a refreshed access token and expiry. An empty
// refreshToken retains the stored one (providers do not always rotate it).
func UpdateAccountTokens(db *sql.DB, id uuid.UUID, accessToken, refreshToken string, expiresAt int64) error {
	if refreshToken != "" {
		_, err := db.Exec(`
			UPDATE linked_accounts
			SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ?
			WHERE id = ?
		`, accessToken, refreshToken, expiresAt, time.Now(), id.String())
		return err
	}

	_, err := db.Exec(`
		UPDATE linked_accounts
		SET access_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ?
	`, accessToken, expiresAt, time.Now(), id.String())
	return err
}

func DeleteLinkedAccount(db *sql.DB, userID uuid.UUID, provider string) error {
	_, err := db.Exec(`
		DELETE FROM linked_accounts WHERE user_id = ? AND provider = ?
	`, userID.String(), provider)
	return err
}
