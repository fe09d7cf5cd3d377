// ABOUTME: Chat message database operations
// ABOUTME: Handles append-only conversation history with ULID ids
package db

import (
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/dayflow/models"
)

// Shared monotonic entropy so messages created within the same millisecond
// still sort in creation order.
var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func newMessageID(now time.Time) string {
	ulidMu.Lock()
	defer ulidMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), ulidEntropy).String()
}

// CreateMessage appends a conversation turn. IDs are ULIDs so history sorts
// lexicographically by creation time.
func CreateMessage(db *sql.DB, message *models.ChatMessage) error {
	now := time.Now()
	if message.ID == "" {
		message.ID = newMessageID(now)
	}
	message.CreatedAt = now

	_, err := db.Exec(`
		INSERT INTO messages (id, user_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, message.ID, message.UserID.String(), message.Role, message.Content, message.CreatedAt)

	return err
}

func GetMessage(db *sql.DB, id string) (*models.ChatMessage, error) {
	message := &models.ChatMessage{}

	err := db.QueryRow(`
		SELECT id, user_id, role, content, created_at
		FROM messages WHERE id = ?
	`, id).Scan(
		&message.ID,
		&message.UserID,
		&message.Role,
		&message.Content,
		&message.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages returns a user's conversation oldest first.
func ListMessages(db *sql.DB, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.Query(`
		SELECT id, user_id, role, content, created_at
		FROM messages WHERE user_id = ?
		ORDER BY id ASC LIMIT ?
	`, userID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var message models.ChatMessage
		err := rows.Scan(
			&message.ID,
			&message.UserID,
			&message.Role,
			&message.Content,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
