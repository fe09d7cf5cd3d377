// ABOUTME: Schedule event database operations
// ABOUTME: Handles event creation, listing, and edit/completion updates
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dayflow/models"
)

func CreateEvent(db *sql.DB, event *models.ScheduleEvent) error {
	event.ID = uuid.New()
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO events (id, user_id, message_id, title, description, start_at, end_at, all_day,
			background_color, border_color, text_color, category, done, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID.String(), event.UserID.String(), event.MessageID, event.Title, event.Description,
		event.Start, event.End, event.AllDay,
		event.BackgroundColor, event.BorderColor, event.TextColor, event.Category, event.Done,
		event.CreatedAt, event.UpdatedAt)

	return err
}

func GetEvent(db *sql.DB, id uuid.UUID) (*models.ScheduleEvent, error) {
	row := db.QueryRow(`
		SELECT id, user_id, message_id, title, description, start_at, end_at, all_day,
			background_color, border_color, text_color, category, done, created_at, updated_at
		FROM events WHERE id = ?
	`, id.String())

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents returns a user's events ordered by start time. from/to bound the
// start time when non-zero.
func ListEvents(db *sql.DB, userID uuid.UUID, from, to time.Time) ([]models.ScheduleEvent, error) {
	query := `
		SELECT id, user_id, message_id, title, description, start_at, end_at, all_day,
			background_color, border_color, text_color, category, done, created_at, updated_at
		FROM events WHERE user_id = ?`
	args := []interface{}{userID.String()}

	if !from.IsZero() {
		query += ` AND start_at >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND start_at < ?`
		args = append(args, to)
	}
	query += ` ORDER BY start_at ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.ScheduleEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// ListEventsByMessage returns the events a chat message produced.
func ListEventsByMessage(db *sql.DB, messageID string) ([]models.ScheduleEvent, error) {
	rows, err := db.Query(`
		SELECT id, user_id, message_id, title, description, start_at, end_at, all_day,
			background_color, border_color, text_color, category, done, created_at, updated_at
		FROM events WHERE message_id = ? ORDER BY start_at ASC
	`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.ScheduleEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func UpdateEvent(db *sql.DB, event *models.ScheduleEvent) error {
	event.UpdatedAt = time.Now()

	result, err := db.Exec(`
		UPDATE events
		SET title = ?, description = ?, start_at = ?, end_at = ?, all_day = ?,
			background_color = ?, border_color = ?, text_color = ?, category = ?, done = ?, updated_at = ?
		WHERE id = ?
	`, event.Title, event.Description, event.Start, event.End, event.AllDay,
		event.BackgroundColor, event.BorderColor, event.TextColor, event.Category, event.Done,
		event.UpdatedAt, event.ID.String())
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event not found: %s", event.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.ScheduleEvent, error) {
	event := &models.ScheduleEvent{}
	var messageID, description, bgColor, borderColor, textColor, category sql.NullString
	var endAt sql.NullTime

	err := row.Scan(
		&event.ID,
		&event.UserID,
		&messageID,
		&event.Title,
		&description,
		&event.Start,
		&endAt,
		&event.AllDay,
		&bgColor,
		&borderColor,
		&textColor,
		&category,
		&event.Done,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if messageID.Valid {
		event.MessageID = &messageID.String
	}
	event.Description = description.String
	if endAt.Valid {
		event.End = &endAt.Time
	}
	event.BackgroundColor = bgColor.String
	event.BorderColor = borderColor.String
	event.TextColor = textColor.String
	event.Category = category.String

	return event, nil
}
