// ABOUTME: Data models for scheduling entities
// ABOUTME: Defines User, Session, LinkedAccount, ScheduleEvent, and ChatMessage structs
package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session maps an opaque bearer token to a user. Issuance lives outside this
// service; the API only validates.
type Session struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LinkedAccount stores one user's OAuth credentials for an external calendar
// provider. At most one row per (user, provider).
type LinkedAccount struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Provider     string    `json:"provider"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    int64     `json:"expires_at"` // epoch seconds
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ScheduleEvent struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	MessageID       *string    `json:"message_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	AllDay          bool       `json:"all_day"`
	BackgroundColor string     `json:"background_color,omitempty"`
	BorderColor     string     `json:"border_color,omitempty"`
	TextColor       string     `json:"text_color,omitempty"`
	Category        string     `json:"category,omitempty"`
	Done            bool       `json:"done"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EventDraft is an unpersisted event, either from a direct API call or one
// element of the AI planner's output.
type EventDraft struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	AllDay          bool       `json:"all_day,omitempty"`
	BackgroundColor string     `json:"background_color,omitempty"`
	BorderColor     string     `json:"border_color,omitempty"`
	TextColor       string     `json:"text_color,omitempty"`
	Category        string     `json:"category,omitempty"`
}

// ChatMessage is one turn in the scheduling conversation. Append-only; IDs
// are ULIDs so history sorts by creation.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Calendar providers.
const (
	ProviderGoogle = "google"
)

// ChatMessage roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
