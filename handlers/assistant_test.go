// ABOUTME: Tests for the AI scheduling endpoint
// ABOUTME: Covers planned-event persistence, unusable model output, and conversation recording
package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dayflow/ai"
	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
)

func TestAssistantCreatesPlannedEvents(t *testing.T) {
	env := setupTestEnv(t)

	tomorrow := time.Now().AddDate(0, 0, 1)
	env.planner.drafts = []models.EventDraft{
		{Title: "Dentist", Start: time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 15, 0, 0, 0, time.UTC)},
		{Title: "Gym", Start: time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 17, 0, 0, 0, time.UTC)},
	}

	w := env.request(t, http.MethodPost, "/api/assistant",
		`{"text": "Dentist at 3pm tomorrow, then gym at 5pm"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message *models.ChatMessage    `json:"message"`
		Reply   *models.ChatMessage    `json:"reply"`
		Events  []models.ScheduleEvent `json:"events"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))

	require.Len(t, body.Events, 2)
	assert.Equal(t, "Dentist", body.Events[0].Title)
	assert.Equal(t, "Gym", body.Events[1].Title)

	require.NotNil(t, body.Message)
	assert.Equal(t, models.RoleUser, body.Message.Role)
	require.NotNil(t, body.Reply)
	assert.Equal(t, models.RoleAssistant, body.Reply.Role)

	// Both events appear in a subsequent listing and carry the originating
	// message.
	events, err := db.ListEvents(env.db, env.user.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, event := range events {
		require.NotNil(t, event.MessageID)
		assert.Equal(t, body.Message.ID, *event.MessageID)
	}
}

func TestAssistantInvalidModelResponse(t *testing.T) {
	env := setupTestEnv(t)
	env.planner.err = ai.ErrInvalidResponse

	w := env.request(t, http.MethodPost, "/api/assistant", `{"text": "plan my week"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// Zero events persisted.
	events, err := db.ListEvents(env.db, env.user.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAssistantEmptyPlan(t *testing.T) {
	env := setupTestEnv(t)
	env.planner.drafts = nil

	w := env.request(t, http.MethodPost, "/api/assistant", `{"text": "how are you?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Events []models.ScheduleEvent `json:"events"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Empty(t, body.Events)
}

func TestAssistantRequiresText(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/assistant", `{"text": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessagesEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/messages", `{"content": "note to self"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var message models.ChatMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&message))
	assert.Equal(t, models.RoleUser, message.Role)
	assert.NotEmpty(t, message.ID)

	w = env.request(t, http.MethodGet, "/api/messages", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "note to self", body.Messages[0].Content)
}

func TestMessagesRequireContent(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/messages", `{"content": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
