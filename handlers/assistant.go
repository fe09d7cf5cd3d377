// ABOUTME: Free-text scheduling endpoint backed by the AI planner
// ABOUTME: Persists the conversation turn and batch-creates the planned events
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harperreed/dayflow/ai"
	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
)

// RegisterAssistantRoutes registers the AI scheduling endpoint on an
// authenticated router.
func (h *Handler) RegisterAssistantRoutes(r chi.Router) {
	r.Post("/assistant", h.Assistant)
}

type assistantRequest struct {
	Text string `json:"text"`
}

type assistantResponse struct {
	Message *models.ChatMessage    `json:"message"`
	Reply   *models.ChatMessage    `json:"reply"`
	Events  []models.ScheduleEvent `json:"events"`
}

// Assistant turns free text into schedule events. The user's message is
// recorded before the model call; planning failures leave the conversation
// intact but persist zero events.
func (h *Handler) Assistant(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		Error(w, http.StatusBadRequest, "text is required")
		return
	}

	userMessage := &models.ChatMessage{
		UserID:  userID,
		Role:    models.RoleUser,
		Content: req.Text,
	}
	if err := db.CreateMessage(h.db, userMessage); err != nil {
		h.logger.Error("failed to record user message", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to record message")
		return
	}

	drafts, err := h.planner.PlanEvents(r.Context(), req.Text, time.Now())
	if err != nil {
		if errors.Is(err, ai.ErrInvalidResponse) {
			h.logger.Warn("unusable planner response", "user_id", userID, "error", err)
			Error(w, http.StatusBadGateway, "assistant returned an unusable response")
			return
		}
		h.logger.Error("planner call failed", "user_id", userID, "error", err)
		Error(w, http.StatusBadGateway, "assistant is unavailable")
		return
	}

	events, err := h.writer.CreateBatch(r.Context(), userID, drafts, &userMessage.ID)
	if err != nil {
		h.logger.Error("failed to persist planned events",
			"user_id", userID,
			"persisted", len(events),
			"planned", len(drafts),
			"error", err)
		Error(w, http.StatusInternalServerError, "failed to save planned events")
		return
	}

	reply := &models.ChatMessage{
		UserID:  userID,
		Role:    models.RoleAssistant,
		Content: replyText(events),
	}
	if err := db.CreateMessage(h.db, reply); err != nil {
		// The events exist either way; the missing reply is worth a log, not
		// a failure.
		h.logger.Error("failed to record assistant reply", "user_id", userID, "error", err)
		reply = nil
	}

	JSON(w, http.StatusOK, assistantResponse{
		Message: userMessage,
		Reply:   reply,
		Events:  events,
	})
}

func replyText(events []models.ScheduleEvent) string {
	switch len(events) {
	case 0:
		return "I didn't find anything schedulable in that. Try including a time, like \"dentist at 3pm tomorrow\"."
	case 1:
		return fmt.Sprintf("Added %q to your schedule.", events[0].Title)
	default:
		titles := make([]string, len(events))
		for i, event := range events {
			titles[i] = fmt.Sprintf("%q", event.Title)
		}
		return fmt.Sprintf("Added %d events: %s.", len(events), strings.Join(titles, ", "))
	}
}
