// ABOUTME: Chat message HTTP handlers
// ABOUTME: Implements conversation listing and plain message creation
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
)

// RegisterMessageRoutes registers message endpoints on an authenticated
// router.
func (h *Handler) RegisterMessageRoutes(r chi.Router) {
	r.Get("/messages", h.ListMessages)
	r.Post("/messages", h.CreateMessage)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	messages, err := db.ListMessages(h.db, userID, limit)
	if err != nil {
		h.logger.Error("failed to list messages", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	JSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

type createMessageRequest struct {
	Content string `json:"content"`
}

// CreateMessage appends a user-authored message without invoking the
// planner. The assistant endpoint handles AI turns.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		Error(w, http.StatusBadRequest, "content is required")
		return
	}

	message := &models.ChatMessage{
		UserID:  userID,
		Role:    models.RoleUser,
		Content: req.Content,
	}
	if err := db.CreateMessage(h.db, message); err != nil {
		h.logger.Error("failed to create message", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to create message")
		return
	}

	JSON(w, http.StatusCreated, message)
}
