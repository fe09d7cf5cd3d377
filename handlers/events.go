// ABOUTME: Schedule event HTTP handlers
// ABOUTME: Implements event listing, creation via dual-write, and edits
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
	"github.com/harperreed/dayflow/sync"
)

// RegisterEventRoutes registers event endpoints on an authenticated router.
func (h *Handler) RegisterEventRoutes(r chi.Router) {
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Patch("/events/{id}", h.UpdateEvent)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid 'from' timestamp")
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid 'to' timestamp")
			return
		}
		to = parsed
	}

	events, err := db.ListEvents(h.db, userID, from, to)
	if err != nil {
		h.logger.Error("failed to list events", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []models.ScheduleEvent{}
	}

	JSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var draft models.EventDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.writer.CreateEvent(r.Context(), userID, draft)
	if err != nil {
		if errors.Is(err, sync.ErrValidation) {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create event", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	JSON(w, http.StatusCreated, event)
}

// eventPatch uses pointers so absent fields are left alone.
type eventPatch struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Start           *time.Time `json:"start"`
	End             *time.Time `json:"end"`
	AllDay          *bool      `json:"all_day"`
	BackgroundColor *string    `json:"background_color"`
	BorderColor     *string    `json:"border_color"`
	TextColor       *string    `json:"text_color"`
	Category        *string    `json:"category"`
	Done            *bool      `json:"done"`
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := db.GetEvent(h.db, id)
	if err != nil {
		h.logger.Error("failed to load event", "event_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	// Not-owned looks identical to not-found.
	if event == nil || event.UserID != userID {
		Error(w, http.StatusNotFound, "event not found")
		return
	}

	var patch eventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Start != nil {
		event.Start = *patch.Start
	}
	if patch.End != nil {
		event.End = patch.End
	}
	if patch.AllDay != nil {
		event.AllDay = *patch.AllDay
	}
	if patch.BackgroundColor != nil {
		event.BackgroundColor = *patch.BackgroundColor
	}
	if patch.BorderColor != nil {
		event.BorderColor = *patch.BorderColor
	}
	if patch.TextColor != nil {
		event.TextColor = *patch.TextColor
	}
	if patch.Category != nil {
		event.Category = *patch.Category
	}
	if patch.Done != nil {
		event.Done = *patch.Done
	}

	if event.Title == "" || event.Start.IsZero() {
		Error(w, http.StatusBadRequest, "title and start are required")
		return
	}

	if err := db.UpdateEvent(h.db, event); err != nil {
		h.logger.Error("failed to update event", "event_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	JSON(w, http.StatusOK, event)
}
