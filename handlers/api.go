// ABOUTME: HTTP handler plumbing shared by all API endpoints
// ABOUTME: JSON response helpers and the handler dependency bundle
package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/harperreed/dayflow/ai"
	"github.com/harperreed/dayflow/sync"
)

// Handler carries shared dependencies for the API endpoints.
type Handler struct {
	db          *sql.DB
	writer      *sync.Writer
	guardian    *sync.Guardian
	planner     ai.Planner
	oauth       *oauth2.Config
	frontendURL string
	logger      *slog.Logger
}

func NewHandler(database *sql.DB, writer *sync.Writer, guardian *sync.Guardian, planner ai.Planner, oauth *oauth2.Config, frontendURL string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		db:          database,
		writer:      writer,
		guardian:    guardian,
		planner:     planner,
		oauth:       oauth,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already on the wire; an encode failure can only be
	// logged, not reported to the client.
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
