// ABOUTME: Dual-write event creation: authoritative local store plus best-effort mirror
// ABOUTME: Remote failures are logged and counted, never propagated or rolled back
package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
)

// Writer persists schedule events locally and mirrors them to the linked
// calendar when a usable token exists. The local store is authoritative: a
// mirror failure never undoes or blocks the local write.
type Writer struct {
	db       *sql.DB
	guardian *Guardian
	mirror   Mirror
	stats    *MirrorStats
	logger   *slog.Logger
}

func NewWriter(database *sql.DB, guardian *Guardian, mirror Mirror, stats *MirrorStats, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if stats == nil {
		stats = NewMirrorStats()
	}
	return &Writer{
		db:       database,
		guardian: guardian,
		mirror:   mirror,
		stats:    stats,
		logger:   logger,
	}
}

// Stats exposes the mirror counters.
func (w *Writer) Stats() *MirrorStats { return w.stats }

// CreateEvent validates and persists one draft, then mirrors it best-effort.
// Validation runs before the token lookup so an invalid draft never costs a
// refresh round trip.
func (w *Writer) CreateEvent(ctx context.Context, userID uuid.UUID, draft models.EventDraft) (*models.ScheduleEvent, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	return w.createEvent(ctx, userID, draft, nil, w.lookupToken(ctx, userID))
}

// CreateBatch persists each draft independently. The token lookup happens
// once up front; a mirror failure on one item never affects the others. A
// local persistence failure aborts the batch and reports which item failed.
func (w *Writer) CreateBatch(ctx context.Context, userID uuid.UUID, drafts []models.EventDraft, messageID *string) ([]models.ScheduleEvent, error) {
	token := w.lookupToken(ctx, userID)

	events := make([]models.ScheduleEvent, 0, len(drafts))
	for i, draft := range drafts {
		event, err := w.createEvent(ctx, userID, draft, messageID, token)
		if err != nil {
			return events, fmt.Errorf("event %d of %d: %w", i+1, len(drafts), err)
		}
		events = append(events, *event)
	}
	return events, nil
}

func (w *Writer) createEvent(ctx context.Context, userID uuid.UUID, draft models.EventDraft, messageID *string, token string) (*models.ScheduleEvent, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	event := &models.ScheduleEvent{
		UserID:          userID,
		MessageID:       messageID,
		Title:           strings.TrimSpace(draft.Title),
		Description:     draft.Description,
		Start:           draft.Start,
		End:             draft.End,
		AllDay:          draft.AllDay,
		BackgroundColor: draft.BackgroundColor,
		BorderColor:     draft.BorderColor,
		TextColor:       draft.TextColor,
		Category:        draft.Category,
	}

	if err := db.CreateEvent(w.db, event); err != nil {
		return nil, &PersistError{Op: "event", Err: err}
	}

	w.mirrorEvent(ctx, token, event)

	return event, nil
}

// mirrorEvent pushes the persisted event to the remote calendar. All failure
// paths end here: logged, counted, discarded.
func (w *Writer) mirrorEvent(ctx context.Context, token string, event *models.ScheduleEvent) {
	w.stats.recordAttempt()

	if token == "" {
		w.stats.recordSkip()
		return
	}

	if err := w.mirror.CreateEvent(ctx, token, event); err != nil {
		w.stats.recordFailure()
		w.logger.Warn("calendar mirror failed",
			"event_id", event.ID,
			"user_id", event.UserID,
			"error", err)
		return
	}

	w.stats.recordSuccess()
}

// lookupToken resolves a mirror token, treating every guardian failure as
// "don't mirror". Unlinked users are the normal quiet case; terminal token
// errors are worth an operator-visible warning but still never fail the
// local write.
func (w *Writer) lookupToken(ctx context.Context, userID uuid.UUID) string {
	if w.guardian == nil || w.mirror == nil {
		return ""
	}

	token, err := w.guardian.AccessToken(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRefreshExpired) || errors.Is(err, ErrConfiguration) {
			w.logger.Warn("calendar mirror disabled for request",
				"user_id", userID,
				"error", err)
		} else if !errors.Is(err, ErrNotLinked) && !errors.Is(err, ErrNoRefreshToken) {
			w.logger.Warn("token lookup failed",
				"user_id", userID,
				"error", err)
		}
		return ""
	}
	return token
}

func validateDraft(draft models.EventDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if draft.Start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrValidation)
	}
	// End is deliberately not checked against start; point and all-day
	// events carry arbitrary or absent ends.
	return nil
}
