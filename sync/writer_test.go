// ABOUTME: Tests for dual-write event creation
// ABOUTME: Verifies mirror isolation, skip-when-unlinked, and validation failures
package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
)

// recordingMirror captures mirror calls and fails on configured titles.
type recordingMirror struct {
	calls  []string
	failOn map[string]bool
}

func (m *recordingMirror) CreateEvent(_ context.Context, _ string, event *models.ScheduleEvent) error {
	m.calls = append(m.calls, event.Title)
	if m.failOn[event.Title] {
		return fmt.Errorf("provider rejected %q", event.Title)
	}
	return nil
}

func setupWriter(t *testing.T, mirror Mirror) (*Writer, *sql.DB, uuid.UUID) {
	t.Helper()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	user := &models.User{Email: "writer@example.com"}
	require.NoError(t, db.CreateUser(database, user))

	// Guardian pointed at nothing: tests that need a token link an account
	// with a far-future expiry so only the fast path runs.
	guardian := NewGuardian(database, &oauth2.Config{}, nil)
	writer := NewWriter(database, guardian, mirror, NewMirrorStats(), nil)

	return writer, database, user.ID
}

func linkFreshAccount(t *testing.T, database *sql.DB, userID uuid.UUID) {
	t.Helper()

	require.NoError(t, db.UpsertLinkedAccount(database, &models.LinkedAccount{
		UserID:       userID,
		Provider:     models.ProviderGoogle,
		AccessToken:  "valid-token",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}))
}

func draft(title string) models.EventDraft {
	return models.EventDraft{
		Title: title,
		Start: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreateEventValidation(t *testing.T) {
	writer, _, userID := setupWriter(t, &recordingMirror{})

	_, err := writer.CreateEvent(context.Background(), userID, models.EventDraft{Start: time.Now()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = writer.CreateEvent(context.Background(), userID, models.EventDraft{Title: "no start"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = writer.CreateEvent(context.Background(), userID, models.EventDraft{Title: "   ", Start: time.Now()})
	assert.ErrorIs(t, err, ErrValidation, "whitespace-only title is not a title")
}

func TestCreateEventUnlinkedSkipsMirror(t *testing.T) {
	mirror := &recordingMirror{}
	writer, database, userID := setupWriter(t, mirror)

	event, err := writer.CreateEvent(context.Background(), userID, draft("Dentist"))
	require.NoError(t, err)
	require.NotNil(t, event)

	// Local write succeeded, zero remote calls.
	stored, err := db.GetEvent(database, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", stored.Title)
	assert.Empty(t, mirror.calls)

	stats := writer.Stats().Snapshot()
	assert.EqualValues(t, 1, stats.Skipped)
	assert.EqualValues(t, 0, stats.Failed)
}

func TestCreateEventMirrorsWhenLinked(t *testing.T) {
	mirror := &recordingMirror{}
	writer, database, userID := setupWriter(t, mirror)
	linkFreshAccount(t, database, userID)

	event, err := writer.CreateEvent(context.Background(), userID, draft("Gym"))
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, []string{"Gym"}, mirror.calls)

	stats := writer.Stats().Snapshot()
	assert.EqualValues(t, 1, stats.Mirrored)
}

func TestCreateEventMirrorFailureDoesNotSurface(t *testing.T) {
	mirror := &recordingMirror{failOn: map[string]bool{"Doomed": true}}
	writer, database, userID := setupWriter(t, mirror)
	linkFreshAccount(t, database, userID)

	event, err := writer.CreateEvent(context.Background(), userID, draft("Doomed"))
	require.NoError(t, err, "mirror failure must not surface")
	require.NotNil(t, event)

	stored, err := db.GetEvent(database, event.ID)
	require.NoError(t, err)
	require.NotNil(t, stored, "local write is authoritative")

	stats := writer.Stats().Snapshot()
	assert.EqualValues(t, 1, stats.Failed)
}

func TestCreateBatchMirrorFailureIsolatedPerItem(t *testing.T) {
	// Item 3 of 5 fails remotely; all 5 must land locally and in the result.
	mirror := &recordingMirror{failOn: map[string]bool{"Event 3": true}}
	writer, database, userID := setupWriter(t, mirror)
	linkFreshAccount(t, database, userID)

	drafts := make([]models.EventDraft, 5)
	for i := range drafts {
		drafts[i] = draft(fmt.Sprintf("Event %d", i+1))
	}

	events, err := writer.CreateBatch(context.Background(), userID, drafts, nil)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	stored, err := db.ListEvents(database, userID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, stored, 5)

	// Every item was still attempted remotely, including the ones after the
	// failure.
	assert.Len(t, mirror.calls, 5)

	stats := writer.Stats().Snapshot()
	assert.EqualValues(t, 4, stats.Mirrored)
	assert.EqualValues(t, 1, stats.Failed)
}

func TestCreateBatchUnlinkedZeroRemoteCalls(t *testing.T) {
	mirror := &recordingMirror{}
	writer, database, userID := setupWriter(t, mirror)

	events, err := writer.CreateBatch(context.Background(), userID,
		[]models.EventDraft{draft("A"), draft("B")}, nil)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Empty(t, mirror.calls)

	stored, err := db.ListEvents(database, userID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestCreateBatchValidationAbortsItem(t *testing.T) {
	mirror := &recordingMirror{}
	writer, database, userID := setupWriter(t, mirror)

	drafts := []models.EventDraft{draft("Good"), {Title: ""}}
	events, err := writer.CreateBatch(context.Background(), userID, drafts, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, events, 1, "items before the bad draft are already persisted")

	stored, err := db.ListEvents(database, userID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCreateBatchLinksOriginatingMessage(t *testing.T) {
	mirror := &recordingMirror{}
	writer, database, userID := setupWriter(t, mirror)

	message := &models.ChatMessage{UserID: userID, Role: models.RoleUser, Content: "plan my day"}
	require.NoError(t, db.CreateMessage(database, message))

	events, err := writer.CreateBatch(context.Background(), userID,
		[]models.EventDraft{draft("Linked")}, &message.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].MessageID)
	assert.Equal(t, message.ID, *events[0].MessageID)
}

func TestPersistErrorIsFatal(t *testing.T) {
	mirror := &recordingMirror{}
	writer, database, userID := setupWriter(t, mirror)

	// Closing the database forces the local write to fail.
	require.NoError(t, database.Close())

	_, err := writer.CreateEvent(context.Background(), userID, draft("Unpersistable"))
	require.Error(t, err)

	var persistErr *PersistError
	assert.True(t, errors.As(err, &persistErr))
	assert.Empty(t, mirror.calls, "no mirror attempt after a failed local write")
}

func TestCreateEventInvalidDraftSkipsTokenLookup(t *testing.T) {
	guardian, database, endpoint := setupGuardian(t, respondToken("fresh", "", 3600))
	writer := NewWriter(database, guardian, &recordingMirror{}, NewMirrorStats(), nil)

	// An expired account: any token lookup would hit the refresh endpoint.
	account := linkAccount(t, database, &models.LinkedAccount{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
	})

	_, err := writer.CreateEvent(context.Background(), account.UserID, models.EventDraft{Start: time.Now()})
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualValues(t, 0, endpoint.calls.Load(), "invalid draft must not trigger a refresh")
}
