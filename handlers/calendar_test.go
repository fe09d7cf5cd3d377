// ABOUTME: Tests for calendar link endpoints
// ABOUTME: Covers status reporting, unlink, consent-state handling, and mirror stats
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
	"github.com/harperreed/dayflow/sync"
)

func TestCalendarStatusNotLinked(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/calendar/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, false, body["linked"])
	assert.Equal(t, "not_linked", body["status"])
}

func TestCalendarStatusLinkedFresh(t *testing.T) {
	env := setupTestEnv(t)

	require.NoError(t, db.UpsertLinkedAccount(env.db, &models.LinkedAccount{
		UserID:       env.user.ID,
		Provider:     models.ProviderGoogle,
		AccessToken:  "valid",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}))

	w := env.request(t, http.MethodGet, "/api/calendar/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, true, body["linked"])
	assert.Equal(t, "ok", body["status"])
}

func TestCalendarStatusNeedsReauth(t *testing.T) {
	env := setupTestEnv(t)

	// Linked but without a refresh token: unrecoverable until re-consent.
	require.NoError(t, db.UpsertLinkedAccount(env.db, &models.LinkedAccount{
		UserID:      env.user.ID,
		Provider:    models.ProviderGoogle,
		AccessToken: "expired",
		ExpiresAt:   time.Now().Add(-time.Hour).Unix(),
	}))

	w := env.request(t, http.MethodGet, "/api/calendar/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "needs_reauth", body["status"])
}

func TestCalendarUnlink(t *testing.T) {
	env := setupTestEnv(t)

	require.NoError(t, db.UpsertLinkedAccount(env.db, &models.LinkedAccount{
		UserID:       env.user.ID,
		Provider:     models.ProviderGoogle,
		RefreshToken: "refresh",
	}))

	w := env.request(t, http.MethodPost, "/api/calendar/unlink", "")
	require.Equal(t, http.StatusOK, w.Code)

	account, err := db.GetLinkedAccount(env.db, env.user.ID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestCalendarConnectIssuesStatefulURL(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/calendar/connect", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body["auth_url"], "state=")
	assert.Contains(t, body["auth_url"], "access_type=offline")
}

func TestOAuthCallbackRejectsUnknownState(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/oauth/callback?state=bogus&code=abc", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMirrorStatsEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	// One unlinked create: counted as skipped.
	w := env.request(t, http.MethodPost, "/api/events",
		`{"title": "Solo", "start": "2026-03-15T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Mirror sync.Snapshot `json:"mirror"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.EqualValues(t, 1, body.Mirror.Attempted)
	assert.EqualValues(t, 1, body.Mirror.Skipped)
	assert.EqualValues(t, 0, body.Mirror.Failed)
}

func TestConnectEvictsAbandonedStates(t *testing.T) {
	env := setupTestEnv(t)

	stale := "stale-" + env.token
	fresh := "fresh-" + env.token
	oauthStates.Store(stale, pendingState{userID: env.user.ID, createdAt: time.Now().Add(-2 * stateTTL)})
	oauthStates.Store(fresh, pendingState{userID: env.user.ID, createdAt: time.Now()})

	w := env.request(t, http.MethodGet, "/api/calendar/connect", "")
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := oauthStates.Load(stale)
	assert.False(t, ok, "abandoned state should be evicted")
	_, ok = oauthStates.Load(fresh)
	assert.True(t, ok, "live state should survive the sweep")
}
