// ABOUTME: Calendar link lifecycle HTTP handlers
// ABOUTME: OAuth consent redirect/callback, link status, unlink, and mirror stats
package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	stdsync "sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
	"github.com/harperreed/dayflow/sync"
)

const stateTTL = 10 * time.Minute

type pendingState struct {
	userID    uuid.UUID
	createdAt time.Time
}

// oauthStates maps consent-flow state nonces to the user who started them.
// The callback arrives as a bare browser redirect, so identity rides on the
// state, not the session.
var oauthStates stdsync.Map

// RegisterCalendarRoutes registers calendar link endpoints on an
// authenticated router.
func (h *Handler) RegisterCalendarRoutes(r chi.Router) {
	r.Get("/calendar/status", h.CalendarStatus)
	r.Get("/calendar/connect", h.CalendarConnect)
	r.Post("/calendar/unlink", h.CalendarUnlink)
	r.Get("/stats", h.MirrorStats)
}

// RegisterOAuthCallback registers the provider redirect target. Unlike the
// /api routes it is reached without a session header.
func (h *Handler) RegisterOAuthCallback(r chi.Router) {
	r.Get("/oauth/callback", h.OAuthCallback)
}

// CalendarStatus reports the link state. Terminal token errors surface here
// so the UI can prompt re-authentication; event creation never reports them.
func (h *Handler) CalendarStatus(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	_, err := h.guardian.AccessToken(r.Context(), userID)
	switch {
	case err == nil:
		JSON(w, http.StatusOK, map[string]interface{}{"linked": true, "status": "ok"})
	case errors.Is(err, sync.ErrNotLinked):
		JSON(w, http.StatusOK, map[string]interface{}{"linked": false, "status": "not_linked"})
	case errors.Is(err, sync.ErrNoRefreshToken), errors.Is(err, sync.ErrRefreshExpired):
		JSON(w, http.StatusOK, map[string]interface{}{"linked": true, "status": "needs_reauth"})
	case errors.Is(err, sync.ErrConfiguration):
		h.logger.Error("calendar integration misconfigured", "error", err)
		JSON(w, http.StatusOK, map[string]interface{}{"linked": true, "status": "misconfigured"})
	default:
		h.logger.Warn("calendar status check failed", "user_id", userID, "error", err)
		JSON(w, http.StatusOK, map[string]interface{}{"linked": true, "status": "error"})
	}
}

// sweepExpiredStates drops consent states whose flow was abandoned, so the
// map does not grow with every connect that never reaches the callback.
func sweepExpiredStates(now time.Time) {
	oauthStates.Range(func(key, value interface{}) bool {
		if now.Sub(value.(pendingState).createdAt) > stateTTL {
			oauthStates.Delete(key)
		}
		return true
	})
}

// CalendarConnect hands the client the provider consent URL.
func (h *Handler) CalendarConnect(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	sweepExpiredStates(time.Now())

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		Error(w, http.StatusInternalServerError, "failed to start consent flow")
		return
	}
	state := hex.EncodeToString(buf)
	oauthStates.Store(state, pendingState{userID: userID, createdAt: time.Now()})

	authURL := h.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	JSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// OAuthCallback exchanges the authorization code and stores the credential
// set, completing the link.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		Error(w, http.StatusBadRequest, "missing state or code")
		return
	}

	value, ok := oauthStates.LoadAndDelete(state)
	if !ok {
		Error(w, http.StatusBadRequest, "unknown or replayed state")
		return
	}
	pending := value.(pendingState)
	if time.Since(pending.createdAt) > stateTTL {
		Error(w, http.StatusBadRequest, "consent flow expired, start again")
		return
	}

	user, err := db.GetUser(h.db, pending.userID)
	if err != nil || user == nil {
		Error(w, http.StatusBadRequest, "unknown user for consent flow")
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("code exchange failed", "user_id", user.ID, "error", err)
		Error(w, http.StatusBadGateway, "failed to exchange authorization code")
		return
	}

	account := &models.LinkedAccount{
		UserID:       user.ID,
		Provider:     models.ProviderGoogle,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Unix(),
	}
	if err := db.UpsertLinkedAccount(h.db, account); err != nil {
		h.logger.Error("failed to store linked account", "user_id", user.ID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to store linked account")
		return
	}

	h.logger.Info("calendar linked", "user_id", user.ID, "has_refresh_token", token.RefreshToken != "")

	if h.frontendURL != "" {
		http.Redirect(w, r, h.frontendURL, http.StatusFound)
		return
	}
	_, _ = fmt.Fprint(w, "Calendar connected! You can close this window.")
}

func (h *Handler) CalendarUnlink(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	if err := db.DeleteLinkedAccount(h.db, userID, models.ProviderGoogle); err != nil {
		h.logger.Error("failed to unlink calendar", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to unlink calendar")
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"unlinked": true})
}

// MirrorStats exposes the dual-write counters for operators.
func (h *Handler) MirrorStats(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{"mirror": h.writer.Stats().Snapshot()})
}
