// ABOUTME: Token guardian for the linked calendar account
// ABOUTME: Returns a valid access token, refreshing and persisting rotation when needed
package sync

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
)

// refreshBuffer is the safety margin before expiry; tokens inside the buffer
// are treated as expired.
const refreshBuffer = 60 * time.Second

// Guardian hands out valid access tokens for a user's linked account. Fast
// path reads the stored token; the refresh path exchanges the refresh token
// and persists the rotated credentials. No retries: terminal failures are the
// caller's decision.
type Guardian struct {
	db     *sql.DB
	config *oauth2.Config
	logger *slog.Logger

	// now is a hook for tests.
	now func() time.Time

	// locks serializes refreshes per user so two concurrent requests cannot
	// race the token endpoint for the same account.
	locks stdsync.Map
}

func NewGuardian(database *sql.DB, config *oauth2.Config, logger *slog.Logger) *Guardian {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guardian{
		db:     database,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// AccessToken returns a usable access token for the user's linked calendar
// account, refreshing it first when it is expired or inside the buffer.
//
// Failure modes: ErrNotLinked, ErrNoRefreshToken, ErrRefreshExpired,
// ErrConfiguration, or *RefreshError for anything else the provider reports.
func (g *Guardian) AccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	lock, _ := g.locks.LoadOrStore(userID, &stdsync.Mutex{})
	mutex := lock.(*stdsync.Mutex)
	mutex.Lock()
	defer mutex.Unlock()

	// Re-read under the lock: if another request refreshed while we waited,
	// the fast path below picks up the fresh token.
	account, err := db.GetLinkedAccount(g.db, userID, models.ProviderGoogle)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", ErrNotLinked
	}
	if account.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	now := g.now()
	expiresAt := time.Unix(account.ExpiresAt, 0)
	if account.AccessToken != "" && now.Before(expiresAt.Add(-refreshBuffer)) {
		return account.AccessToken, nil
	}

	return g.refresh(ctx, account, now)
}

func (g *Guardian) refresh(ctx context.Context, account *models.LinkedAccount, now time.Time) (string, error) {
	source := g.config.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})

	token, err := source.Token()
	if err != nil {
		return "", mapRetrieveError(err)
	}

	rotated := ""
	if token.RefreshToken != "" && token.RefreshToken != account.RefreshToken {
		rotated = token.RefreshToken
	}

	expiresAt := token.Expiry.Unix()
	if token.Expiry.IsZero() {
		// Providers that omit expires_in get a conservative hour.
		expiresAt = now.Add(time.Hour).Unix()
	}

	if err := db.UpdateAccountTokens(g.db, account.ID, token.AccessToken, rotated, expiresAt); err != nil {
		return "", err
	}

	g.logger.Info("access token refreshed",
		"user_id", account.UserID,
		"provider", account.Provider,
		"rotated_refresh_token", rotated != "",
		"expires_at", expiresAt)

	return token.AccessToken, nil
}

// mapRetrieveError translates provider token-endpoint failures into the
// guardian's error taxonomy.
func mapRetrieveError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return &RefreshError{Err: err}
	}

	switch retrieveErr.ErrorCode {
	case "invalid_grant":
		return ErrRefreshExpired
	case "invalid_client":
		return ErrConfiguration
	default:
		return &RefreshError{
			Code: retrieveErr.ErrorCode,
			Body: string(retrieveErr.Body),
			Err:  err,
		}
	}
}
