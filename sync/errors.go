// ABOUTME: Error taxonomy for token refresh and event persistence
// ABOUTME: Sentinel errors plus wrapping types carrying provider/store detail
package sync

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLinked means the user has no linked calendar account.
	ErrNotLinked = errors.New("calendar account not linked")

	// ErrNoRefreshToken means the linked account has no refresh token and
	// cannot be refreshed.
	ErrNoRefreshToken = errors.New("linked account has no refresh token")

	// ErrRefreshExpired means the provider rejected the refresh token
	// (invalid_grant). Terminal: the user must re-authenticate. Do not retry.
	ErrRefreshExpired = errors.New("refresh token expired or revoked")

	// ErrConfiguration means the provider rejected our client credentials
	// (invalid_client). Terminal and not user-fixable.
	ErrConfiguration = errors.New("oauth client credentials rejected")

	// ErrValidation means an event draft is missing required fields.
	ErrValidation = errors.New("invalid event draft")
)

// RefreshError wraps a provider token-endpoint failure that is neither
// invalid_grant nor invalid_client.
type RefreshError struct {
	Code string // provider error code, if any
	Body string // raw provider payload
	Err  error
}

func (e *RefreshError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("token refresh failed (%s): %s", e.Code, e.Body)
	}
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// PersistError wraps a local store failure during event creation. Fatal to
// that event; the local store is authoritative.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
