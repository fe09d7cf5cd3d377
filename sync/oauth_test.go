package sync

import (
	"strings"
	"testing"
)

func TestOAuthConfigCreation(t *testing.T) {
	config := NewOAuthConfig("id", "secret", "http://localhost:8080/oauth/callback")

	if config == nil {
		t.Fatal("expected config, got nil")
	}

	if len(config.Scopes) != 1 {
		t.Errorf("expected 1 scope, got %d", len(config.Scopes))
	}
	if config.Scopes[0] != "https://www.googleapis.com/auth/calendar.events" {
		t.Errorf("unexpected scope: %s", config.Scopes[0])
	}

	if config.Endpoint.TokenURL == "" {
		t.Error("expected Google token endpoint to be set")
	}
}

func TestRequireOAuthConfigMissingCredentials(t *testing.T) {
	_, err := RequireOAuthConfig("", "", "http://localhost:8080/oauth/callback")
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "GOOGLE_CLIENT_ID") {
		t.Errorf("error should name the missing variables, got: %v", err)
	}

	if _, err := RequireOAuthConfig("id", "secret", "url"); err != nil {
		t.Errorf("expected success with credentials, got: %v", err)
	}
}
