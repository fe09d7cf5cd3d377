// ABOUTME: Parsing of generative model output into event drafts
// ABOUTME: Strips Markdown code fences and requires a strict JSON array
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/dayflow/models"
)

// ErrInvalidResponse means the model's output could not be parsed as a JSON
// array of event drafts. Nothing is persisted when this is returned.
var ErrInvalidResponse = errors.New("model response is not a JSON array of events")

// StripCodeFence removes a Markdown code-fence wrapper (```json ... ``` or
// ``` ... ```) if the response carries one. Models add them despite
// instructions not to.
func StripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag like "json" on the opening fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || !strings.ContainsAny(first, "[{") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ParseDrafts parses cleaned model output into drafts. Anything other than a
// JSON array (an object, prose, broken JSON) fails with ErrInvalidResponse.
func ParseDrafts(raw string) ([]models.EventDraft, error) {
	cleaned := StripCodeFence(raw)

	var drafts []models.EventDraft
	if err := json.Unmarshal([]byte(cleaned), &drafts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return drafts, nil
}
