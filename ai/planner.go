// ABOUTME: Natural-language schedule planning interface
// ABOUTME: Turns free text into structured event drafts via a generative model
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/dayflow/models"
)

// Planner turns a free-text scheduling request into event drafts.
type Planner interface {
	PlanEvents(ctx context.Context, text string, now time.Time) ([]models.EventDraft, error)
}

// DisabledPlanner stands in when no model API key is configured. Every call
// fails, which the HTTP layer reports as the assistant being unavailable.
type DisabledPlanner struct{}

func (DisabledPlanner) PlanEvents(context.Context, string, time.Time) ([]models.EventDraft, error) {
	return nil, errors.New("no planner configured, set GEMINI_API_KEY")
}

const promptTemplate = `You are a scheduling assistant. Convert the user's request into calendar events.

Respond with ONLY a JSON array. Each element is an object with these fields:
- "title" (string, required)
- "description" (string, optional)
- "start" (RFC 3339 timestamp, required)
- "end" (RFC 3339 timestamp, optional)
- "all_day" (boolean, optional)
- "category" (string, optional, one word)

The current date and time is %s. Resolve relative dates like "tomorrow" against it.
Return [] if the request contains nothing schedulable. No prose, no code fences.

Request: %s`

// BuildPrompt renders the planning instruction for a request at a given time.
func BuildPrompt(text string, now time.Time) string {
	return fmt.Sprintf(promptTemplate, now.Format(time.RFC3339), text)
}
