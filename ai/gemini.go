// ABOUTME: Gemini-backed planner implementation
// ABOUTME: Single completion call, response text cleaned and parsed as drafts
package ai

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/harperreed/dayflow/models"
)

const defaultModel = "gemini-2.0-flash"

// GeminiPlanner plans events with one GenerateContent call per request.
type GeminiPlanner struct {
	client *genai.Client
	model  string
}

func NewGeminiPlanner(ctx context.Context, apiKey, model string) (*GeminiPlanner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured. Set GEMINI_API_KEY environment variable")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiPlanner{client: client, model: model}, nil
}

func (p *GeminiPlanner) PlanEvents(ctx context.Context, text string, now time.Time) ([]models.EventDraft, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(BuildPrompt(text, now)), nil)
	if err != nil {
		return nil, fmt.Errorf("completion call failed: %w", err)
	}

	return ParseDrafts(resp.Text())
}
