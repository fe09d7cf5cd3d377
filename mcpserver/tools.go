// ABOUTME: Schedule MCP tool handlers
// ABOUTME: Implements add_event, list_events, and plan_schedule tools
package mcpserver

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dayflow/ai"
	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/models"
	"github.com/harperreed/dayflow/sync"
)

type ScheduleHandlers struct {
	db      *sql.DB
	writer  *sync.Writer
	planner ai.Planner
	userID  uuid.UUID
}

func NewScheduleHandlers(database *sql.DB, writer *sync.Writer, planner ai.Planner, userID uuid.UUID) *ScheduleHandlers {
	return &ScheduleHandlers{db: database, writer: writer, planner: planner, userID: userID}
}

type AddEventInput struct {
	Title       string `json:"title" jsonschema:"Event title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Event description"`
	Start       string `json:"start" jsonschema:"Start time, RFC3339 (required)"`
	End         string `json:"end,omitempty" jsonschema:"End time, RFC3339"`
	AllDay      bool   `json:"all_day,omitempty" jsonschema:"All-day event"`
	Category    string `json:"category,omitempty" jsonschema:"Event category"`
}

type EventOutput struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Start       string  `json:"start"`
	End         *string `json:"end,omitempty"`
	AllDay      bool    `json:"all_day"`
	Category    string  `json:"category,omitempty"`
	Done        bool    `json:"done"`
	CreatedAt   string  `json:"created_at"`
}

func (h *ScheduleHandlers) AddEvent(ctx context.Context, request *mcp.CallToolRequest, input AddEventInput) (*mcp.CallToolResult, EventOutput, error) {
	draft, err := draftFromInput(input)
	if err != nil {
		return nil, EventOutput{}, err
	}

	event, err := h.writer.CreateEvent(ctx, h.userID, draft)
	if err != nil {
		return nil, EventOutput{}, fmt.Errorf("failed to create event: %w", err)
	}

	return nil, eventToOutput(event), nil
}

type ListEventsInput struct {
	From string `json:"from" jsonschema:"Range start, RFC3339 (required)"`
	To   string `json:"to" jsonschema:"Range end, RFC3339, exclusive (required)"`
}

type ListEventsOutput struct {
	Events []EventOutput `json:"events"`
}

func (h *ScheduleHandlers) ListEvents(_ context.Context, request *mcp.CallToolRequest, input ListEventsInput) (*mcp.CallToolResult, ListEventsOutput, error) {
	from, err := time.Parse(time.RFC3339, input.From)
	if err != nil {
		return nil, ListEventsOutput{}, fmt.Errorf("invalid from time: %w", err)
	}
	to, err := time.Parse(time.RFC3339, input.To)
	if err != nil {
		return nil, ListEventsOutput{}, fmt.Errorf("invalid to time: %w", err)
	}

	events, err := db.ListEvents(h.db, h.userID, from, to)
	if err != nil {
		return nil, ListEventsOutput{}, fmt.Errorf("failed to list events: %w", err)
	}

	out := ListEventsOutput{Events: make([]EventOutput, 0, len(events))}
	for i := range events {
		out.Events = append(out.Events, eventToOutput(&events[i]))
	}
	return nil, out, nil
}

type PlanScheduleInput struct {
	Text string `json:"text" jsonschema:"Natural-language description of events to schedule (required)"`
}

type PlanScheduleOutput struct {
	Events []EventOutput `json:"events"`
}

// PlanSchedule runs the planner over free-form text, records the exchange in
// chat history, and persists every planned event.
func (h *ScheduleHandlers) PlanSchedule(ctx context.Context, request *mcp.CallToolRequest, input PlanScheduleInput) (*mcp.CallToolResult, PlanScheduleOutput, error) {
	if input.Text == "" {
		return nil, PlanScheduleOutput{}, fmt.Errorf("text is required")
	}

	message := &models.ChatMessage{UserID: h.userID, Role: models.RoleUser, Content: input.Text}
	if err := db.CreateMessage(h.db, message); err != nil {
		return nil, PlanScheduleOutput{}, fmt.Errorf("failed to record message: %w", err)
	}

	drafts, err := h.planner.PlanEvents(ctx, input.Text, time.Now())
	if err != nil {
		return nil, PlanScheduleOutput{}, fmt.Errorf("planner failed: %w", err)
	}

	events, err := h.writer.CreateBatch(ctx, h.userID, drafts, &message.ID)
	if err != nil {
		return nil, PlanScheduleOutput{}, fmt.Errorf("failed to persist planned events: %w", err)
	}

	out := PlanScheduleOutput{Events: make([]EventOutput, 0, len(events))}
	for i := range events {
		out.Events = append(out.Events, eventToOutput(&events[i]))
	}
	return nil, out, nil
}

func draftFromInput(input AddEventInput) (models.EventDraft, error) {
	if input.Title == "" {
		return models.EventDraft{}, fmt.Errorf("title is required")
	}

	start, err := time.Parse(time.RFC3339, input.Start)
	if err != nil {
		return models.EventDraft{}, fmt.Errorf("invalid start time: %w", err)
	}

	draft := models.EventDraft{
		Title:       input.Title,
		Description: input.Description,
		Start:       start,
		AllDay:      input.AllDay,
		Category:    input.Category,
	}

	if input.End != "" {
		end, err := time.Parse(time.RFC3339, input.End)
		if err != nil {
			return models.EventDraft{}, fmt.Errorf("invalid end time: %w", err)
		}
		draft.End = &end
	}

	return draft, nil
}

func eventToOutput(event *models.ScheduleEvent) EventOutput {
	out := EventOutput{
		ID:          event.ID.String(),
		Title:       event.Title,
		Description: event.Description,
		Start:       event.Start.Format(time.RFC3339),
		AllDay:      event.AllDay,
		Category:    event.Category,
		Done:        event.Done,
		CreatedAt:   event.CreatedAt.Format(time.RFC3339),
	}
	if event.End != nil {
		end := event.End.Format(time.RFC3339)
		out.End = &end
	}
	return out
}
