// ABOUTME: MCP server subcommand
// ABOUTME: Exposes scheduling tools over stdio for agent integration
package mcpserver

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dayflow/ai"
	"github.com/harperreed/dayflow/sync"
)

// Run starts the MCP server on stdio. All tools act as the given user.
func Run(ctx context.Context, database *sql.DB, writer *sync.Writer, planner ai.Planner, userID uuid.UUID) error {
	handlers := NewScheduleHandlers(database, writer, planner, userID)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dayflow",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_event",
		Description: "Add a single event to the schedule",
	}, handlers.AddEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_events",
		Description: "List schedule events in a time range",
	}, handlers.ListEvents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_schedule",
		Description: "Turn a natural-language description into scheduled events",
	}, handlers.PlanSchedule)

	return server.Run(ctx, &mcp.StdioTransport{})
}
