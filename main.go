// ABOUTME: Entry point for the scheduling assistant server and MCP tools
// ABOUTME: Routes to serve, mcp, or init based on the first argument
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/harperreed/dayflow/ai"
	"github.com/harperreed/dayflow/config"
	"github.com/harperreed/dayflow/db"
	"github.com/harperreed/dayflow/handlers"
	"github.com/harperreed/dayflow/mcpserver"
	"github.com/harperreed/dayflow/sync"
	"github.com/harperreed/dayflow/web"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dayflow version %s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	command := "serve"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "serve":
		if err := runServe(cfg, logger); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}

	case "mcp":
		// MCP logs go to stderr; stdout is the protocol transport.
		mcpLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(mcpLogger)
		if err := runMCP(cfg, mcpLogger); err != nil {
			slog.Error("mcp server failed", "error", err)
			os.Exit(1)
		}

	case "init":
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		slog.Info("database initialized", "path", cfg.DBPath)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()
	logger.Info("database open", "path", cfg.DBPath)

	oauthConfig := sync.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		logger.Warn("google oauth credentials not set, calendar linking disabled")
	}

	guardian := sync.NewGuardian(database, oauthConfig, logger)
	writer := sync.NewWriter(database, guardian, sync.NewGoogleMirror(), sync.NewMirrorStats(), logger)

	planner, err := buildPlanner(cfg, logger)
	if err != nil {
		return err
	}

	handler := handlers.NewHandler(database, writer, guardian, planner, oauthConfig, cfg.FrontendURL, logger)
	router := web.NewRouter(handler, database, cfg.AllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return web.Serve(ctx, cfg.Port, router, logger)
}

func runMCP(cfg *config.Config, logger *slog.Logger) error {
	email := os.Getenv("DAYFLOW_USER")
	if email == "" {
		return fmt.Errorf("DAYFLOW_USER must be set to the acting user's email")
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	user, err := db.GetUserByEmail(database, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", email)
	}

	oauthConfig := sync.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	guardian := sync.NewGuardian(database, oauthConfig, logger)
	writer := sync.NewWriter(database, guardian, sync.NewGoogleMirror(), sync.NewMirrorStats(), logger)

	planner, err := buildPlanner(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting mcp server", "user_id", user.ID)
	return mcpserver.Run(context.Background(), database, writer, planner, user.ID)
}

func buildPlanner(cfg *config.Config, logger *slog.Logger) (ai.Planner, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, assistant planning disabled")
		return ai.DisabledPlanner{}, nil
	}

	planner, err := ai.NewGeminiPlanner(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize planner: %w", err)
	}
	return planner, nil
}

func printUsage() {
	fmt.Printf(`dayflow v%s - AI scheduling assistant

USAGE:
  dayflow [flags] <command>

FLAGS:
  --version              Show version and exit

COMMANDS:
  serve                  Start the HTTP API server (default)
  mcp                    Start MCP server on stdio (requires DAYFLOW_USER)
  init                   Initialize the database and exit

CONFIGURATION (environment, .env supported):
  PORT                   HTTP listen port (default 8080)
  DB_PATH                Database path (default ~/.local/share/dayflow/dayflow.db)
  FRONTEND_URL           Redirect target after calendar linking
  GOOGLE_CLIENT_ID       OAuth client ID for calendar linking
  GOOGLE_CLIENT_SECRET   OAuth client secret
  OAUTH_REDIRECT_URL     OAuth callback URL
  GEMINI_API_KEY         Gemini API key for the assistant
  GEMINI_MODEL           Gemini model override
  ALLOWED_ORIGINS        Comma-separated CORS origins (default *)
  DAYFLOW_USER           Acting user's email for the mcp command
`, version)
}
