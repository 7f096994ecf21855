package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/taskdeck/taskdeck/client"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/handlers"
	"github.com/taskdeck/taskdeck/internal/notify"
	"github.com/taskdeck/taskdeck/internal/session"
)

const serverVersion = "0.1.0"

// taskdeck-mcp exposes the task operations as MCP tools over stdio, backed
// by the same SDK and persisted session the CLI uses.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	cfg.Init()

	guard := session.NewGuard(session.NewFileStore(cfg.TokenPath))
	api := client.New(cfg.ServiceURL,
		client.WithTokenSource(guard.TokenSource()),
		client.WithTimeout(cfg.RequestTimeout),
	)

	s := server.NewMCPServer(
		"taskdeck-mcp",
		serverVersion,
		server.WithToolCapabilities(true),
	)

	if err := handlers.NewTaskHandler(api, notify.NewBus()).RegisterTools(s); err != nil {
		log.Error().Err(err).Msg("failed to register task tools")
		os.Exit(1)
	}

	log.Info().Str("service_url", cfg.ServiceURL).Msg("starting taskdeck MCP server (stdio transport)")
	if err := server.ServeStdio(s); err != nil {
		log.Error().Err(err).Msg("MCP server exited with error")
		os.Exit(1)
	}
}
