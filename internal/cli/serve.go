package cli

import (
	"fmt"

	"resumechat/internal/server"
	"resumechat/internal/session"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for guided resume conversations",
	Long: `Start an HTTP server that drives resume conversations for a UI.

Available endpoints:
- POST /sessions: Start a conversation
- POST /sessions/{id}/basic-info: Submit name, email, phone and portfolio
- POST /sessions/{id}/messages: Send a chat message
- POST /sessions/{id}/confirm, /decline, /edit, /restart: Conversation controls
- GET /sessions/{id}/resume: Review the assembled resume
- GET /sessions/{id}/resume/download: Download it as text, markdown or json
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

Sessions are kept in memory unless session.store is set to redis.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("store", "", "Session store: memory or redis (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Flags are parsed after configuration is loaded, so they are applied here
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetString("port")
	}
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("store") {
		cfg.Session.Store, _ = flags.GetString("store")
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close(cmd.Context())

	store, err := session.NewStore(cfg.Session, logger)
	if err != nil {
		return err
	}

	deps := server.Dependencies{
		Controller:    rt.controller,
		Sessions:      session.NewManager(store, rt.controller, logger),
		AI:            rt.ai,
		Observability: rt.obs,
	}
	return server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), deps, logger).Start(cmd.Context())
}
