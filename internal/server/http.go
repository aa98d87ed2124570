package server

import (
	"time"

	"resumechat/internal/ai"
	"resumechat/internal/config"
	"resumechat/internal/conversation"
	resumechatErrors "resumechat/internal/errors"
	"resumechat/internal/observability"
	"resumechat/internal/resume"
	"resumechat/internal/session"
)

// MessageRequest is the body of a chat message
// EditRequest names the step to go back to, either by number or by section
// ErrorResponse represents an error response
type MessageRequest struct {
	Text string `json:"text"`
}

type EditRequest struct {
	Step    int    `json:"step,omitempty"`
	Section string `json:"section,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// SessionView is the client-facing snapshot of a session
type SessionView struct {
	ID                   string                `json:"id"`
	Step                 int                   `json:"step"`
	Progress             conversation.Progress `json:"progress"`
	NextAction           string                `json:"next_action"`
	AwaitingConfirmation bool                  `json:"awaiting_confirmation"`
	ConfirmPrompt        string                `json:"confirm_prompt,omitempty"`
	Done                 bool                  `json:"done"`
	Policy               string                `json:"policy"`
	BasicInfo            resume.BasicInfo      `json:"basic_info"`
	History              []conversation.Turn   `json:"history"`
}

// EventResponse is returned by every endpoint that advances a session
type EventResponse struct {
	SessionID string `json:"session_id"`
	conversation.Result
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Conversation engine and session lifecycle
	Controller *conversation.Controller
	Sessions   *session.Manager

	// Model gateways; nil when the turn-count policy runs without a model
	AI *ai.Service

	Observability *observability.ObservabilityManager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Download formats
	DefaultFormat    string
	SupportedFormats []string

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *resumechatErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host             string
	Port             string
	Version          string
	APIKeys          []string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxRequestSize   int64
	DefaultFormat    string
	SupportedFormats []string
	RateLimit        *config.RateLimitConfig
}

// Dependencies are the components the handlers drive
type Dependencies struct {
	Controller    *conversation.Controller
	Sessions      *session.Manager
	AI            *ai.Service
	Observability *observability.ObservabilityManager
}

// ServerConfigFrom derives the server settings from application configuration
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		Version:          version,
		APIKeys:          cfg.Server.APIKeys,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
		MaxRequestSize:   cfg.App.MaxRequestSize,
		DefaultFormat:    cfg.App.DefaultFormat,
		SupportedFormats: cfg.App.SupportedFormats,
		RateLimit:        &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *resumechatErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	defaultFormat := cfg.DefaultFormat
	if defaultFormat == "" {
		defaultFormat = "text"
	}

	return &Server{
		Host:             cfg.Host,
		Port:             cfg.Port,
		Version:          cfg.Version,
		AppConfig:        appCfg,
		Controller:       deps.Controller,
		Sessions:         deps.Sessions,
		AI:               deps.AI,
		Observability:    deps.Observability,
		APIKeys:          apiKeyMap,
		ReadTimeout:      cfg.ReadTimeout,
		WriteTimeout:     cfg.WriteTimeout,
		IdleTimeout:      cfg.IdleTimeout,
		MaxRequestSize:   cfg.MaxRequestSize,
		DefaultFormat:    defaultFormat,
		SupportedFormats: cfg.SupportedFormats,
		RateLimit:        cfg.RateLimit,
		RateLimiter:      rateLimiter,
		Logger:           logger,
	}
}

func newSessionView(s *conversation.Session) SessionView {
	view := SessionView{
		ID:                   s.ID,
		Step:                 s.Step,
		Progress:             s.Progress(),
		NextAction:           s.Context.NextAction,
		AwaitingConfirmation: s.AwaitingConfirm,
		Done:                 s.Done(),
		Policy:               s.Policy,
		BasicInfo:            s.Data.BasicInfo,
		History:              s.History,
	}
	if s.AwaitingConfirm {
		view.ConfirmPrompt = conversation.ConfirmPrompt
	}
	if view.History == nil {
		view.History = []conversation.Turn{}
	}
	return view
}
