package ai

import (
	"context"
	"fmt"

	"resumechat/internal/config"
	"resumechat/internal/errors"
	"resumechat/internal/observability"
)

// Gateway is a stateless text generation service
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// HealthReporter is implemented by gateways that expose breaker and model state
type HealthReporter interface {
	Stats() map[string]any
	Healthy() bool
	GetModelInfo(ctx context.Context) *ModelInfo
}

// ModelInfo represents information about the configured model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// NewGateway creates the gateway for one operation based on the configured provider
func NewGateway(cfg *config.OperationAIConfig, operation string, logger *errors.Logger, obs *observability.ObservabilityManager) (Gateway, error) {
	logger.Debug("Initializing model gateway",
		"provider", cfg.Provider,
		"operation", operation,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini":
		gateway, err := NewGeminiGateway(cfg, operation, logger, obs)
		if err != nil {
			return nil, err
		}
		return gateway, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}
