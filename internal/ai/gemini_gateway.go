package ai

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumechat/internal/config"
	"resumechat/internal/errors"
	"resumechat/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiGateway implements Gateway for Google Gemini
type GeminiGateway struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	operation      string
	systemPrompt   string
	circuitBreaker *GatewayBreaker
	modelBreaker   *ModelBreaker
	obs            *observability.ObservabilityManager
	logger         *errors.Logger
}

var (
	_ Gateway        = (*GeminiGateway)(nil)
	_ HealthReporter = (*GeminiGateway)(nil)
)

// NewGeminiGateway creates a Gemini gateway for a specific operation
func NewGeminiGateway(cfg *config.OperationAIConfig, operation string, logger *errors.Logger, obs *observability.ObservabilityManager) (*GeminiGateway, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: *cfg.Timeout},
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeGatewayFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiGateway{
		client:         client,
		config:         cfg,
		operation:      operation,
		systemPrompt:   SystemPromptFor(operation, &cfg.CustomPrompts),
		circuitBreaker: NewGatewayBreaker(operation, cfg, logger),
		modelBreaker:   NewModelBreaker(operation, cfg, logger),
		obs:            obs,
		logger:         logger,
	}, nil
}

// Generate sends one prompt to the model and returns its trimmed text
func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := g.obs.TrackGatewayCall(ctx, g.operation, func(ctx context.Context) *observability.GatewayCallResult {
		var usage *observability.TokenUsage
		var err error
		text, usage, err = g.generate(ctx, prompt)
		return &observability.GatewayCallResult{TokenUsage: usage, Error: err}
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (g *GeminiGateway) generate(ctx context.Context, prompt string) (string, *observability.TokenUsage, error) {
	tracer := otel.Tracer("resumechat.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.String("ai.operation", g.operation),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
		attribute.Int("input.prompt_length", len(prompt)),
	)

	genaiConfig := &genai.GenerateContentConfig{}
	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}
	if *g.config.UseSystemPrompts && g.systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(g.systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if stderrors.Is(err, context.DeadlineExceeded) {
			return "", nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
				"Model call timed out for "+g.operation, err)
		}
		return "", nil, errors.NewAIError(errors.ErrCodeGatewayFailed,
			"Failed to generate content for "+g.operation, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return "", tokenUsage, errors.NewAIError(errors.ErrCodeGatewayEmpty,
			"Model returned an empty response for "+g.operation, nil)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.length", len(text)),
	)
	return text, tokenUsage, nil
}

// executeWithRetry executes a model call with retry logic and exponential backoff
func (g *GeminiGateway) executeWithRetry(ctx context.Context, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	maxRetries := *g.config.MaxRetries
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying model call",
				"operation", g.operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Model call succeeded after retry",
					"operation", g.operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", g.operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "Model call failed",
		"operation", g.operation,
		"max_retries", maxRetries)

	if maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", g.operation, maxRetries, lastErr)
}

// backoff returns the exponential delay with jitter for a retry attempt, capped at 30 seconds
func backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
	jitterBig, err := rand.Int(rand.Reader, jitterMax)
	if err != nil {
		return min(baseDelay, 30*time.Second)
	}
	return min(baseDelay+time.Duration(jitterBig.Int64()), 30*time.Second)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Timeouts and connection failures
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiGateway) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"operation", g.operation,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"operation", g.operation,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// Stats returns circuit breaker statistics for both breakers
func (g *GeminiGateway) Stats() map[string]any {
	return map[string]any{
		"model":            g.config.Model,
		"ai_operations":    g.circuitBreaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.Healthy(),
	}
}

// Healthy reports whether both breakers are closed
func (g *GeminiGateway) Healthy() bool {
	return g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy()
}

// Close implements Gateway
func (g *GeminiGateway) Close() error {
	// The genai client holds no resources in single-shot usage
	return nil
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *observability.TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &observability.TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
