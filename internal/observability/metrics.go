package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Metrics holds all custom metrics for resumechat
type Metrics struct {
	// Model gateway metrics
	GatewayDuration metric.Float64Histogram
	GatewayRequests metric.Int64Counter
	GatewayErrors   metric.Int64Counter
	GatewayTokens   metric.Int64Histogram

	// Conversation metrics
	Turns            metric.Int64Counter
	TopicCompletions metric.Int64Counter
	StepTransitions  metric.Int64Counter
	ResumesRendered  metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// TokenUsage represents token usage information from a model call
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// GatewayCallResult represents the result of a gateway call
type GatewayCallResult struct {
	TokenUsage *TokenUsage
	Error      error
}

// initCustomMetrics creates resumechat metrics on the manager's meter provider
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter("resumechat")
	om.metrics = &Metrics{}

	if err := om.createGatewayMetrics(meter); err != nil {
		return err
	}
	if err := om.createConversationMetrics(meter); err != nil {
		return err
	}

	var err error
	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"resumechat_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits counter: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createGatewayMetrics(meter metric.Meter) error {
	var err error

	om.metrics.GatewayDuration, err = meter.Float64Histogram(
		"resumechat_gateway_duration_seconds",
		metric.WithDescription("Time spent waiting on the language model"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gateway duration histogram: %w", err)
	}

	om.metrics.GatewayRequests, err = meter.Int64Counter(
		"resumechat_gateway_requests_total",
		metric.WithDescription("Total number of language model requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gateway request counter: %w", err)
	}

	om.metrics.GatewayErrors, err = meter.Int64Counter(
		"resumechat_gateway_errors_total",
		metric.WithDescription("Total number of failed language model requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gateway error counter: %w", err)
	}

	om.metrics.GatewayTokens, err = meter.Int64Histogram(
		"resumechat_gateway_tokens",
		metric.WithDescription("Token usage per language model request (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gateway token histogram: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createConversationMetrics(meter metric.Meter) error {
	var err error

	om.metrics.Turns, err = meter.Int64Counter(
		"resumechat_turns_total",
		metric.WithDescription("Total number of processed chat turns"),
	)
	if err != nil {
		return fmt.Errorf("failed to create turn counter: %w", err)
	}

	om.metrics.TopicCompletions, err = meter.Int64Counter(
		"resumechat_topic_completions_total",
		metric.WithDescription("Total number of topics judged complete"),
	)
	if err != nil {
		return fmt.Errorf("failed to create topic completion counter: %w", err)
	}

	om.metrics.StepTransitions, err = meter.Int64Counter(
		"resumechat_step_transitions_total",
		metric.WithDescription("Total number of step transitions"),
	)
	if err != nil {
		return fmt.Errorf("failed to create step transition counter: %w", err)
	}

	om.metrics.ResumesRendered, err = meter.Int64Counter(
		"resumechat_resumes_rendered_total",
		metric.WithDescription("Total number of rendered resume documents"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resume render counter: %w", err)
	}

	return nil
}

// GetMetrics returns the custom metrics instance, nil when telemetry is off
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil {
		return nil
	}
	return om.metrics
}

// TrackGatewayCall instruments a gateway call with tracing, metrics, and token usage
func (om *ObservabilityManager) TrackGatewayCall(ctx context.Context, operation string, fn func(context.Context) *GatewayCallResult) error {
	m := om.GetMetrics()
	if m == nil {
		return resultError(fn(ctx))
	}

	ctx, span := om.Tracer("resumechat.gateway").Start(ctx, "gateway."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()
	err := resultError(result)

	if om.gatewayMetricsEnabled() {
		om.recordGatewayMetrics(ctx, operation, err, duration, result, span)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	return err
}

func resultError(result *GatewayCallResult) error {
	if result == nil {
		return nil
	}
	return result.Error
}

func (om *ObservabilityManager) gatewayMetricsEnabled() bool {
	if om.fullConfig == nil {
		return true
	}
	return om.fullConfig.Observability.CustomMetrics.Gateway.Enabled
}

func (om *ObservabilityManager) recordGatewayMetrics(ctx context.Context, operation string, err error, duration float64, result *GatewayCallResult, span oteltrace.Span) {
	m := om.metrics
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.Gateway.TrackDuration {
		m.GatewayDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.GatewayRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.GatewayErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	span.SetAttributes(attrs...)

	if result == nil || result.TokenUsage == nil {
		return
	}

	usage := result.TokenUsage
	span.SetAttributes(
		attribute.Int64("gateway.tokens.input", usage.InputTokens),
		attribute.Int64("gateway.tokens.output", usage.OutputTokens),
		attribute.Int64("gateway.tokens.total", usage.TotalTokens),
	)

	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.Gateway.TrackTokenUsage {
		return
	}
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		m.GatewayTokens.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tt.tokenType),
		))
	}
}

func (om *ObservabilityManager) conversationMetricsEnabled() bool {
	if om.GetMetrics() == nil {
		return false
	}
	return om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.Conversation.Enabled
}

// RecordTurn counts one processed turn; outcome is the turn's nextAction
func (om *ObservabilityManager) RecordTurn(ctx context.Context, topic, outcome string) {
	if !om.conversationMetricsEnabled() {
		return
	}
	om.metrics.Turns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("outcome", outcome),
	))
}

// RecordTopicCompletion counts a topic reaching its completion condition
func (om *ObservabilityManager) RecordTopicCompletion(ctx context.Context, topic string) {
	if !om.conversationMetricsEnabled() {
		return
	}
	om.metrics.TopicCompletions.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

// RecordStepTransition counts a move between steps
func (om *ObservabilityManager) RecordStepTransition(ctx context.Context, from, to int) {
	if !om.conversationMetricsEnabled() {
		return
	}
	om.metrics.StepTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", strconv.Itoa(from)),
		attribute.String("to", strconv.Itoa(to)),
	))
}

// RecordResumeRendered counts an assembled resume document
func (om *ObservabilityManager) RecordResumeRendered(ctx context.Context, format string, success bool) {
	if !om.conversationMetricsEnabled() {
		return
	}
	om.metrics.ResumesRendered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("success", success),
	))
}

// RecordRateLimitHit counts a rejected request; limitType is "ip" or "api_key"
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, limitType, path string) {
	m := om.GetMetrics()
	if m == nil {
		return
	}
	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limit_type", limitType),
		attribute.String("path", path),
	))
}
