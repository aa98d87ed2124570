package ai

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"resumechat/internal/config"
	"resumechat/internal/errors"

	"google.golang.org/api/googleapi"
)

// Helper functions to create pointers for test values
func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func float32Ptr(f float32) *float32          { return &f }
func boolPtr(b bool) *bool                   { return &b }

type scriptedGateway struct {
	replies []string
	err     error
	prompts []string
}

func (g *scriptedGateway) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply, nil
}

func (g *scriptedGateway) Close() error { return nil }

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		in   string
		want Verdict
	}{
		{"ENOUGH", VerdictEnough},
		{"enough.", VerdictEnough},
		{"  Partial\n", VerdictPartial},
		{"PARTIALLY covered", VerdictPartial},
		{"NO", VerdictNo},
		{"NOT ENOUGH", VerdictNo},
		{"**ENOUGH**", VerdictEnough},
		{"판단: ENOUGH", VerdictEnough},
		{"", VerdictNo},
		{"maybe", VerdictNo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseVerdict(tt.in); got != tt.want {
				t.Errorf("ParseVerdict(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestJudgeFieldUsesPromptAndParsesReply(t *testing.T) {
	judge := &scriptedGateway{replies: []string{"PARTIAL"}}
	svc := NewServiceWithGateways(judge, &scriptedGateway{}, errors.Discard())

	verdict, err := svc.JudgeField(context.Background(), "회사명", "근무했던 회사 이름", "A사에서 일했습니다")
	if err != nil {
		t.Fatalf("JudgeField failed: %v", err)
	}
	if verdict != VerdictPartial {
		t.Errorf("expected PARTIAL, got %s", verdict)
	}

	prompt := judge.prompts[0]
	for _, want := range []string{"필드명: 회사명", "설명: 근무했던 회사 이름", "A사에서 일했습니다", "ENOUGH, PARTIAL, NO"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("judge prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestJudgeFieldPropagatesGatewayError(t *testing.T) {
	failure := errors.NewAIError(errors.ErrCodeGatewayFailed, "quota exceeded", nil)
	svc := NewServiceWithGateways(&scriptedGateway{err: failure}, &scriptedGateway{}, errors.Discard())

	verdict, err := svc.JudgeField(context.Background(), "직무", "담당 직무", "백엔드")
	if !errors.IsType(err, errors.ErrorTypeAI) {
		t.Fatalf("expected AI error, got %v", err)
	}
	if verdict != VerdictNo {
		t.Errorf("failed judgement should be NO, got %s", verdict)
	}
}

func TestFollowupQuestionPrompt(t *testing.T) {
	question := &scriptedGateway{replies: []string{"근무 기간은 어떻게 되시나요?"}}
	svc := NewServiceWithGateways(&scriptedGateway{}, question, errors.Discard())

	got, err := svc.FollowupQuestion(context.Background(), "근무 기간", "입사일과 퇴사일", "A사 백엔드")
	if err != nil {
		t.Fatal(err)
	}
	if got != "근무 기간은 어떻게 되시나요?" {
		t.Errorf("unexpected question %q", got)
	}
	if !strings.Contains(question.prompts[0], `이전 응답: "A사 백엔드"`) {
		t.Errorf("follow-up prompt should quote the previous answer:\n%s", question.prompts[0])
	}

	first := FollowupQuestionPrompt(&config.PromptConfig{}, "근무 기간", "입사일과 퇴사일", " ")
	if strings.Contains(first, "이전 응답") {
		t.Errorf("first question prompt should not reference a previous answer:\n%s", first)
	}
}

func TestPromptResolutionOrder(t *testing.T) {
	cfg := &config.PromptConfig{JudgeField: "custom %s|%s|%s"}
	if got := JudgeFieldPrompt(cfg, "a", "b", "c"); got != "custom a|b|c" {
		t.Errorf("config prompt should override default, got %q", got)
	}
	if got := SystemPromptFor(config.OperationJudge, &config.PromptConfig{}); got != DefaultSystemPrompt {
		t.Errorf("expected default system prompt, got %q", got)
	}
	if got := resolvePrompt("file", "config", "default"); got != "file" {
		t.Errorf("file prompt should win, got %q", got)
	}
	if got := resolvePrompt("", "", "default"); got != "default" {
		t.Errorf("default should be last resort, got %q", got)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"too many requests", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"unavailable", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"plain", stderrors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBackoffIsCapped(t *testing.T) {
	if d := backoff(1); d < time.Second || d > 1100*time.Millisecond {
		t.Errorf("first retry backoff out of range: %v", d)
	}
	if d := backoff(10); d != 30*time.Second {
		t.Errorf("backoff should cap at 30s, got %v", d)
	}
}

func testOperationConfig() *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider:         "gemini",
		Model:            "test-model",
		Timeout:          timePtr(30 * time.Second),
		APIKey:           "test-key",
		MaxRetries:       intPtr(0),
		Temperature:      float32Ptr(0.5),
		UseSystemPrompts: boolPtr(true),
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.8,
		},
	}
}

func TestNewGatewayUnsupportedProvider(t *testing.T) {
	cfg := testOperationConfig()
	cfg.Provider = "openai"

	_, err := NewGateway(cfg, config.OperationJudge, errors.Discard(), nil)
	if errors.CodeOf(err) != errors.ErrCodeInvalidConfig {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestGeminiGatewayStats(t *testing.T) {
	gateway, err := NewGateway(testOperationConfig(), config.OperationQuestion, errors.Discard(), nil)
	if err != nil {
		t.Skipf("gemini client unavailable in this environment: %v", err)
	}

	reporter, ok := gateway.(HealthReporter)
	if !ok {
		t.Fatal("gemini gateway should report health")
	}

	stats := reporter.Stats()
	aiStats, ok := stats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("AI operations stats should exist and be a map")
	}
	if name, _ := aiStats["name"].(string); name != "AI-question" {
		t.Errorf("Expected circuit breaker name 'AI-question', got '%s'", name)
	}
	modelStats, ok := stats["model_operations"].(map[string]any)
	if !ok {
		t.Fatal("Model operations stats should exist and be a map")
	}
	if name, _ := modelStats["name"].(string); name != "AI-Model-question" {
		t.Errorf("Expected model circuit breaker name 'AI-Model-question', got '%s'", name)
	}
	if !reporter.Healthy() {
		t.Error("gateway should be healthy initially")
	}
}

func TestServiceStatsWithoutHealthReporters(t *testing.T) {
	svc := NewServiceWithGateways(&scriptedGateway{}, &scriptedGateway{}, errors.Discard())

	stats := svc.Stats()
	if healthy, _ := stats["overall_healthy"].(bool); !healthy {
		t.Error("service without breakers should be healthy")
	}
	if _, ok := stats[config.OperationJudge]; !ok {
		t.Error("stats should list the judge operation")
	}
	if len(svc.ModelInfo(context.Background())) != 0 {
		t.Error("fake gateways expose no model info")
	}
	if err := svc.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
