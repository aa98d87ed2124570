package ai

import (
	stderrors "errors"
	"testing"
	"time"

	"resumechat/internal/config"

	"google.golang.org/genai"
)

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	judgeConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-1.5-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	questionConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-1.5-pro",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.7,
		},
	}

	judgeCB := NewGatewayBreaker(config.OperationJudge, judgeConfig, nil)
	questionCB := NewGatewayBreaker(config.OperationQuestion, questionConfig, nil)

	tests := []struct {
		name     string
		breaker  *GatewayBreaker
		wantName string
	}{
		{"JudgeCircuitBreaker", judgeCB, "AI-judge"},
		{"QuestionCircuitBreaker", questionCB, "AI-question"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.breaker.Stats()

			name, ok := stats["name"].(string)
			if !ok {
				t.Fatal("Circuit breaker name not found")
			}
			if name != tt.wantName {
				t.Errorf("Expected circuit breaker name '%s', got '%s'", tt.wantName, name)
			}

			if state, _ := stats["state"].(string); state != "closed" {
				t.Errorf("Expected initial state 'closed', got '%s'", state)
			}
			if enabled, _ := stats["enabled"].(bool); !enabled {
				t.Error("Circuit breaker should be enabled")
			}
			if !tt.breaker.IsHealthy() {
				t.Error("Circuit breaker should be healthy initially")
			}
		})
	}

	if judgeCB == questionCB {
		t.Error("Judge and question circuit breakers should be different instances")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	disabledConfig := &config.OperationAIConfig{
		Provider:       "gemini",
		Model:          "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: false},
	}

	cb := NewGatewayBreaker("disabled", disabledConfig, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}
	if mb := NewModelBreaker("disabled", disabledConfig, nil); mb != nil {
		t.Fatal("Model breaker should be nil when disabled")
	}

	// A nil breaker passes calls through
	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return &genai.GenerateContentResponse{}, nil
	})
	if err != nil || !called {
		t.Errorf("nil breaker should run fn directly, called=%v err=%v", called, err)
	}
	if enabled, _ := cb.Stats()["enabled"].(bool); enabled {
		t.Error("nil breaker should report disabled")
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
}

func TestCircuitBreakerTripsAfterFailures(t *testing.T) {
	cfg := &config.OperationAIConfig{
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		},
	}
	cb := NewGatewayBreaker(config.OperationJudge, cfg, nil)

	failure := stderrors.New("unavailable")
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (*genai.GenerateContentResponse, error) { return nil, failure })
	}

	if cb.IsHealthy() {
		t.Fatal("breaker should be open after repeated failures")
	}

	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return nil, nil
	})
	if err == nil || called {
		t.Errorf("open breaker should reject calls, called=%v err=%v", called, err)
	}
}
