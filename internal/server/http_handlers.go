package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	resumechatErrors "resumechat/internal/errors"
)

const defaultHealthCheckTimeout = 5 * time.Second

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig == nil || s.AppConfig.Observability.HealthCheck.Timeout <= 0 {
		return defaultHealthCheckTimeout
	}
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler reports service health including model gateway status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":            "healthy",
		"service":           "resumechat",
		"version":           s.Version,
		"completion_policy": s.Controller.Policy(),
		"session_store":     s.Sessions.StoreKind(),
	}

	overallHealthy := true
	if s.AI != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
		defer cancel()

		models := s.AI.ModelInfo(ctx)
		response["ai_models"] = models
		response["circuit_breakers"] = s.AI.Stats()

		for _, info := range models {
			if info != nil && !info.Available {
				overallHealthy = false
			}
		}
		if !s.AI.Healthy() {
			overallHealthy = false
		}
	} else {
		response["ai_models"] = map[string]any{"enabled": false}
	}

	w.Header().Set("Content-Type", "application/json")
	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
	}
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumechat",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"sessions": map[string]any{
			"store": s.Sessions.StoreKind(),
		},
		"completion_policy": s.Controller.Policy(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.AI != nil {
		response["circuit_breakers"] = s.AI.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";"); strings.TrimSpace(mediaType) != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// writeAppError maps an application error to its HTTP status and body
func writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := resumechatErrors.As(err)
	if !ok {
		writeErrorResponse(w, "Internal error", err.Error(), http.StatusInternalServerError)
		return
	}

	response := ErrorResponse{
		Error:   statusText(appErr),
		Message: appErr.Message,
		Code:    appErr.Code,
	}
	if field, ok := appErr.Context["field"].(string); ok {
		response.Field = field
	}
	writeJSON(w, statusFor(appErr), response)
}

func statusFor(appErr *resumechatErrors.AppError) int {
	switch appErr.Code {
	case resumechatErrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case resumechatErrors.ErrCodeSessionBusy,
		resumechatErrors.ErrCodeInvalidTransition,
		resumechatErrors.ErrCodePolicyMismatch:
		return http.StatusConflict
	}

	switch appErr.Type {
	case resumechatErrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case resumechatErrors.ErrorTypeAssembly:
		return http.StatusUnprocessableEntity
	case resumechatErrors.ErrorTypeAI, resumechatErrors.ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func statusText(appErr *resumechatErrors.AppError) string {
	switch statusFor(appErr) {
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusNotFound:
		return "Session not found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusUnprocessableEntity:
		return "Rendering failed"
	case http.StatusBadGateway:
		return "Model gateway error"
	default:
		return "Internal error"
	}
}
