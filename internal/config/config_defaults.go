package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-1.5-pro")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 0) // a failed turn is surfaced, not retried
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// Judge operation: grading answers against schema fields
	v.SetDefault("ai.judge.provider", "gemini")
	v.SetDefault("ai.judge.model", "")
	v.SetDefault("ai.judge.timeout", 30*time.Second)
	v.SetDefault("ai.judge.apiKey", "")
	v.SetDefault("ai.judge.temperature", 0.1)
	v.SetDefault("ai.judge.useSystemPrompts", true)

	// Question operation: phrasing follow-up questions
	v.SetDefault("ai.question.provider", "gemini")
	v.SetDefault("ai.question.model", "")
	v.SetDefault("ai.question.timeout", 45*time.Second)
	v.SetDefault("ai.question.apiKey", "")
	v.SetDefault("ai.question.temperature", 0.7)
	v.SetDefault("ai.question.useSystemPrompts", true)

	for _, op := range []string{"judge", "question"} {
		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", true)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 3)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	// Conversation flow
	v.SetDefault("conversation.completionPolicy", PolicyTurnCount)
	v.SetDefault("conversation.maxTopicTurns", 2)
	v.SetDefault("conversation.keywordsFile", "")
	v.SetDefault("conversation.watchKeywords", false)

	// Sessions
	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.keyPrefix", "resumechat:session:")

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second) // covers one gateway call
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"text", "markdown", "json"})
	v.SetDefault("app.maxRequestSize", 64*1024)
	v.SetDefault("app.outputDir", ".")

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumechat")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.gateway.enabled", true)
	v.SetDefault("observability.customMetrics.gateway.trackDuration", true)
	v.SetDefault("observability.customMetrics.gateway.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.conversation.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
}
