// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// LLM settings
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DraftModel      string
	DraftProvider   string

	// Slack settings
	SlackBotToken      string
	SlackChannelID     string
	SlackSigningSecret string

	// Hospitable settings
	HospitableAPIToken      string
	HospitableSenderID      string
	HospitableWebhookSecret string

	// Web search
	SearchAPIKey string

	// Knowledge base
	KnowledgeDir string

	// Draft lifecycle
	DraftMaxAge      time.Duration
	EvictionInterval time.Duration
	DedupWindow      time.Duration
	MaxToolTurns     int

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "3000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// LLM
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DraftModel:      getEnv("DRAFT_MODEL", ""),
		DraftProvider:   getEnv("DRAFT_PROVIDER", "anthropic"),

		// Slack
		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),

		// Hospitable
		HospitableAPIToken:      getEnv("HOSPITABLE_API_TOKEN", ""),
		HospitableSenderID:      getEnv("HOSPITABLE_SENDER_ID", ""),
		HospitableWebhookSecret: getEnv("HOSPITABLE_WEBHOOK_SECRET", ""),

		// Web search
		SearchAPIKey: getEnv("SEARCH_API_KEY", ""),

		// Knowledge base
		KnowledgeDir: getEnv("KNOWLEDGE_DIR", "knowledge"),

		// Draft lifecycle
		DraftMaxAge:      getDurationEnv("DRAFT_MAX_AGE", 24*time.Hour),
		EvictionInterval: getDurationEnv("EVICTION_INTERVAL", time.Hour),
		DedupWindow:      getDurationEnv("DEDUP_WINDOW", 5*time.Minute),
		MaxToolTurns:     getIntEnv("MAX_TOOL_TURNS", 5),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
