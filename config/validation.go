package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is usable for the current
// environment. Development and test get by on defaults; production must
// carry real credentials and an upstream model endpoint.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET (or jwt_secret secret) is required")
	}

	if GetEnvironment() == Production {
		if cfg.DBPassword == "" {
			errors = append(errors, "DB_PASSWORD (or db_password secret) is required in production")
		}
		if cfg.AIAPIKey == "" {
			errors = append(errors, "AI_API_KEY (or ai_api_key secret) is required in production")
		}
		if cfg.AIBaseURL == "" {
			errors = append(errors, "AI_BASE_URL is required in production")
		}
		if cfg.AIModel == "" {
			errors = append(errors, "AI_MODEL is required in production")
		}
		if len(cfg.CORSAllowedOrigins) == 0 {
			errors = append(errors, "CORS_ALLOWED_ORIGINS is required in production")
		}
	}

	if cfg.AITemperature < 0 || cfg.AITemperature > 2 {
		errors = append(errors, "AI_TEMPERATURE must be between 0 and 2")
	}
	if cfg.AIMaxTokens <= 0 {
		errors = append(errors, "AI_MAX_TOKENS must be positive")
	}
	if cfg.TokenTTL <= 0 {
		errors = append(errors, "TOKEN_TTL must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
