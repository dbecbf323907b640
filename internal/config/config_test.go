package config

import (
	"os"
	"strings"
	"testing"
)

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		expected    bool
	}{
		{"production", "production", true},
		{"prod", "prod", true},
		{"development", "development", false},
		{"dev", "dev", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			if got := cfg.IsProduction(); got != tt.expected {
				t.Errorf("IsProduction() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		expected    bool
	}{
		{"development", "development", true},
		{"dev", "dev", true},
		{"empty", "", true},
		{"production", "production", false},
		{"prod", "prod", false},
		{"staging", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			if got := cfg.IsDevelopment(); got != tt.expected {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_Validate_RequiresBackendURL(t *testing.T) {
	cfg := &Config{
		Environment:   "development",
		BackendAPIURL: "",
	}

	err := cfg.Validate()

	if err == nil {
		t.Error("Expected error for missing BACKEND_API_URL")
	} else if !strings.Contains(err.Error(), "BACKEND_API_URL") {
		t.Errorf("Expected error naming BACKEND_API_URL, got %q", err.Error())
	}
}

func TestConfig_Validate_Production(t *testing.T) {
	tests := []struct {
		name          string
		sessionSecret string
		wantError     bool
		errorContains string
	}{
		{
			name:          "valid_secret",
			sessionSecret: "this-is-a-very-secure-secret-with-32-plus-characters",
			wantError:     false,
		},
		{
			name:          "empty_secret",
			sessionSecret: "",
			wantError:     true,
			errorContains: "SESSION_SECRET must be set",
		},
		{
			name:          "default_secret",
			sessionSecret: "change-this-in-production",
			wantError:     true,
			errorContains: "SESSION_SECRET must be set",
		},
		{
			name:          "short_secret",
			sessionSecret: "short",
			wantError:     true,
			errorContains: "at least 32 characters",
		},
		{
			name:          "exactly_32_chars",
			sessionSecret: "12345678901234567890123456789012",
			wantError:     false,
		},
		{
			name:          "31_chars",
			sessionSecret: "1234567890123456789012345678901",
			wantError:     true,
			errorContains: "at least 32 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Environment:   "production",
				BackendAPIURL: "https://api.learnhub.example",
				SessionSecret: tt.sessionSecret,
			}

			err := cfg.Validate()

			if tt.wantError {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error containing %q, got %q", tt.errorContains, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
			}
		})
	}
}

func TestConfig_Validate_Development(t *testing.T) {
	tests := []struct {
		name          string
		sessionSecret string
	}{
		{"empty_secret_gets_default", ""},
		{"short_secret_allowed", "short"},
		{"any_secret_allowed", "any-value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Environment:   "development",
				BackendAPIURL: "http://localhost:3000",
				SessionSecret: tt.sessionSecret,
			}

			err := cfg.Validate()

			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}

			// Verify default was set if secret was empty
			if tt.sessionSecret == "" && cfg.SessionSecret == "" {
				t.Error("Expected default secret to be set for development")
			}
		})
	}
}

func TestConfig_Validate_Staging(t *testing.T) {
	cfg := &Config{
		Environment:   "staging",
		BackendAPIURL: "http://localhost:3000",
		SessionSecret: "",
	}

	err := cfg.Validate()
	if err != nil {
		t.Errorf("Expected no error for staging environment, got %v", err)
	}

	if cfg.SessionSecret == "" {
		t.Error("Expected default secret to be set for staging")
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{"env_set", "TEST_KEY", "default", "custom", "custom"},
		{"env_not_set", "TEST_KEY_NOT_SET", "default", "", "default"},
		{"empty_default", "TEST_KEY_EMPTY", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.expected {
				t.Errorf("getEnv() = %v, want %v", got, tt.expected)
			}
		})
	}
}
