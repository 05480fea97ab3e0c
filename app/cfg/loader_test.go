package cfg

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")

	cfg, err := LoadArgs([]string{"aggregate"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Command != CommandAggregate {
		t.Errorf("Expected command 'aggregate', got '%s'", cfg.Command)
	}
	if cfg.GeminiAPIKey != "test-gemini-key" {
		t.Errorf("Expected Gemini key from environment, got '%s'", cfg.GeminiAPIKey)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("Expected default model 'gemini-2.5-flash', got '%s'", cfg.GeminiModel)
	}
	if cfg.SummaryLimit != 10 {
		t.Errorf("Expected summary limit 10, got %d", cfg.SummaryLimit)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("Expected batch size 100, got %d", cfg.BatchSize)
	}
	if cfg.DigestLimit != 10 {
		t.Errorf("Expected digest limit 10, got %d", cfg.DigestLimit)
	}
	if cfg.FeedsDir != "./feeds" {
		t.Errorf("Expected feeds dir './feeds', got '%s'", cfg.FeedsDir)
	}
}

func TestLoadArgsFlagsOverrideDefaults(t *testing.T) {
	t.Setenv("RESEND_API_KEY", "test-resend-key")

	cfg, err := LoadArgs([]string{"--batch-size", "25", "--base-url", "https://news.example.com", "send-digest"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Command != CommandSendDigest {
		t.Errorf("Expected command 'send-digest', got '%s'", cfg.Command)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("Expected batch size 25, got %d", cfg.BatchSize)
	}
	if cfg.BaseUrl != "https://news.example.com" {
		t.Errorf("Expected base URL 'https://news.example.com', got '%s'", cfg.BaseUrl)
	}
}

func TestLoadArgsErrors(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("RESEND_API_KEY", "")

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "Unknown command",
			args:    []string{"publish"},
			message: "unknown command",
		},
		{
			name:    "Aggregate without Gemini key",
			args:    []string{"aggregate"},
			message: "GEMINI_API_KEY",
		},
		{
			name:    "Send digest without Resend key",
			args:    []string{"send-digest"},
			message: "RESEND_API_KEY",
		},
		{
			name:    "Zero batch size",
			args:    []string{"--batch-size", "0", "serve"},
			message: "batch size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArgs(tt.args)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Expected error containing '%s', got: %v", tt.message, err)
			}
		})
	}
}

func TestLoadArgsServeNeedsNoKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("RESEND_API_KEY", "")

	cfg, err := LoadArgs([]string{"--port", "9090", "serve"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
}
