package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:data/darts.db")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("ORGANIZER_PASSWORD_HASH", "$2a$12$abcdefghijklmnopqrstuv")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"SERVER_PORT", "CORS_ALLOWED_ORIGINS", "RESULT_RATE_LIMIT",
		"RESULT_RATE_WINDOW_SECONDS", "ORGANIZER_NAME", "R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID",
		"R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d", cfg.ServerPort)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ResultRateLimit != 60 || cfg.ResultRateWindow != time.Minute {
		t.Errorf("rate limit = %d per %v", cfg.ResultRateLimit, cfg.ResultRateWindow)
	}
	if cfg.R2.Enabled() {
		t.Error("R2 should be disabled without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com")
	t.Setenv("RESULT_RATE_LIMIT", "10")
	t.Setenv("RESULT_RATE_WINDOW_SECONDS", "30")
	t.Setenv("ORGANIZER_NAME", "Control desk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 9090 || cfg.OrganizerName != "Control desk" {
		t.Errorf("unexpected config %+v", cfg)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ResultRateLimit != 10 || cfg.ResultRateWindow != 30*time.Second {
		t.Errorf("rate limit = %d per %v", cfg.ResultRateLimit, cfg.ResultRateWindow)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"missing database", "DATABASE_URL", "", "DATABASE_URL"},
		{"missing jwt secret", "JWT_SECRET_KEY", "", "JWT_SECRET_KEY"},
		{"missing password hash", "ORGANIZER_PASSWORD_HASH", "", "ORGANIZER_PASSWORD_HASH"},
		{"port not a number", "SERVER_PORT", "eighty", "SERVER_PORT"},
		{"port out of range", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"zero rate", "RESULT_RATE_LIMIT", "0", "RESULT_RATE_LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("SERVER_PORT", "")
			t.Setenv("RESULT_RATE_LIMIT", "")
			t.Setenv("RESULT_RATE_WINDOW_SECONDS", "")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v; want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}
