package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/storage"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	OrganizerName         string
	OrganizerPasswordHash string

	CORSAllowedOrigins []string

	// Result submissions allowed per client in each window.
	ResultRateLimit  int
	ResultRateWindow time.Duration

	R2 storage.R2Config
}

// Load reads configuration from environment variables, loading a .env file
// first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	passwordHash := os.Getenv("ORGANIZER_PASSWORD_HASH")
	if passwordHash == "" {
		return nil, fmt.Errorf("ORGANIZER_PASSWORD_HASH environment variable is not set")
	}

	port, err := intFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	rateLimit, err := intFromEnv("RESULT_RATE_LIMIT", 60)
	if err != nil {
		return nil, err
	}
	windowSeconds, err := intFromEnv("RESULT_RATE_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if rateLimit <= 0 || windowSeconds <= 0 {
		return nil, fmt.Errorf("RESULT_RATE_LIMIT and RESULT_RATE_WINDOW_SECONDS must be positive")
	}

	cfg := &Config{
		DatabaseURL:           dbURL,
		JWTSecretKey:          jwtKey,
		ServerPort:            port,
		OrganizerName:         os.Getenv("ORGANIZER_NAME"),
		OrganizerPasswordHash: passwordHash,
		CORSAllowedOrigins:    splitList(os.Getenv("CORS_ALLOWED_ORIGINS"), "*"),
		ResultRateLimit:       rateLimit,
		ResultRateWindow:      time.Duration(windowSeconds) * time.Second,
		R2: storage.R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	return cfg, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw, fallback string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		out = []string{fallback}
	}
	return out
}
