// Package config loads the server configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gulf-dental-association/member-portal/api"
)

type Config struct {
	Env               api.Environment
	Host              string
	Port              string
	DatabaseURL       string
	JWTSecret         string
	MyFatoorahBaseURL string
	MyFatoorahAPIKey  string
	BaseURL           string
	FrontendURL       string
	FromAddress       string
}

func Load() (*Config, error) {
	// A missing .env is fine, the variables may come from the real
	// environment (Docker, CI, etc.).
	_ = godotenv.Load()

	cfg := &Config{
		Env:               api.Environment(getEnvOrDefault("ENV", string(api.LOCAL))),
		Host:              getEnvOrDefault("HOST", "0.0.0.0"),
		Port:              getEnvOrDefault("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		MyFatoorahBaseURL: getEnvOrDefault("MYFATOORAH_BASE_URL", "https://apitest.myfatoorah.com"),
		MyFatoorahAPIKey:  os.Getenv("MYFATOORAH_API_KEY"),
		BaseURL:           getEnvOrDefault("BASE_URL", "http://localhost:8080"),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		FromAddress:       getEnvOrDefault("EMAIL_FROM_ADDRESS", "events@gulfdental.example"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env != api.LOCAL && c.Env != api.PROD {
		return fmt.Errorf("config: ENV must be %q or %q, got %q", api.LOCAL, api.PROD, c.Env)
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		if c.Env == api.PROD {
			return fmt.Errorf("config: DATABASE_URL is required")
		}
		c.DatabaseURL = "postgres://localhost:5432/memberportal?sslmode=disable"
	}
	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: invalid DATABASE_URL %q: %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: invalid DATABASE_URL %q: missing scheme or host", c.DatabaseURL)
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.Env == api.PROD {
			return fmt.Errorf("config: JWT_SECRET is required")
		}
		c.JWTSecret = "local-dev-secret"
	}

	if c.Env == api.PROD && strings.TrimSpace(c.MyFatoorahAPIKey) == "" {
		return fmt.Errorf("config: MYFATOORAH_API_KEY is required")
	}

	return nil
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}
