// Package config loads runtime configuration from the environment, with
// optional .env autoloading for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	Addr string `env:"DESKMESH_ADDR" envDefault:":8000"`

	SlackBotToken      string `env:"SLACK_BOT_TOKEN,required"`
	SlackSigningSecret string `env:"SIGNING_SECRET"`

	// Provider selects the reasoning engine: "anthropic" (default) or "openai".
	Provider        string `env:"DESKMESH_PROVIDER" envDefault:"anthropic"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	DatabaseURL string `env:"DATABASE_URL"`

	DriveCredentialsFile string `env:"DRIVE_CREDENTIALS_FILE"`
	VectorStoreID        string `env:"VECTOR_STORE_ID"`

	FirefliesToken  string `env:"FIREFLIES_TOKEN"`
	ReportChannelID string `env:"REPORT_CHANNEL_ID"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	LogLevel string `env:"DESKMESH_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (if present) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return &cfg, nil
}
