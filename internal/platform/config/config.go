// Package config loads process configuration from the environment. main builds
// every dependency from this one struct; nothing else reads os.Getenv.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config captures everything the server needs at startup. Empty DatabaseURL
// or RedisAddr selects the in-memory fallbacks, which keeps local development
// and tests free of external services.
type Config struct {
	Addr          string        `envconfig:"DONORLINK_ADDR" default:":8080"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	JWTSigningKey string        `envconfig:"JWT_SIGNING_KEY" default:"dev-secret-change-in-production"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	MailjetPublicKey  string `envconfig:"MAILJET_PUBLIC_KEY"`
	MailjetPrivateKey string `envconfig:"MAILJET_PRIVATE_KEY"`
	MailSender        string `envconfig:"MAIL_SENDER" default:"no-reply@donorlink.example"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load builds a Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
