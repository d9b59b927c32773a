// Package config reads process configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvStaging    = "staging"
	EnvProduction = "production"

	StorageFile   = "file"
	StorageMemory = "memory"

	stagingSecret = "thisIsASecret"
)

var defaultPorts = map[string]int{
	EnvStaging:    3000,
	EnvProduction: 5000,
}

type Config struct {
	Env         string `env:"APP_ENV"      envDefault:"staging"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"pizzeria"`
	// Port overrides the environment's default port when non-zero.
	Port int `env:"PORT"`

	HashingSecret string        `env:"HASHING_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"       envDefault:"1h"`
	TokenRenewTTL time.Duration `env:"TOKEN_RENEW_TTL" envDefault:"24h"`

	// CatalogAdmins restricts menu changes to these usernames when set.
	CatalogAdmins []string `env:"CATALOG_ADMINS" envSeparator:","`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"file"`
	DataDir       string `env:"DATA_DIR"       envDefault:".data"`

	Payment PaymentConfig
	Mail    MailConfig

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"LOG_FILE"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// PaymentConfig selects Stripe when a secret key is present, otherwise the
// simulated processor.
type PaymentConfig struct {
	StripeSecretKey string  `env:"STRIPE_SECRET_KEY"`
	SuccessRate     float64 `env:"PAYMENT_SUCCESS_RATE" envDefault:"1"`
	Currency        string  `env:"CURRENCY"             envDefault:"usd"`
}

// MailConfig selects SMTP delivery when a host is present, otherwise receipts
// are only logged.
type MailConfig struct {
	From      string `env:"MAIL_FROM"       envDefault:"orders@pizzeria.local"`
	Host      string `env:"SMTP_HOST"`
	Port      int    `env:"SMTP_PORT"       envDefault:"587"`
	Username  string `env:"SMTP_USERNAME"`
	Password  string `env:"SMTP_PASSWORD"`
	TLSPolicy string `env:"SMTP_TLS_POLICY" envDefault:"mandatory"`
}

// Load reads dotenv (when the file exists) and then the process environment.
// Variables already set in the environment win over the file.
func Load(dotenv string) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil.
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	port, known := defaultPorts[c.Env]
	if !known {
		c.Env = EnvStaging
		port = defaultPorts[EnvStaging]
	}
	if c.Port == 0 {
		c.Port = port
	}

	if c.HashingSecret == "" {
		if c.Env == EnvProduction {
			return errors.New("config: HASHING_SECRET is required in production")
		}
		c.HashingSecret = stagingSecret
	}

	switch c.StorageDriver = strings.ToLower(c.StorageDriver); c.StorageDriver {
	case StorageFile, StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	admins := c.CatalogAdmins[:0]
	for _, a := range c.CatalogAdmins {
		if a = strings.TrimSpace(a); a != "" {
			admins = append(admins, a)
		}
	}
	c.CatalogAdmins = admins
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
