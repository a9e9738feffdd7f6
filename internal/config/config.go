// Package config loads and validates service configuration. Values are
// layered: compiled defaults, then an optional YAML file, then
// environment variables, which win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// OracleConfig configures the scoring oracle client.
type OracleConfig struct {
	// Provider selects the AI backend: openai, anthropic, or google.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google"`

	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key" validate:"required"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// Timeout bounds a single oracle request.
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`

	// MaxRetries caps retry attempts on transient failures.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// RequestsPerSecond throttles outbound oracle traffic. Zero
	// disables the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
}

// LedgerConfig configures the Hedera committer. Empty credentials mean
// simulated commits.
type LedgerConfig struct {
	AccountID  string `yaml:"account_id"`
	PrivateKey string `yaml:"private_key"`
	Network    string `yaml:"network" validate:"omitempty,oneof=testnet mainnet"`
}

// Config is the full service configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port" validate:"required,min=1,max=65535"`

	// DatabaseDriver selects "postgres" or "sqlite".
	DatabaseDriver string `yaml:"database_driver" validate:"required,oneof=postgres sqlite"`

	// DatabaseURL is the driver-specific connection string.
	DatabaseURL string `yaml:"database_url" validate:"required"`

	// AuthSecret is the HS256 shared secret for bearer tokens.
	AuthSecret string `yaml:"auth_secret" validate:"required,min=16"`

	Oracle OracleConfig `yaml:"oracle"`
	Ledger LedgerConfig `yaml:"ledger"`
}

// Default returns the compiled-in defaults. The zero values for
// required secrets force explicit configuration.
func Default() Config {
	return Config{
		Port:           8080,
		DatabaseDriver: "postgres",
		Oracle: OracleConfig{
			Provider:          "openai",
			Timeout:           30 * time.Second,
			MaxRetries:        2,
			RequestsPerSecond: 5,
		},
		Ledger: LedgerConfig{Network: "testnet"},
	}
}

// Load builds the configuration from defaults, the optional YAML file
// at path (skipped when path is empty or absent), and environment
// variables, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.DatabaseDriver, "DATABASE_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.AuthSecret, "AUTH_SECRET")

	setString(&cfg.Oracle.Provider, "ORACLE_PROVIDER")
	setString(&cfg.Oracle.APIKey, "ORACLE_API_KEY")
	setString(&cfg.Oracle.Model, "ORACLE_MODEL")
	setString(&cfg.Oracle.BaseURL, "ORACLE_BASE_URL")

	setString(&cfg.Ledger.AccountID, "HEDERA_ACCOUNT_ID")
	setString(&cfg.Ledger.PrivateKey, "HEDERA_PRIVATE_KEY")
	setString(&cfg.Ledger.Network, "HEDERA_NETWORK")

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("ORACLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Oracle.Timeout = d
		}
	}
	if v := os.Getenv("ORACLE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Oracle.MaxRetries = n
		}
	}
	if v := os.Getenv("ORACLE_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Oracle.RequestsPerSecond = f
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
