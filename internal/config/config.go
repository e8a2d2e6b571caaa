// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded RSA private key or a path to one; signs session tokens (RS256).
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded RSA public key or a path to one; validates session tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "dastyar-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "dastyar-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the session token lifetime (e.g. "720h").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12. Used for the password login path.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SMSAPIKey is the API key for the SMS gateway used to deliver OTP codes.
	SMSAPIKey string `mapstructure:"SMS_API_KEY"`
	// SMSSender is the optional sender line number for the SMS gateway.
	SMSSender string `mapstructure:"SMS_SENDER"`
	// SMSBaseURL is the SMS gateway API base URL.
	SMSBaseURL string `mapstructure:"SMS_BASE_URL"`
	// OTPReturnToClient when true enables dev OTP mode: no SMS is sent and the code is
	// kept for in-process retrieval. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// DollarRate is the toman-per-dollar rate used for dollar projections of balances.
	DollarRate float64 `mapstructure:"DOLLAR_RATE"`
	// OTLPEndpoint is the OTLP collector endpoint for traces/metrics (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`

	// Audit pipeline (optional). When Kafka brokers are set, the API server emits audit events to Kafka.
	// AuditKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	AuditKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events (default dastyar-audit).
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the audit worker to push events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "dastyar-auth")
	v.SetDefault("JWT_AUDIENCE", "dastyar-api")
	v.SetDefault("JWT_ACCESS_TTL", "720h") // 30d: the SPA treats token presence as the only gate
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SMS_BASE_URL", "https://api.sms.ir/v1/send/verify")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("DOLLAR_RATE", 0)
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "dastyar-audit")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "dastyar-audit-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.DollarRate < 0 {
		return nil, errors.New("config: DOLLAR_RATE must not be negative")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

// AuditKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the audit pipeline is enabled (non-empty list) and to create the producer.
func (c *Config) AuditKafkaBrokersList() []string {
	if c == nil || c.AuditKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AuditKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
