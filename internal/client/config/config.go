package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the brokerdesk CLI.
//
// Durations are time.Duration values; hex fields hold the output of
// cryptox.NewCredential for the offline admin login.
type Config struct {
	APIBaseURL          string        `envconfig:"API_BASE_URL"`
	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
	DatabasePath        string        `envconfig:"DATABASE_PATH"`

	RetryMaxAttempts uint64        `envconfig:"RETRY_MAX_ATTEMPTS"`
	RetryBaseDelay   time.Duration `envconfig:"RETRY_BASE_DELAY"`
	RetryMaxDelay    time.Duration `envconfig:"RETRY_MAX_DELAY"`

	FallbackOnValidation  bool   `envconfig:"FALLBACK_ON_VALIDATION"`
	FallbackAdminEmail    string `envconfig:"FALLBACK_ADMIN_EMAIL"`
	FallbackAdminSalt     string `envconfig:"FALLBACK_ADMIN_SALT"`
	FallbackAdminVerifier string `envconfig:"FALLBACK_ADMIN_VERIFIER"`

	PlaceholderImageURL string `envconfig:"PLACEHOLDER_IMAGE_URL"`

	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Region        string `envconfig:"S3_REGION"`
	S3BaseEndpoint  string `envconfig:"S3_BASE_ENDPOINT"`
	S3AccessKey     string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey     string `envconfig:"S3_SECRET_KEY"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`

	LogFile   string `envconfig:"LOG_FILE"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 15 * time.Second
	c.DatabasePath = "brokerdesk.db"
	c.RetryMaxAttempts = 2
	c.RetryBaseDelay = 300 * time.Millisecond
	c.RetryMaxDelay = 3 * time.Second
	c.FallbackOnValidation = true
	c.PlaceholderImageURL = "https://placehold.co/800x600?text=Property"
	c.LogFile = "brokerdesk.log"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from defaults, then the JSON file, environment
// and command-line flags of this process. Later sources take precedence.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over explicit arguments.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if _, _, err := c.FallbackCredential(); err != nil {
		return err
	}
	return nil
}

// FallbackCredential decodes the offline admin salt and verifier. Both are
// nil when not configured.
func (c *Config) FallbackCredential() (salt, verifier []byte, err error) {
	if c.FallbackAdminSalt == "" && c.FallbackAdminVerifier == "" {
		return nil, nil, nil
	}
	if salt, err = hex.DecodeString(c.FallbackAdminSalt); err != nil {
		return nil, nil, fmt.Errorf("fallback admin salt: %w", err)
	}
	if verifier, err = hex.DecodeString(c.FallbackAdminVerifier); err != nil {
		return nil, nil, fmt.Errorf("fallback admin verifier: %w", err)
	}
	return salt, verifier, nil
}
