package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/brokerdesk/internal/filex"
	"github.com/dmitrijs2005/brokerdesk/internal/flagx"
	"github.com/dmitrijs2005/brokerdesk/internal/timex"
)

const maxConfigBytes = 1 << 20

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// keep their nil value and leave the runtime Config untouched.
type JsonConfig struct {
	APIBaseURL          *string         `json:"api_base_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	DatabasePath        *string         `json:"database_path"`

	RetryMaxAttempts *uint64         `json:"retry_max_attempts"`
	RetryBaseDelay   *timex.Duration `json:"retry_base_delay"`
	RetryMaxDelay    *timex.Duration `json:"retry_max_delay"`

	FallbackOnValidation  *bool   `json:"fallback_on_validation"`
	FallbackAdminEmail    *string `json:"fallback_admin_email"`
	FallbackAdminSalt     *string `json:"fallback_admin_salt"`
	FallbackAdminVerifier *string `json:"fallback_admin_verifier"`

	PlaceholderImageURL *string `json:"placeholder_image_url"`

	S3Bucket        *string `json:"s3_bucket"`
	S3Region        *string `json:"s3_region"`
	S3BaseEndpoint  *string `json:"s3_base_endpoint"`
	S3AccessKey     *string `json:"s3_access_key"`
	S3SecretKey     *string `json:"s3_secret_key"`
	S3PublicBaseURL *string `json:"s3_public_base_url"`

	LogFile   *string `json:"log_file"`
	LogLevel  *string `json:"log_level"`
	LogFormat *string `json:"log_format"`
}

// parseJson overlays cfg with the JSON file named by -c or -config in args.
// Without such a flag nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := filex.ReadLimited(path, maxConfigBytes)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setString(&cfg.DatabasePath, jc.DatabasePath)

	if jc.RetryMaxAttempts != nil {
		cfg.RetryMaxAttempts = *jc.RetryMaxAttempts
	}
	setDuration(&cfg.RetryBaseDelay, jc.RetryBaseDelay)
	setDuration(&cfg.RetryMaxDelay, jc.RetryMaxDelay)

	if jc.FallbackOnValidation != nil {
		cfg.FallbackOnValidation = *jc.FallbackOnValidation
	}
	setString(&cfg.FallbackAdminEmail, jc.FallbackAdminEmail)
	setString(&cfg.FallbackAdminSalt, jc.FallbackAdminSalt)
	setString(&cfg.FallbackAdminVerifier, jc.FallbackAdminVerifier)

	setString(&cfg.PlaceholderImageURL, jc.PlaceholderImageURL)

	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)

	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
