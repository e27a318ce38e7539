package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. BROKERDESK_API_BASE_URL.
const EnvPrefix = "BROKERDESK"

// parseEnv overlays cfg with the BROKERDESK_* variables that are set.
// Unset variables leave the current values untouched.
func parseEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
