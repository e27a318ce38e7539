// Package config loads runtime configuration for the brokerdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with BROKERDESK_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds. Absent keys keep earlier values:
//
//	{
//	  "api_base_url": "https://brokerage.example.com/api",
//	  "request_timeout": "10s",
//	  "online_check_interval": "15s",
//	  "database_path": "/var/lib/brokerdesk/local.db",
//	  "fallback_on_validation": true,
//	  "fallback_admin_email": "admin@example.com",
//	  "fallback_admin_salt": "<hex>",
//	  "fallback_admin_verifier": "<hex>",
//	  "s3_bucket": "listings",
//	  "s3_region": "us-east-1"
//	}
//
// The fallback admin salt and verifier are printed by `brokerdesk hash-password`.
package config
