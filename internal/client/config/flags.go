package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/brokerdesk/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-t", "-i", "-l", "-log-file", "-offline-validation"}

// parseFlags overlays cfg with command-line flags.
//
//	-a string    backend API base URL
//	-d string    local database path
//	-t duration  request timeout
//	-i int       online check interval (seconds)
//	-l string    log level
//	-log-file    log file path
//	-offline-validation bool  save locally when the backend rejects a create
//
// Only the flags above are considered; args is filtered with
// flagx.FilterArgs so other stages' flags do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("brokerdesk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file path")
	fs.BoolVar(&cfg.FallbackOnValidation, "offline-validation", cfg.FallbackOnValidation, "save records locally when the backend rejects them")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
