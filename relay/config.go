package relay

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the relay service configuration, read from the environment.
// SMTP credentials never leave this process; clients only see the HTTP API.
type Config struct {
	Addr      string
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
}

// ConfigFromEnv reads SERVER_PORT, SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASS and FROM_EMAIL. FROM_EMAIL defaults to SMTP_USER.
func ConfigFromEnv() Config {
	cfg := Config{
		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
	}

	cfg.SMTPPort = 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.SMTPPort = port
		}
	}

	serverPort := 4000
	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverPort = port
		}
	}
	cfg.Addr = fmt.Sprintf(":%d", serverPort)

	cfg.FromEmail = os.Getenv("FROM_EMAIL")
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}

	return cfg
}

// Validate reports whether the SMTP settings are complete.
func (c Config) Validate() error {
	if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPass == "" {
		return fmt.Errorf("missing SMTP configuration, set SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASS")
	}
	return nil
}
