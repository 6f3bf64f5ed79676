package server

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/NVIDIA/patch-inventory/pkg/defaults"
)

// EnvPort overrides the listen port.
const EnvPort = "PORT"

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{
		Address:         "",
		Port:            defaults.ServerPort,
		RateLimit:       20, // 20 req/s
		RateLimitBurst:  40, // burst of 40
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    2 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}

	// Override with environment variables if set
	if portStr := os.Getenv(EnvPort); portStr != "" {
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err == nil {
			cfg.Port = port
		} else {
			slog.Warn("ignoring invalid port", "env", EnvPort, "value", portStr)
		}
	}

	return cfg
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}
