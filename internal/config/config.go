package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// configPath is the optional config file read from the working directory
const configPath = "config.toml"

// Config holds all configuration settings for the application
type Config struct {
	// ListenAddr is the address and port for the web server
	ListenAddr string `toml:"listen_addr"`

	// TelemetryEnabled turns on OTLP trace export
	TelemetryEnabled bool `toml:"telemetry_enabled"`

	// LogDir is where development logs are written
	LogDir string `toml:"log_dir"`

	// LogRotateSchedule is a cron spec for rotating development logs
	LogRotateSchedule string `toml:"log_rotate_schedule"`
}

// defaultConfig returns the configuration used when nothing is overridden
func defaultConfig() *Config {
	return &Config{
		ListenAddr:        DefaultPort,
		TelemetryEnabled:  false,
		LogDir:            DefaultLogDir,
		LogRotateSchedule: DefaultLogRotateSchedule,
	}
}

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	return LoadFile(configPath)
}

// LoadFile is Load with an explicit config file path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	config := defaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if listenAddr := os.Getenv("LISTEN_ADDR"); listenAddr != "" {
		config.ListenAddr = listenAddr
	}

	if telemetry := os.Getenv("HELLO_TELEMETRY"); telemetry != "" {
		enabled, err := strconv.ParseBool(telemetry)
		if err != nil {
			return nil, fmt.Errorf("invalid HELLO_TELEMETRY value %q: %w", telemetry, err)
		}
		config.TelemetryEnabled = enabled
	}

	if logDir := os.Getenv("HELLO_LOG_DIR"); logDir != "" {
		config.LogDir = logDir
	}

	if schedule := os.Getenv("HELLO_LOG_ROTATE"); schedule != "" {
		config.LogRotateSchedule = schedule
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the listen address and rotation schedule are usable
func (c *Config) Validate() error {
	if _, err := c.Port(); err != nil {
		return err
	}
	if c.LogRotateSchedule != "" {
		if _, err := cron.ParseStandard(c.LogRotateSchedule); err != nil {
			return fmt.Errorf("invalid log_rotate_schedule %q: %w", c.LogRotateSchedule, err)
		}
	}
	return nil
}

// Port returns the numeric port of ListenAddr
func (c *Config) Port() (int, error) {
	_, portStr, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen_addr %q: %w", c.ListenAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in listen_addr %q", c.ListenAddr)
	}
	return port, nil
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("ListenAddr: %s", c.ListenAddr))
	parts = append(parts, fmt.Sprintf("TelemetryEnabled: %t", c.TelemetryEnabled))
	parts = append(parts, fmt.Sprintf("LogDir: %s", c.LogDir))
	parts = append(parts, fmt.Sprintf("LogRotateSchedule: %s", c.LogRotateSchedule))
	return strings.Join(parts, ", ")
}
