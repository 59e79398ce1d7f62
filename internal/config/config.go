package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the CLI settings resolved from the environment.
type Config struct {
	// DataDir holds the published form store and uploaded files.
	DataDir string

	LogLevel  string // debug, info, warn, error
	LogFormat string // json or text

	// Output is the default render format for fill: text, json or yaml.
	Output string

	HTTPTimeout      time.Duration
	ShortIDMinLength int
	SanitizeSchemas  bool
}

// StoreDir is where published forms live.
func (c *Config) StoreDir() string {
	return filepath.Join(c.DataDir, "forms")
}

// UploadDir is where submitted files are copied.
func (c *Config) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

// Load reads an optional .env file and then the FORMSTEP_* variables.
// Variables already set in the process win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	timeout, err := time.ParseDuration(getEnv("FORMSTEP_HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("config: FORMSTEP_HTTP_TIMEOUT: %w", err)
	}
	minLength, err := getIntEnv("FORMSTEP_SHORT_ID_MIN_LENGTH", 8)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:          getEnv("FORMSTEP_DATA_DIR", ".formstep"),
		LogLevel:         strings.ToLower(getEnv("FORMSTEP_LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("FORMSTEP_LOG_FORMAT", "text")),
		Output:           strings.ToLower(getEnv("FORMSTEP_OUTPUT", "text")),
		HTTPTimeout:      timeout,
		ShortIDMinLength: minLength,
		SanitizeSchemas:  getBoolEnv("FORMSTEP_SANITIZE", true),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the CLI cannot work with.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http timeout must be positive")
	}
	if c.ShortIDMinLength < 0 || c.ShortIDMinLength > 255 {
		return fmt.Errorf("config: short id min length must be between 0 and 255")
	}
	return nil
}
