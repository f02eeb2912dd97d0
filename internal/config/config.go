package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is where the store is expected when nothing is configured.
const DefaultAPIURL = "http://localhost:8080"

var themes = map[string]bool{"classic": true, "neon": true, "mono": true}

type Config struct {
	// Client side
	APIURL    string
	Timeout   time.Duration
	Theme     string
	LogLevel  string
	LogFormat string
	LogFile   string

	// Server side (tada serve)
	Listen        string
	AllowedOrigin string
	DataFile      string
}

// NewConfig reads .env (when present) and then the environment.
func NewConfig() (*Config, error) {
	if os.Getenv("GODOTENV_DISABLE") == "" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	timeout, err := getDurationEnv("TADA_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:        getEnv("TADA_API_URL", DefaultAPIURL),
		Timeout:       timeout,
		Theme:         strings.ToLower(getEnv("TADA_THEME", "classic")),
		LogLevel:      getEnv("TADA_LOG_LEVEL", "info"),
		LogFormat:     getEnv("TADA_LOG_FORMAT", "text"),
		LogFile:       getEnv("TADA_LOG_FILE", ""),
		Listen:        getEnv("TADA_LISTEN", ":8080"),
		AllowedOrigin: getEnv("TADA_ALLOWED_ORIGIN", "http://localhost:3000"),
		DataFile:      getEnv("TADA_DATA_FILE", ""),
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid store URL %q (TADA_API_URL)", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (TADA_TIMEOUT)")
	}
	if !themes[c.Theme] {
		return fmt.Errorf("unknown theme %q (TADA_THEME): use classic, neon or mono", c.Theme)
	}
	return nil
}

// GetAPIBaseURL is APIURL without a trailing slash.
func (c *Config) GetAPIBaseURL() string {
	return strings.TrimSuffix(c.APIURL, "/")
}
