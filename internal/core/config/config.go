package config

import (
	"fmt"
	"regexp"
	"strings"

	redisclient "github.com/vietddude/inkwell/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig       `yaml:"server"`
	Notion  NotionConfig       `yaml:"notion"`
	Redis   redisclient.Config `yaml:"redis"`
	Logging LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// NotionConfig holds the upstream content source settings.
type NotionConfig struct {
	APIKey     string `yaml:"api_key"     mapstructure:"api_key"`
	DatabaseID string `yaml:"database_id" mapstructure:"database_id"`
	CacheTTL   int    `yaml:"cache_ttl"   mapstructure:"cache_ttl"`  // seconds, 10-3600
	RateLimit  int    `yaml:"rate_limit"  mapstructure:"rate_limit"` // requests/second, 1-10
}

var databaseIDPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// Validate checks every field and reports all problems at once, so a bad
// deployment fails at startup with a complete diagnostic.
func (c *NotionConfig) Validate() error {
	var problems []string

	if c.APIKey == "" {
		problems = append(problems, "notion.api_key: not set")
	} else if !strings.HasPrefix(c.APIKey, "ntn_") && !strings.HasPrefix(c.APIKey, "secret_") {
		problems = append(problems, `notion.api_key: must start with "ntn_" or "secret_"`)
	}

	if c.DatabaseID == "" {
		problems = append(problems, "notion.database_id: not set")
	} else if !databaseIDPattern.MatchString(c.DatabaseID) {
		problems = append(problems, "notion.database_id: must be 32 lowercase hex characters (remove hyphens)")
	}

	if c.CacheTTL < 10 || c.CacheTTL > 3600 {
		problems = append(problems, fmt.Sprintf("notion.cache_ttl: %d out of range [10, 3600] seconds", c.CacheTTL))
	}

	if c.RateLimit < 1 || c.RateLimit > 10 {
		problems = append(problems, fmt.Sprintf("notion.rate_limit: %d out of range [1, 10] requests/second", c.RateLimit))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// MaskedAPIKey returns the API key safe for logging.
func (c *NotionConfig) MaskedAPIKey() string {
	if len(c.APIKey) < 10 {
		return "***"
	}
	return c.APIKey[:9] + "..." + c.APIKey[len(c.APIKey)-7:]
}
