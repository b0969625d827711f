// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Database DatabaseConfig `mapstructure:"database"`
	Datasets DatasetsConfig `mapstructure:"datasets"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
	MaxUploadMB  int    `mapstructure:"max_upload_mb"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EngineConfig holds settings for the external natural-language query engine.
type EngineConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	// MaxPromptRows bounds how many data rows the prompt inlines.
	MaxPromptRows int `mapstructure:"max_prompt_rows"`
}

// SessionsConfig holds session ownership settings.
type SessionsConfig struct {
	Store      string `mapstructure:"store"` // "memory" or "redis"
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatasetsConfig holds settings for the optional CSV watch directory.
type DatasetsConfig struct {
	WatchDir    string `mapstructure:"watch_dir"` // empty disables the watcher
	PreviewRows int    `mapstructure:"preview_rows"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
