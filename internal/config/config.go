// Package config loads service configuration from config.yaml, a .env
// file, and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Crawl      CrawlConfig      `mapstructure:"crawl"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
}

// AppConfig identifies the service.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password" json:"-"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig configures the analysis-request queue.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password" json:"-"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// AnthropicConfig configures the model client.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key" json:"-"`
	Model  string `mapstructure:"model"`
}

// FetchConfig configures the persona fetcher and render fallback.
type FetchConfig struct {
	AttemptTimeout  time.Duration `mapstructure:"attempt_timeout"`
	SparseThreshold int           `mapstructure:"sparse_threshold"`
	RenderEndpoint  string        `mapstructure:"render_endpoint"`
	RenderToken     string        `mapstructure:"render_token" json:"-"`
}

// CrawlConfig configures multi-page crawling.
type CrawlConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	MaxPages int  `mapstructure:"max_pages"`
	MaxDepth int  `mapstructure:"max_depth"`
}

// ReconcilerConfig configures the stuck-document sweep.
type ReconcilerConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Schedule   string        `mapstructure:"schedule"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// Load reads configuration from config.yaml, .env, and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Config file is optional; defaults plus env suffice.
	_ = v.ReadInConfig()

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment variables: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app", map[string]any{
		"name":        "docify",
		"environment": "production",
		"debug":       false,
	})

	v.SetDefault("logger", map[string]any{
		"level":    "info",
		"encoding": "json",
	})

	v.SetDefault("server", map[string]any{
		"addr": ":8080",
	})

	v.SetDefault("database", map[string]any{
		"host":    "localhost",
		"port":    "5432",
		"user":    "docify",
		"dbname":  "docify",
		"sslmode": "disable",
	})

	v.SetDefault("redis", map[string]any{
		"enabled": true,
		"addr":    "localhost:6379",
		"db":      0,
		"prefix":  "docify",
	})

	v.SetDefault("anthropic", map[string]any{
		"model": "",
	})

	v.SetDefault("fetch", map[string]any{
		"attempt_timeout":  "15s",
		"sparse_threshold": 10000,
	})

	v.SetDefault("crawl", map[string]any{
		"enabled":   false,
		"max_pages": 10,
		"max_depth": 3,
	})

	v.SetDefault("reconciler", map[string]any{
		"enabled":     true,
		"schedule":    "@every 1m",
		"stale_after": "10m",
	})
}

// bindEnvironmentVariables maps well-known environment variables onto
// config keys.
func bindEnvironmentVariables(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.environment":       {"APP_ENV"},
		"app.debug":             {"APP_DEBUG"},
		"logger.level":          {"LOG_LEVEL"},
		"logger.encoding":       {"LOG_FORMAT"},
		"server.addr":           {"SERVER_ADDR"},
		"database.host":         {"DATABASE_HOST"},
		"database.port":         {"DATABASE_PORT"},
		"database.user":         {"DATABASE_USER"},
		"database.password":     {"DATABASE_PASSWORD"},
		"database.dbname":       {"DATABASE_NAME"},
		"database.sslmode":      {"DATABASE_SSLMODE"},
		"redis.addr":            {"REDIS_ADDR"},
		"redis.password":        {"REDIS_PASSWORD"},
		"anthropic.api_key":     {"ANTHROPIC_API_KEY"},
		"anthropic.model":       {"ANTHROPIC_MODEL"},
		"fetch.render_endpoint": {"RENDER_ENDPOINT", "BROWSERLESS_URL"},
		"fetch.render_token":    {"RENDER_TOKEN", "BROWSERLESS_TOKEN"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	return nil
}
