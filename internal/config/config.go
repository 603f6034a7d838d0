package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the server. Values come from the
// process environment, optionally seeded by a .env file.
type Config struct {
	Env              string        `mapstructure:"env"`
	GinMode          string        `mapstructure:"gin_mode"`
	Port             string        `mapstructure:"port"`
	CookieMaxAge     time.Duration `mapstructure:"cookie_max_age"`
	StaticCacheAge   time.Duration `mapstructure:"static_cache_age"`
	RateLimitRPS     int           `mapstructure:"rate_limit_rps"`
	RateLimitBurst   int           `mapstructure:"rate_limit_burst"`
	RateLimiterTTL   time.Duration `mapstructure:"rate_limiter_ttl"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	BoardsPath       string        `mapstructure:"boards_path"`
	TemplatesDir     string        `mapstructure:"templates_dir"`
	RevealDelay      time.Duration `mapstructure:"reveal_delay"`
	DefaultTimeLimit time.Duration `mapstructure:"default_time_limit"`
	ScoresDriver     string        `mapstructure:"scores_driver"`
	ScoresDSN        string        `mapstructure:"scores_dsn"`
	LogLevel         string        `mapstructure:"log_level"`
	LogFormat        string        `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"env":                "development",
	"gin_mode":           "",
	"port":               "8080",
	"cookie_max_age":     "2h",
	"static_cache_age":   "5m",
	"rate_limit_rps":     5,
	"rate_limit_burst":   10,
	"rate_limiter_ttl":   "1h",
	"session_ttl":        "3h",
	"boards_path":        "data/boards.json",
	"templates_dir":      "templates",
	"reveal_delay":       "700ms",
	"default_time_limit": "0s",
	"scores_driver":      "memory",
	"scores_dsn":         "",
	"log_level":          "info",
	"log_format":         "text",
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}
	if cfg.RevealDelay <= 0 {
		return nil, fmt.Errorf("reveal_delay must be positive, got %v", cfg.RevealDelay)
	}
	if cfg.DefaultTimeLimit < 0 {
		return nil, fmt.Errorf("default_time_limit must not be negative, got %v", cfg.DefaultTimeLimit)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release" || c.Env == "production"
}

func (c *Config) EnvName() string {
	return map[bool]string{true: "production", false: "development"}[c.IsProduction()]
}
