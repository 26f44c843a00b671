package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`

	API       APIConfig       `mapstructure:"api"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Hydration HydrationConfig `mapstructure:"hydration"`
	Rsvp      RsvpConfig      `mapstructure:"rsvp"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// APIConfig points at the external GatherGrove backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	// Backend selects the key-value store: memory, redis or sqlite.
	Backend    string        `mapstructure:"backend"`
	RedisAddr  string        `mapstructure:"redis_addr"`
	RedisDB    int           `mapstructure:"redis_db"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type FeedConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	HappeningWindow time.Duration `mapstructure:"happening_window"`
	FutureGrace     time.Duration `mapstructure:"future_grace"`
}

type HydrationConfig struct {
	Workers   int `mapstructure:"workers"`
	MaxEvents int `mapstructure:"max_events"`
}

type RsvpConfig struct {
	// OnFailure is "keep" (optimistic state retained, the default) or
	// "rollback" when a submit/withdraw request fails.
	OnFailure string `mapstructure:"on_failure"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("api.base_url", "https://api.gathergrove.example")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.sqlite_path", "gathergrove.db")
	v.SetDefault("cache.ttl", "0")
	v.SetDefault("feed.refresh_interval", "60s")
	v.SetDefault("feed.happening_window", "24h")
	v.SetDefault("feed.future_grace", "1h")
	v.SetDefault("hydration.workers", 6)
	v.SetDefault("hydration.max_events", 20)
	v.SetDefault("rsvp.on_failure", "keep")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
