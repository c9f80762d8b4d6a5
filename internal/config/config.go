package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Workers  int     `yaml:"workers"` // polling update workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ReminderConfig struct {
	PollInterval       time.Duration `yaml:"poll_interval"`        // evaluation cadence
	RefreshAt          string        `yaml:"refresh_at"`           // HH:MM, daily cache refresh
	LeaseTTL           time.Duration `yaml:"lease_ttl"`            // leader lease lifetime
	LeaseDisabled      bool          `yaml:"lease_disabled"`       // temporary recovery toggle
	SunsetSnoozeMargin int           `yaml:"sunset_snooze_margin"` // minutes before sunset for snooze_sunset
}

type ZmanimConfig struct {
	BaseURL   string        `yaml:"base_url"`
	GeonameID string        `yaml:"geoname_id"` // fixed deployment geolocation
	Timezone  string        `yaml:"timezone"`   // single configured zone
	Timeout   time.Duration `yaml:"timeout"`
}

type WebConfig struct {
	Port        int    `yaml:"port"`
	AdminAPIKey string `yaml:"admin_api_key"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Reminder ReminderConfig `yaml:"reminder"`
	Zmanim   ZmanimConfig   `yaml:"zmanim"`
	Web      WebConfig      `yaml:"web"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, applies defaults and env-var secret
// overrides, and validates required fields. A validation failure here is
// fatal to startup by design.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Secrets may come from the environment instead of the file.
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Reminder.PollInterval <= 0 {
		cfg.Reminder.PollInterval = time.Minute
	}
	if cfg.Reminder.RefreshAt == "" {
		cfg.Reminder.RefreshAt = "00:01"
	}
	if cfg.Reminder.LeaseTTL <= 0 {
		cfg.Reminder.LeaseTTL = time.Minute
	}
	if cfg.Reminder.SunsetSnoozeMargin <= 0 {
		cfg.Reminder.SunsetSnoozeMargin = 30
	}
	if cfg.Zmanim.BaseURL == "" {
		cfg.Zmanim.BaseURL = "https://www.hebcal.com"
	}
	if cfg.Zmanim.GeonameID == "" {
		cfg.Zmanim.GeonameID = "281184" // Jerusalem
	}
	if cfg.Zmanim.Timezone == "" {
		cfg.Zmanim.Timezone = "Asia/Jerusalem"
	}
	if cfg.Zmanim.Timeout <= 0 {
		cfg.Zmanim.Timeout = 10 * time.Second
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
