package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "CONF_MONITOR_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	llmAPIKeyEnv     = "LLM_API_KEY"
	llmModelEnv      = "LLM_MODEL"
	telegramToken    = "TELEGRAM_BOT_TOKEN"
	telegramChatID   = "TELEGRAM_CHAT_ID"
	serverAddrEnv    = "CONF_MONITOR_ADDR"
	defaultCollectTO = 60 * time.Second
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Refresh       RefreshConfig      `yaml:"refresh"`
	Areas         []string           `yaml:"areas"`
	Sources       []SourceConfig     `yaml:"sources"`
	Tiers         TierConfig         `yaml:"tiers"`
	LLM           LLMConfig          `yaml:"llm"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
	Retention     RetentionConfig    `yaml:"retention"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the SQL driver and connection string. Driver is
// "sqlite" (embedded, default) or "postgres".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines the automatic refresh cadence.
type SchedulerConfig struct {
	Enabled      bool `yaml:"enabled"`
	IntervalDays int  `yaml:"intervalDays"`
}

// Interval resolves the configured cadence to a duration.
func (s SchedulerConfig) Interval() time.Duration {
	days := s.IntervalDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// RefreshConfig bounds a single refresh cycle.
type RefreshConfig struct {
	CollectTimeoutSeconds int `yaml:"collectTimeoutSeconds"`
	MaxPerSource          int `yaml:"maxPerSource"`
}

// CollectTimeout is the per-area bound on the collection step.
func (r RefreshConfig) CollectTimeout() time.Duration {
	if r.CollectTimeoutSeconds <= 0 {
		return defaultCollectTO
	}
	return time.Duration(r.CollectTimeoutSeconds) * time.Second
}

// SourceConfig describes a single upstream site with its collector
// strategy and the entity type it yields.
type SourceConfig struct {
	Name      string            `yaml:"name"`
	Collector string            `yaml:"collector"`
	Entity    string            `yaml:"entity"`
	URL       string            `yaml:"url"`
	Selectors map[string]string `yaml:"selectors"`
	Options   map[string]string `yaml:"options"`
}

// TierConfig points at an optional yaml ranking table; empty means the
// compiled-in default table.
type TierConfig struct {
	File string `yaml:"file"`
}

// LLMConfig defines how to contact the chat-completion API used for
// free-form queries and paper analysis.
type LLMConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send digest messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RetentionConfig bounds how long elapsed conferences stay in storage
// before the explicit purge operation removes them.
type RetentionConfig struct {
	PurgeAfterDays int `yaml:"purgeAfterDays"`
}

// PurgeWindow resolves the retention window, defaulting to 180 days.
func (r RetentionConfig) PurgeWindow() time.Duration {
	days := r.PurgeAfterDays
	if days <= 0 {
		days = 180
	}
	return time.Duration(days) * 24 * time.Hour
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Areas) == 0 {
		cfg.Areas = defaultConfig().Areas
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(telegramToken); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatID); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server = override.Server
	}
	if override.Database.DSN != "" || override.Database.Driver != "" {
		base.Database = override.Database
	}
	if override.Scheduler.IntervalDays != 0 || override.Scheduler.Enabled {
		base.Scheduler = override.Scheduler
	}
	if override.Refresh.CollectTimeoutSeconds != 0 || override.Refresh.MaxPerSource != 0 {
		base.Refresh = override.Refresh
	}
	if len(override.Areas) > 0 {
		base.Areas = override.Areas
	}
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}
	if override.Tiers.File != "" {
		base.Tiers = override.Tiers
	}
	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.SystemPrompt != "" {
		base.LLM.SystemPrompt = override.LLM.SystemPrompt
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Retention.PurgeAfterDays != 0 {
		base.Retention = override.Retention
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8080"},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "conference_monitor.db"},
		Scheduler: SchedulerConfig{Enabled: false, IntervalDays: 7},
		Refresh:   RefreshConfig{CollectTimeoutSeconds: 60, MaxPerSource: 50},
		Areas: []string{
			"artificial intelligence",
			"machine learning",
			"natural language processing",
			"computer vision",
		},
		Sources: []SourceConfig{
			{
				Name:      "ieee",
				Collector: "listing",
				Entity:    "conference",
				URL:       "https://www.ieee.org/conferences/index.html",
			},
			{
				Name:      "acm",
				Collector: "listing",
				Entity:    "conference",
				URL:       "https://www.acm.org/conferences",
			},
			{
				Name:      "arxiv",
				Collector: "arxiv",
				Entity:    "paper",
				URL:       "https://export.arxiv.org/list",
				Options: map[string]string{
					"artificial intelligence":     "cs.AI",
					"machine learning":            "cs.LG",
					"natural language processing": "cs.CL",
					"computer vision":             "cs.CV",
				},
			},
		},
		LLM: LLMConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You answer questions about tracked academic conferences and papers.",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
