package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coredatabase "betbot/core/database"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"TELEGRAM_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// StatsConfig points at the external football statistics API.
type StatsConfig struct {
	BaseURL        string `yaml:"base_url" envconfig:"STATS_API_BASE_URL"`
	Host           string `yaml:"host" envconfig:"STATS_API_HOST"`
	Key            string `yaml:"key" envconfig:"STATS_API_KEY"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"STATS_API_TIMEOUT_SECONDS"`
	MaxRetries     int    `yaml:"max_retries" envconfig:"STATS_API_MAX_RETRIES"`
}

// ContestConfig holds the default target used by /create_contest when the
// operator does not name a championship explicitly.
type ContestConfig struct {
	Country string `yaml:"country" envconfig:"CONTEST_COUNTRY"`
	League  string `yaml:"league" envconfig:"CONTEST_LEAGUE"`
}

// SchedulerConfig configures the cron runner for periodic notifications.
type SchedulerConfig struct {
	Timezone   string `yaml:"timezone" envconfig:"SCHEDULER_TIMEZONE"`
	NotifyCron string `yaml:"notify_cron" envconfig:"SCHEDULER_NOTIFY_CRON"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the whole bot configuration.
type Config struct {
	Telegram  TelegramConfig      `yaml:"telegram"`
	Webhook   WebhookConfig       `yaml:"webhook"`
	Logging   LoggingConfig       `yaml:"logging"`
	RateLimit RateLimitConfig     `yaml:"rate_limit"`
	Database  coredatabase.Config `yaml:"database"`
	Stats     StatsConfig         `yaml:"stats"`
	Contest   ContestConfig       `yaml:"contest"`
	Scheduler SchedulerConfig     `yaml:"scheduler"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Telegram.AdminID == 0 {
		return fmt.Errorf("telegram.admin_id is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if strings.TrimSpace(cfg.Stats.Key) == "" {
		return fmt.Errorf("stats.key is required")
	}
	if cfg.Stats.TimeoutSeconds < 0 {
		return fmt.Errorf("stats.timeout_seconds must be >= 0")
	}
	if strings.TrimSpace(cfg.Stats.BaseURL) == "" {
		cfg.Stats.BaseURL = "https://api-football-v1.p.rapidapi.com/v3"
	}
	if strings.TrimSpace(cfg.Stats.Host) == "" {
		cfg.Stats.Host = "api-football-v1.p.rapidapi.com"
	}
	if strings.TrimSpace(cfg.Contest.Country) == "" {
		cfg.Contest.Country = "Russia"
	}
	if strings.TrimSpace(cfg.Contest.League) == "" {
		cfg.Contest.League = "Premier League"
	}
	if strings.TrimSpace(cfg.Scheduler.Timezone) == "" {
		cfg.Scheduler.Timezone = "Europe/Moscow"
	}
	if strings.TrimSpace(cfg.Scheduler.NotifyCron) == "" {
		cfg.Scheduler.NotifyCron = "0 12 * * *"
	}
	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 4
	}
	return nil
}
