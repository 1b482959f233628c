package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// OperatorChatID is the staff chat that receives appointment requests.
	OperatorChatID int64  `yaml:"operator_chat_id" envconfig:"TELEGRAM_OPERATOR_CHAT_ID"`
	RunMode        string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
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
	Level     string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format    string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder string `yaml:"keys_order"`
	Dir       string `yaml:"dir" envconfig:"LOG_DIR"`
	File      string `yaml:"file" envconfig:"LOG_FILE"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// SessionsConfig controls the in-memory quiz session lifetime.
type SessionsConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout" envconfig:"SESSIONS_IDLE_TIMEOUT"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SESSIONS_SWEEP_INTERVAL"`
}

// ClinicConfig holds clinic specific content and limits.
type ClinicConfig struct {
	// QuestionsFile overrides the embedded questionnaire when set.
	QuestionsFile string `yaml:"questions_file" envconfig:"CLINIC_QUESTIONS_FILE"`
	BookingURL    string `yaml:"booking_url" envconfig:"CLINIC_BOOKING_URL"`
	PolicyURL     string `yaml:"policy_url" envconfig:"CLINIC_POLICY_URL"`
	MaxPhotoBytes int64  `yaml:"max_photo_bytes" envconfig:"CLINIC_MAX_PHOTO_BYTES"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
	DefaultMaxPhotoBytes = 10 * 1024 * 1024

	DefaultBookingURL = "https://booking.medflex.ru/?user=80ba62d9fd0740c0e6c147cef0ff6b60&isRoundWidget=true&filial=8995&type=doctors"
	DefaultPolicyURL  = "https://18470-o-fayber.lp5.s1dev.ru/soglasie-na-obrabotku-personalnykh-dannykh"
)

// Config aggregates the bot configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sessions SessionsConfig `yaml:"sessions"`
	Clinic   ClinicConfig   `yaml:"clinic"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// Load reads configuration from an optional YAML file and environment variables.
// An empty path or a missing file leaves the environment as the only source.
func Load(path string) (*Config, error) {
	var cfg Config

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Telegram.OperatorChatID == 0 {
		return fmt.Errorf("telegram.operator_chat_id is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" {
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

	if cfg.Sessions.IdleTimeout < 0 || cfg.Sessions.SweepInterval < 0 {
		return fmt.Errorf("sessions durations must be >= 0")
	}
	if cfg.Sessions.IdleTimeout == 0 {
		cfg.Sessions.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Sessions.SweepInterval == 0 {
		cfg.Sessions.SweepInterval = DefaultSweepInterval
	}

	if cfg.Clinic.MaxPhotoBytes < 0 {
		return fmt.Errorf("clinic.max_photo_bytes must be >= 0")
	}
	if cfg.Clinic.MaxPhotoBytes == 0 {
		cfg.Clinic.MaxPhotoBytes = DefaultMaxPhotoBytes
	}
	if strings.TrimSpace(cfg.Clinic.BookingURL) == "" {
		cfg.Clinic.BookingURL = DefaultBookingURL
	}
	if strings.TrimSpace(cfg.Clinic.PolicyURL) == "" {
		cfg.Clinic.PolicyURL = DefaultPolicyURL
	}

	return normalizeArchive(&cfg.Archive)
}
