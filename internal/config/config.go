package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,required"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"2m"`

	RedisAddr     string        `env:"REDIS_ADDR,required"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CatalogTTL    time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	AdminTokenTTL time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`

	// MailTransport selects the outbound transport: "smtp" or "api".
	MailTransport  string `env:"MAIL_TRANSPORT" envDefault:"smtp"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	MailAPIBaseURL string `env:"MAIL_API_BASE_URL"`
	MailAPIKey     string `env:"MAIL_API_KEY"`
	MailFrom       string `env:"MAIL_FROM,required"`
	AdminEmail     string `env:"ADMIN_EMAIL,required"`

	// Optional Telegram channel for new-lead alerts alongside the admin email.
	TelegramToken     string `env:"TELEGRAM_TOKEN"`
	TelegramChannelID int64  `env:"TELEGRAM_CHANNEL_ID"`

	InsertTimeout time.Duration `env:"INSERT_TIMEOUT" envDefault:"5s"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"15s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.MailTransport {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required for smtp transport")
		}
	case "api":
		if cfg.MailAPIBaseURL == "" || cfg.MailAPIKey == "" {
			return nil, fmt.Errorf("MAIL_API_BASE_URL and MAIL_API_KEY are required for api transport")
		}
	default:
		return nil, fmt.Errorf("unknown mail transport: %q", cfg.MailTransport)
	}

	return &cfg, nil
}
