// Package config loads the service configuration from the environment and an
// optional config file. The resulting Config value is passed explicitly into
// the services that need it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Login identifier modes.
const (
	LoginByEmail           = "email"
	LoginByEmailOrUsername = "email_or_username"
)

// Config holds runtime settings for the service.
type Config struct {
	AppPort     string
	DBDriver    string
	DatabaseDSN string
	LogLevel    string

	Auth AuthConfig
	Mail MailConfig

	RabbitMQURL          string
	TokenCleanupInterval time.Duration
}

// AuthConfig groups session and single-use token settings.
type AuthConfig struct {
	JWTSecret            string
	SessionTTL           time.Duration
	RememberedSessionTTL time.Duration

	VerificationTokenTTL  time.Duration
	EmailChangeTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration

	BcryptCost           int
	LoginIdentifier      string
	RequireVerifiedEmail bool
}

// MailConfig holds what the notification dispatcher and mail worker need.
type MailConfig struct {
	Queue       string
	ProjectName string
	From        string

	VerificationURL  string
	EmailChangeURL   string
	ResetPasswordURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:fintrack.db?cache=shared")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("SESSION_TTL", time.Hour)
	v.SetDefault("REMEMBERED_SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("VERIFICATION_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("EMAIL_CHANGE_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("PASSWORD_RESET_TOKEN_TTL", time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOGIN_IDENTIFIER", LoginByEmail)
	v.SetDefault("REQUIRE_VERIFIED_EMAIL", true)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("MAIL_QUEUE", "mail_queue")
	v.SetDefault("PROJECT_NAME", "Expense Tracker")
	v.SetDefault("MAIL_FROM", "no-reply@localhost")
	v.SetDefault("MAIL_VERIFICATION_URL", "http://localhost:8080/api/v1/auth/verify")
	v.SetDefault("MAIL_CHANGE_URL", "http://localhost:8080/api/v1/auth/change-email")
	v.SetDefault("RESET_PASSWORD_URL", "http://localhost:4200/reset-password")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 25)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")

	v.SetDefault("TOKEN_CLEANUP_INTERVAL", time.Hour)
}

// Load reads defaults, then the file named by CONFIG_FILE (if any), then the
// environment.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Auth: AuthConfig{
			JWTSecret:             v.GetString("JWT_SECRET"),
			SessionTTL:            v.GetDuration("SESSION_TTL"),
			RememberedSessionTTL:  v.GetDuration("REMEMBERED_SESSION_TTL"),
			VerificationTokenTTL:  v.GetDuration("VERIFICATION_TOKEN_TTL"),
			EmailChangeTokenTTL:   v.GetDuration("EMAIL_CHANGE_TOKEN_TTL"),
			PasswordResetTokenTTL: v.GetDuration("PASSWORD_RESET_TOKEN_TTL"),
			BcryptCost:            v.GetInt("BCRYPT_COST"),
			LoginIdentifier:       strings.ToLower(v.GetString("LOGIN_IDENTIFIER")),
			RequireVerifiedEmail:  v.GetBool("REQUIRE_VERIFIED_EMAIL"),
		},
		Mail: MailConfig{
			Queue:            v.GetString("MAIL_QUEUE"),
			ProjectName:      v.GetString("PROJECT_NAME"),
			From:             v.GetString("MAIL_FROM"),
			VerificationURL:  v.GetString("MAIL_VERIFICATION_URL"),
			EmailChangeURL:   v.GetString("MAIL_CHANGE_URL"),
			ResetPasswordURL: v.GetString("RESET_PASSWORD_URL"),
			SMTPHost:         v.GetString("SMTP_HOST"),
			SMTPPort:         v.GetInt("SMTP_PORT"),
			SMTPUser:         v.GetString("SMTP_USER"),
			SMTPPassword:     v.GetString("SMTP_PASSWORD"),
		},
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		TokenCleanupInterval: v.GetDuration("TOKEN_CLEANUP_INTERVAL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.Auth.LoginIdentifier {
	case LoginByEmail, LoginByEmailOrUsername:
	default:
		return fmt.Errorf("unsupported LOGIN_IDENTIFIER %q", c.Auth.LoginIdentifier)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.Auth.SessionTTL <= 0 || c.Auth.RememberedSessionTTL <= c.Auth.SessionTTL {
		return fmt.Errorf("REMEMBERED_SESSION_TTL must be longer than SESSION_TTL")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST %d out of range", c.Auth.BcryptCost)
	}
	return nil
}
