package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Log     LogConfig
	CORS    CORSConfig
	Billing BillingConfig
	Notify  NotifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings for staff logins.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BillingConfig holds billing-engine settings.
type BillingConfig struct {
	// DueGraceDays is the number of days between issue date and due
	// date of a generated bill.
	DueGraceDays int `mapstructure:"due_grace_days"`
}

// NotifyConfig holds customer notification settings.
type NotifyConfig struct {
	Provider    string `mapstructure:"provider"` // "ses" or "noop"
	Region      string `mapstructure:"region"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	PortalURL   string `mapstructure:"portal_url"`
}

// Load reads configuration from environment variables with the
// GRIDBILL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GRIDBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "gridbill")
	v.SetDefault("db.password", "gridbill_secret")
	v.SetDefault("db.name", "gridbill_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "gridbill")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Billing defaults
	v.SetDefault("billing.due_grace_days", 15)

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "ap-south-1")
	v.SetDefault("notify.access_key", "")
	v.SetDefault("notify.secret_key", "")
	v.SetDefault("notify.from_address", "billing@gridbill.example")
	v.SetDefault("notify.from_name", "GridBill")
	v.SetDefault("notify.portal_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "GRIDBILL_SERVER_PORT",
		"server.read_timeout":    "GRIDBILL_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "GRIDBILL_SERVER_WRITE_TIMEOUT",
		"server.environment":     "GRIDBILL_SERVER_ENVIRONMENT",
		"db.host":                "GRIDBILL_DB_HOST",
		"db.port":                "GRIDBILL_DB_PORT",
		"db.user":                "GRIDBILL_DB_USER",
		"db.password":            "GRIDBILL_DB_PASSWORD",
		"db.name":                "GRIDBILL_DB_NAME",
		"db.sslmode":             "GRIDBILL_DB_SSLMODE",
		"db.max_open":            "GRIDBILL_DB_MAX_OPEN",
		"db.max_idle":            "GRIDBILL_DB_MAX_IDLE",
		"jwt.secret":             "GRIDBILL_JWT_SECRET",
		"jwt.access_expiry":      "GRIDBILL_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":     "GRIDBILL_JWT_REFRESH_EXPIRY",
		"jwt.issuer":             "GRIDBILL_JWT_ISSUER",
		"log.level":              "GRIDBILL_LOG_LEVEL",
		"log.format":             "GRIDBILL_LOG_FORMAT",
		"cors.allowed_origins":   "GRIDBILL_CORS_ALLOWED_ORIGINS",
		"billing.due_grace_days": "GRIDBILL_BILLING_DUE_GRACE_DAYS",
		"notify.provider":        "GRIDBILL_NOTIFY_PROVIDER",
		"notify.region":          "GRIDBILL_NOTIFY_REGION",
		"notify.access_key":      "GRIDBILL_NOTIFY_ACCESS_KEY",
		"notify.secret_key":      "GRIDBILL_NOTIFY_SECRET_KEY",
		"notify.from_address":    "GRIDBILL_NOTIFY_FROM_ADDRESS",
		"notify.from_name":       "GRIDBILL_NOTIFY_FROM_NAME",
		"notify.portal_url":      "GRIDBILL_NOTIFY_PORTAL_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if
	// GRIDBILL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("GRIDBILL_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Billing = BillingConfig{
		DueGraceDays: v.GetInt("billing.due_grace_days"),
	}

	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		AccessKey:   v.GetString("notify.access_key"),
		SecretKey:   v.GetString("notify.secret_key"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
		PortalURL:   v.GetString("notify.portal_url"),
	}

	return cfg, nil
}
