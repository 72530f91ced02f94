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
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Email    EmailConfig
	Razorpay RazorpayConfig
	Billing  BillingConfig
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

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for logo storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxLogoSizeMB int64  `mapstructure:"max_logo_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
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

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// RazorpayConfig holds payment gateway credentials and secrets.
type RazorpayConfig struct {
	KeyID         string `mapstructure:"key_id"`
	KeySecret     string `mapstructure:"key_secret"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	BaseURL       string `mapstructure:"base_url"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
}

// BillingConfig holds credit metering settings.
type BillingConfig struct {
	FreeInvoiceLimit int64 `mapstructure:"free_invoice_limit"`
	HistoryLimit     int   `mapstructure:"history_limit"`
	MinOrderMinor    int64 `mapstructure:"min_order_minor"`
}

// Load reads configuration from environment variables with the INVOGEN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVOGEN")
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
	v.SetDefault("db.user", "invogen")
	v.SetDefault("db.password", "invogen_secret")
	v.SetDefault("db.name", "invogen_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "invogen")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "invogen-logos")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_logo_size_mb", 2)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "invoice@invogen.dev")
	v.SetDefault("email.from_name", "Invoice Generator")
	v.SetDefault("email.frontend_url", "http://localhost:3000")
	v.SetDefault("email.timeout_secs", 30)

	// Razorpay defaults
	v.SetDefault("razorpay.key_id", "")
	v.SetDefault("razorpay.key_secret", "")
	v.SetDefault("razorpay.webhook_secret", "webhook_secret")
	v.SetDefault("razorpay.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("razorpay.timeout_secs", 15)

	// Billing defaults: 2 free invoices, 50-entry history, minimum 1 rupee order
	v.SetDefault("billing.free_invoice_limit", 2)
	v.SetDefault("billing.history_limit", 50)
	v.SetDefault("billing.min_order_minor", 100)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "INVOGEN_SERVER_PORT",
		"server.read_timeout":       "INVOGEN_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "INVOGEN_SERVER_WRITE_TIMEOUT",
		"server.environment":        "INVOGEN_SERVER_ENVIRONMENT",
		"db.host":                   "INVOGEN_DB_HOST",
		"db.port":                   "INVOGEN_DB_PORT",
		"db.user":                   "INVOGEN_DB_USER",
		"db.password":               "INVOGEN_DB_PASSWORD",
		"db.name":                   "INVOGEN_DB_NAME",
		"db.sslmode":                "INVOGEN_DB_SSLMODE",
		"db.max_open":               "INVOGEN_DB_MAX_OPEN",
		"db.max_idle":               "INVOGEN_DB_MAX_IDLE",
		"jwt.secret":                "INVOGEN_JWT_SECRET",
		"jwt.access_expiry":         "INVOGEN_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":        "INVOGEN_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                "INVOGEN_JWT_ISSUER",
		"s3.region":                 "INVOGEN_S3_REGION",
		"s3.bucket":                 "INVOGEN_S3_BUCKET",
		"s3.endpoint":               "INVOGEN_S3_ENDPOINT",
		"s3.access_key":             "INVOGEN_S3_ACCESS_KEY",
		"s3.secret_key":             "INVOGEN_S3_SECRET_KEY",
		"s3.max_logo_size_mb":       "INVOGEN_S3_MAX_LOGO_SIZE_MB",
		"s3.presign_expiry":         "INVOGEN_S3_PRESIGN_EXPIRY",
		"log.level":                 "INVOGEN_LOG_LEVEL",
		"log.format":                "INVOGEN_LOG_FORMAT",
		"cors.allowed_origins":      "INVOGEN_CORS_ALLOWED_ORIGINS",
		"email.provider":            "INVOGEN_EMAIL_PROVIDER",
		"email.region":              "INVOGEN_EMAIL_REGION",
		"email.from_address":        "INVOGEN_EMAIL_FROM_ADDRESS",
		"email.from_name":           "INVOGEN_EMAIL_FROM_NAME",
		"email.frontend_url":        "INVOGEN_EMAIL_FRONTEND_URL",
		"email.timeout_secs":        "INVOGEN_EMAIL_TIMEOUT_SECS",
		"razorpay.key_id":           "INVOGEN_RAZORPAY_KEY_ID",
		"razorpay.key_secret":       "INVOGEN_RAZORPAY_KEY_SECRET",
		"razorpay.webhook_secret":   "INVOGEN_RAZORPAY_WEBHOOK_SECRET",
		"razorpay.base_url":         "INVOGEN_RAZORPAY_BASE_URL",
		"razorpay.timeout_secs":     "INVOGEN_RAZORPAY_TIMEOUT_SECS",
		"billing.free_invoice_limit": "INVOGEN_BILLING_FREE_INVOICE_LIMIT",
		"billing.history_limit":      "INVOGEN_BILLING_HISTORY_LIMIT",
		"billing.min_order_minor":    "INVOGEN_BILLING_MIN_ORDER_MINOR",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVOGEN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOGEN_SERVER_PORT") == "" {
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
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxLogoSizeMB: v.GetInt64("s3.max_logo_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
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
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
		TimeoutSecs: v.GetInt("email.timeout_secs"),
	}
	cfg.Razorpay = RazorpayConfig{
		KeyID:         v.GetString("razorpay.key_id"),
		KeySecret:     v.GetString("razorpay.key_secret"),
		WebhookSecret: v.GetString("razorpay.webhook_secret"),
		BaseURL:       v.GetString("razorpay.base_url"),
		TimeoutSecs:   v.GetInt("razorpay.timeout_secs"),
	}
	cfg.Billing = BillingConfig{
		FreeInvoiceLimit: v.GetInt64("billing.free_invoice_limit"),
		HistoryLimit:     v.GetInt("billing.history_limit"),
		MinOrderMinor:    v.GetInt64("billing.min_order_minor"),
	}

	return cfg, nil
}
