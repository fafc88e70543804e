package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Email         EmailConfig
	SMTP          SMTPConfig
	SES           SESConfig
	Attachments   AttachmentsConfig
	ReCAPTCHA     ReCAPTCHAConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

// EmailConfig describes who receives notifications and how they are sent.
type EmailConfig struct {
	Provider    string // smtp, ses or log
	AdminEmail  string
	CompanyName string
	SendTimeout time.Duration
}

// SMTPConfig mirrors the SMTP_* environment. Host, User and Password are only
// checked when a message is actually sent.
type SMTPConfig struct {
	Host      string
	Port      int
	Secure    bool
	User      string
	Password  string
	FromName  string
	FromEmail string
}

// Missing returns the names of required SMTP settings that are empty.
func (c SMTPConfig) Missing() []string {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.User == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.Password == "" {
		missing = append(missing, "SMTP_PASS")
	}
	return missing
}

type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type AttachmentsConfig struct {
	Storage         string // local or s3
	Dir             string
	MaxBytes        int64
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type ReCAPTCHAConfig struct {
	SecretKey string
	MinScore  float64 // v3 only; 0 disables the score check
}

type LoggingConfig struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type ObservabilityConfig struct {
	ExporterEndpoint string
	ServiceName      string
	ServiceNamespace string
	ServiceVersion   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "5000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("EMAIL_PROVIDER", "smtp")
	v.SetDefault("EMAIL_SEND_TIMEOUT", "10s")
	v.SetDefault("COMPANY_NAME", "Laxmi Electronics")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_SECURE", false)
	v.SetDefault("SMTP_FROM_NAME", "Laxmi Electronics")
	v.SetDefault("ATTACHMENT_STORAGE", "local")
	v.SetDefault("ATTACHMENT_MAX_BYTES", 10*1024*1024)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 14)
	v.SetDefault("O11Y_SERVICE_NAME", "laxmi-site-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "laxmi")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Existing deployments set NODE_ENV; it is accepted as an alias.
	_ = v.BindEnv("APP_ENV", "APP_ENV", "NODE_ENV") //nolint:errcheck // only fails without a key

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Email: EmailConfig{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("EMAIL_PROVIDER"))),
			AdminEmail:  v.GetString("ADMIN_EMAIL"),
			CompanyName: v.GetString("COMPANY_NAME"),
			SendTimeout: v.GetDuration("EMAIL_SEND_TIMEOUT"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Secure:    v.GetBool("SMTP_SECURE"),
			User:      v.GetString("SMTP_USER"),
			Password:  v.GetString("SMTP_PASS"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
		},
		SES: SESConfig{
			Region:          v.GetString("SES_REGION"),
			AccessKeyID:     v.GetString("SES_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("SES_SECRET_ACCESS_KEY"),
		},
		Attachments: AttachmentsConfig{
			Storage:         strings.ToLower(strings.TrimSpace(v.GetString("ATTACHMENT_STORAGE"))),
			Dir:             v.GetString("ATTACHMENT_DIR"),
			MaxBytes:        v.GetInt64("ATTACHMENT_MAX_BYTES"),
			Bucket:          v.GetString("S3_BUCKET"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			Region:          v.GetString("S3_REGION"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: v.GetString("RECAPTCHA_SECRET_KEY"),
			MinScore:  v.GetFloat64("RECAPTCHA_MIN_SCORE"),
		},
		Logging: LoggingConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Dir:        v.GetString("LOG_DIR"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint: v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:      v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace: v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:   v.GetString("O11Y_SERVICE_VERSION"),
		},
	}

	cfg.resolveAddresses()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveAddresses fills the sender and admin addresses from their fallbacks
// once, so nothing downstream has to repeat the lookup.
func (c *Config) resolveAddresses() {
	if c.SMTP.FromEmail == "" {
		c.SMTP.FromEmail = c.SMTP.User
	}
	if c.Email.AdminEmail == "" {
		c.Email.AdminEmail = c.SMTP.FromEmail
	}
}

// Validate checks server-level settings. SMTP credentials are intentionally
// not checked here: a missing host or password is reported per send.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Email.Provider {
	case "smtp", "ses", "log":
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of smtp, ses, log (got %q)", c.Email.Provider)
	}

	if c.Email.Provider == "ses" && c.SES.Region == "" {
		return fmt.Errorf("SES_REGION is required when EMAIL_PROVIDER=ses")
	}

	if c.Email.SendTimeout <= 0 {
		return fmt.Errorf("EMAIL_SEND_TIMEOUT must be positive")
	}

	switch c.Attachments.Storage {
	case "local":
	case "s3":
		if c.Attachments.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when ATTACHMENT_STORAGE=s3")
		}
	default:
		return fmt.Errorf("ATTACHMENT_STORAGE must be local or s3 (got %q)", c.Attachments.Storage)
	}

	if c.ReCAPTCHA.MinScore < 0 || c.ReCAPTCHA.MinScore > 1 {
		return fmt.Errorf("RECAPTCHA_MIN_SCORE must be between 0 and 1")
	}

	if c.Attachments.MaxBytes <= 0 {
		return fmt.Errorf("ATTACHMENT_MAX_BYTES must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
