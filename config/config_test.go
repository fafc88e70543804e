package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:      ServerConfig{Port: "5000"},
		Email:       EmailConfig{Provider: "smtp", SendTimeout: 10 * time.Second},
		Attachments: AttachmentsConfig{Storage: "local", MaxBytes: 1024},
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: true,
		},
		{
			name: "debug gin mode",
			config: &Config{
				Server: ServerConfig{GinMode: "debug"},
			},
			expected: true,
		},
		{
			name: "production environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "production"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsDevelopment())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid smtp without credentials",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "PORT is required",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Email.Provider = "pigeon" },
			wantErr: "EMAIL_PROVIDER",
		},
		{
			name:    "ses without region",
			mutate:  func(c *Config) { c.Email.Provider = "ses" },
			wantErr: "SES_REGION",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Email.SendTimeout = 0 },
			wantErr: "EMAIL_SEND_TIMEOUT",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Attachments.Storage = "s3" },
			wantErr: "S3_BUCKET",
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.Attachments.Storage = "ftp" },
			wantErr: "ATTACHMENT_STORAGE",
		},
		{
			name:    "recaptcha score out of range",
			mutate:  func(c *Config) { c.ReCAPTCHA.MinScore = 1.5 },
			wantErr: "RECAPTCHA_MIN_SCORE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DefaultsWithoutSMTP(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("SMTP_PASS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Secure)
	assert.Equal(t, 10*time.Second, cfg.Email.SendTimeout)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.ElementsMatch(t, []string{"SMTP_HOST", "SMTP_USER", "SMTP_PASS"}, cfg.SMTP.Missing())
}

func TestLoad_ResolvesAddresses(t *testing.T) {
	t.Setenv("SMTP_USER", "mailer@laxmi.example")
	t.Setenv("SMTP_FROM_EMAIL", "")
	t.Setenv("ADMIN_EMAIL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mailer@laxmi.example", cfg.SMTP.FromEmail)
	assert.Equal(t, "mailer@laxmi.example", cfg.Email.AdminEmail)
}

func TestLoad_NodeEnvAlias(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitList(" https://a.example, ,https://b.example "))
	assert.Equal(t, []string{}, splitList(""))
}
