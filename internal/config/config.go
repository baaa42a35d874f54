package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type SemobConfig struct {
	BaseURL   string
	BasicUser string
	BasicPass string
	Timeout   time.Duration
}

type StoreConfig struct {
	DSN string
}

type AuthConfig struct {
	AccessSecret string
	SessionTTL   time.Duration
}

type FormConfig struct {
	MaxAttachments int
	PreviewDir     string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	Semob       SemobConfig
	Store       StoreConfig
	Auth        AuthConfig
	Form        FormConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Semob: SemobConfig{
			BaseURL:   v.GetString("SEMOB_BASE_URL"),
			BasicUser: v.GetString("SEMOB_BASIC_USER"),
			BasicPass: v.GetString("SEMOB_BASIC_PASS"),
			Timeout:   v.GetDuration("SEMOB_TIMEOUT"),
		},
		Store: StoreConfig{
			DSN: v.GetString("STORE_DSN"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			SessionTTL:   v.GetDuration("SESSION_TTL"),
		},
		Form: FormConfig{
			MaxAttachments: v.GetInt("AUTO_MAX_ATTACHMENTS"),
			PreviewDir:     v.GetString("PREVIEW_DIR"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "127.0.0.1"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Semob.Timeout <= 0 {
		cfg.Semob.Timeout = 10 * time.Second
	}
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = "autuacao.db"
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 12 * time.Hour
	}
	if cfg.Form.MaxAttachments <= 0 {
		// The protocol endpoint accepts a single file per submission.
		cfg.Form.MaxAttachments = 1
	}
	if cfg.Form.PreviewDir == "" {
		cfg.Form.PreviewDir = "previews"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Semob.BaseURL == "" {
		return fmt.Errorf("SEMOB_BASE_URL is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
