// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TwilioConfig struct {
	AccountSID     string `yaml:"account_sid"`
	AuthToken      string `yaml:"auth_token"`
	WhatsAppNumber string `yaml:"whatsapp_number"` // E.164, without the whatsapp: prefix
	ValidateSig    bool   `yaml:"validate_signature"`
}

type EmailConfig struct {
	ResendAPIKey string `yaml:"resend_api_key"`
	From         string `yaml:"from"`
}

type DigestConfig struct {
	Hour         int    `yaml:"hour"`          // local hour the evening digest fires
	ToleranceMin int    `yaml:"tolerance_min"` // minutes around Hour a job is still honored
	Timezone     string `yaml:"timezone"`
	HorizonDays  int    `yaml:"horizon_days"`
	Parallelism  int    `yaml:"parallelism"` // concurrent user fan-out
}

type AssistantConfig struct {
	RolloverHour    int `yaml:"rollover_hour"`      // human day starts at this local hour
	RateLimitPerMin int `yaml:"rate_limit_per_min"` // inbound messages per phone per minute
}

type AIConfig struct {
	OpenAIKey string `yaml:"openai_key"`
	Model     string `yaml:"model"`
}

type AlertsConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type CronConfig struct {
	Secret string `yaml:"secret"` // bearer token for the external cron trigger
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	Email     EmailConfig     `yaml:"email"`
	Digest    DigestConfig    `yaml:"digest"`
	Assistant AssistantConfig `yaml:"assistant"`
	AI        AIConfig        `yaml:"ai"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Admin     AdminConfig     `yaml:"admin"`
	Cron      CronConfig      `yaml:"cron"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

func parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Digest.Hour <= 0 || cfg.Digest.Hour > 23 {
		cfg.Digest.Hour = 19
	}
	if cfg.Digest.ToleranceMin <= 0 {
		cfg.Digest.ToleranceMin = 10
	}
	if cfg.Digest.Timezone == "" {
		cfg.Digest.Timezone = "Asia/Kolkata"
	}
	if cfg.Digest.HorizonDays <= 0 {
		cfg.Digest.HorizonDays = 7
	}
	if cfg.Digest.Parallelism <= 0 {
		cfg.Digest.Parallelism = 4
	}
	if cfg.Assistant.RolloverHour <= 0 || cfg.Assistant.RolloverHour > 23 {
		cfg.Assistant.RolloverHour = 5
	}
	if cfg.Assistant.RateLimitPerMin <= 0 {
		cfg.Assistant.RateLimitPerMin = 20
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 8080
	}
}

func validate(cfg *Config) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" {
		return errors.New("twilio.account_sid and twilio.auth_token are required")
	}
	if cfg.Twilio.WhatsAppNumber == "" {
		return errors.New("twilio.whatsapp_number is required")
	}
	return nil
}
