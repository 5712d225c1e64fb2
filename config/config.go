package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

var (
	ErrMissingSecret = errors.New("config: access and refresh secrets are required")
	ErrSameSecret    = errors.New("config: access and refresh secrets must differ")
	ErrInvalidTTL    = errors.New("config: invalid token lifetime")
)

type ServerConfig struct {
	Port          string `yaml:"port" env:"PORT"`
	AllowedOrigin string `yaml:"allowedOrigin" env:"ALLOWED_ORIGIN"`
}

type AuthConfig struct {
	AccessSecret  string        `yaml:"accessSecret" env:"ACCESS_SECRET_KEY"`
	RefreshSecret string        `yaml:"refreshSecret" env:"REFRESH_SECRET_KEY"`
	AccessTTL     time.Duration `yaml:"accessTTL" env:"ACCESS_TOKEN_TTL"`
	RefreshTTL    time.Duration `yaml:"refreshTTL" env:"REFRESH_TOKEN_TTL"`
}

type GoogleConfig struct {
	ClientID string `yaml:"clientID" env:"GOOGLE_CLIENT_ID"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Username string `yaml:"username" env:"DB_USERNAME"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     string `yaml:"port" env:"DB_PORT"`
	Database string `yaml:"database" env:"DB_NAME"`
	// sqlite使用的檔案路徑
	Path string `yaml:"path" env:"DB_PATH"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	Database int    `yaml:"database" env:"REDIS_DB"`
}

type MailConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"MAIL_FROM"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Google   GoogleConfig   `yaml:"google"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Mail     MailConfig     `yaml:"mail"`
	Log      LogConfig      `yaml:"log"`
}

// 讀取設定檔(可不存在)，再以環境變數覆蓋，最後補上預設值並檢查
func LoadConfig(filename string) (Config, error) {
	var config Config

	file, err := os.Open(filename)
	switch {
	case err == nil:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return config, fmt.Errorf("decode %s: %w", filename, err)
		}
	case errors.Is(err, os.ErrNotExist):
		//沒有設定檔時只使用環境變數
	default:
		return config, err
	}

	if err := env.Parse(&config); err != nil {
		return config, fmt.Errorf("parse environment: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "3000"
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = 20 * time.Second
	}
	if c.Auth.RefreshTTL == 0 {
		c.Auth.RefreshTTL = 30 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Port == "" {
		c.Database.Port = "3306"
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c Config) Validate() error {
	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return ErrMissingSecret
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return ErrSameSecret
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL < c.Auth.AccessTTL {
		return fmt.Errorf("%w: access %s, refresh %s", ErrInvalidTTL, c.Auth.AccessTTL, c.Auth.RefreshTTL)
	}
	return nil
}
