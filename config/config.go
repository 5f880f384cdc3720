package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Reminder ReminderConfig
}

type AppConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
	AutoMigrate  bool
}

// DSN returns a libpq style connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type AuthConfig struct {
	BcryptCost int
}

type ReminderConfig struct {
	Interval    time.Duration
	LockTTL     time.Duration
	Concurrency int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "clinic")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "168h")

	v.SetDefault("BCRYPT_COST", 12)

	v.SetDefault("REMINDER_INTERVAL", "5m")
	v.SetDefault("REMINDER_LOCK_TTL", "1m")
	v.SetDefault("REMINDER_CONCURRENCY", 4)
}

// LoadConfig reads the given .env file when present and lets the environment override it
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isMissingConfig(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	config := &Config{
		App: AppConfig{
			Port:           v.GetString("APP_PORT"),
			Env:            v.GetString("APP_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			AllowedOrigins: strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ","),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  v.GetDuration("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: v.GetDuration("JWT_REFRESH_EXPIRY"),
		},
		Auth: AuthConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Reminder: ReminderConfig{
			Interval:    v.GetDuration("REMINDER_INTERVAL"),
			LockTTL:     v.GetDuration("REMINDER_LOCK_TTL"),
			Concurrency: v.GetInt("REMINDER_CONCURRENCY"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func isMissingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.AccessExpiry <= 0 || c.JWT.RefreshExpiry <= 0 {
		return errors.New("JWT expiries must be positive")
	}
	if c.Reminder.Interval <= 0 {
		return errors.New("REMINDER_INTERVAL must be positive")
	}
	if c.Reminder.Concurrency < 1 {
		return errors.New("REMINDER_CONCURRENCY must be at least 1")
	}
	return nil
}
