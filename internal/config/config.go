package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения.
// Значение неизменяемое и передается компонентам через конструкторы.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Канал pub/sub для событий по инцидентам
	IncidentsChannel string `env:"INCIDENTS_CHANNEL" envDefault:"incidents"`

	// Rate Limit Config
	RateLimitWindow      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitMaxAttempts int           `env:"RATE_LIMIT_MAX_ATTEMPTS" envDefault:"5"`

	// Notification Delivery Config
	NotifyWebhookURL    string        `env:"NOTIFY_WEBHOOK_URL"`
	NotifyWebhookSecret string        `env:"NOTIFY_WEBHOOK_SECRET"`
	NotifyTimeout       time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	NotifyMaxRetries    int           `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`
	NotifyBaseDelay     time.Duration `env:"NOTIFY_BASE_DELAY" envDefault:"1s"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		IncidentsChannel:     getEnv("INCIDENTS_CHANNEL", "incidents"),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		RateLimitMaxAttempts: getEnvAsInt("RATE_LIMIT_MAX_ATTEMPTS", 5),
		NotifyWebhookURL:     os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyWebhookSecret:  os.Getenv("NOTIFY_WEBHOOK_SECRET"),
		NotifyTimeout:        getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		NotifyMaxRetries:     getEnvAsInt("NOTIFY_MAX_RETRIES", 3),
		NotifyBaseDelay:      getEnvAsDuration("NOTIFY_BASE_DELAY", time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
