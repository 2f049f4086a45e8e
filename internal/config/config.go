package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBConfig struct {
		DBHost     string `env:"STOREFRONT_DB_HOST"`
		DBPort     string `env:"STOREFRONT_DB_PORT"`
		DBUser     string `env:"STOREFRONT_DB_USER"`
		DBPassword string `env:"STOREFRONT_DB_PASSWORD"`
		DBName     string `env:"STOREFRONT_DB_NAME"`
		DBSSLMode  string `env:"STOREFRONT_DB_SSLMODE"`
	}

	ServerPort     int           `env:"STOREFRONT_HTTP_PORT"`
	JWTSecret      string        `env:"STOREFRONT_JWT_SECRET"`
	MigrationsPath string        `env:"STOREFRONT_MIGRATIONS_PATH"`
	CacheTTL       time.Duration `env:"STOREFRONT_CACHE_TTL"`
	CacheSweep     time.Duration `env:"STOREFRONT_CACHE_SWEEP_INTERVAL"`

	KafkaURL             string `env:"KAFKA_BROKER_URL"`
	KafkaOrderEventTopic string `env:"KAFKA_ORDER_EVENT_TOPIC"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL"`
	OutboxPollTimeout  time.Duration `env:"OUTBOX_POLL_TIMEOUT"`

	Payment struct {
		BaseURL      string        `env:"PAYMENT_BASE_URL"`
		ClientID     string        `env:"PAYMENT_CLIENT_ID"`
		ClientSecret string        `env:"PAYMENT_CLIENT_SECRET"`
		Currency     string        `env:"PAYMENT_CURRENCY"`
		ReturnURL    string        `env:"PAYMENT_RETURN_URL"`
		CancelURL    string        `env:"PAYMENT_CANCEL_URL"`
		Timeout      time.Duration `env:"PAYMENT_TIMEOUT"`
	}
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}

	cfg.DBConfig.DBHost = getEnvOrDefault("STOREFRONT_DB_HOST", "localhost")
	cfg.DBConfig.DBPort = getEnvOrDefault("STOREFRONT_DB_PORT", "5432")
	cfg.DBConfig.DBUser = getEnvOrDefault("STOREFRONT_DB_USER", "postgres")
	cfg.DBConfig.DBPassword = getEnvOrDefault("STOREFRONT_DB_PASSWORD", "postgres")
	cfg.DBConfig.DBName = getEnvOrDefault("STOREFRONT_DB_NAME", "storefront_db")
	cfg.DBConfig.DBSSLMode = getEnvOrDefault("STOREFRONT_DB_SSLMODE", "disable")

	port, err := strconv.Atoi(getEnvOrDefault("STOREFRONT_HTTP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid STOREFRONT_HTTP_PORT: %w", err)
	}
	cfg.ServerPort = port

	cfg.JWTSecret = getEnvOrDefault("STOREFRONT_JWT_SECRET", "dev-secret")
	cfg.MigrationsPath = getEnvOrDefault("STOREFRONT_MIGRATIONS_PATH", "file://migrations")

	cfg.CacheTTL, err = getEnvDuration("STOREFRONT_CACHE_TTL", "2m")
	if err != nil {
		return nil, err
	}
	cfg.CacheSweep, err = getEnvDuration("STOREFRONT_CACHE_SWEEP_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}

	cfg.KafkaURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaOrderEventTopic = getEnvOrDefault("KAFKA_ORDER_EVENT_TOPIC", "order_events")

	cfg.OutboxPollInterval, err = getEnvDuration("OUTBOX_POLL_INTERVAL", "5s")
	if err != nil {
		return nil, err
	}
	cfg.OutboxPollTimeout, err = getEnvDuration("OUTBOX_POLL_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg.Payment.BaseURL = getEnvOrDefault("PAYMENT_BASE_URL", "https://api-m.sandbox.paypal.com")
	cfg.Payment.ClientID = getEnvOrDefault("PAYMENT_CLIENT_ID", "")
	cfg.Payment.ClientSecret = getEnvOrDefault("PAYMENT_CLIENT_SECRET", "")
	cfg.Payment.Currency = getEnvOrDefault("PAYMENT_CURRENCY", "USD")
	cfg.Payment.ReturnURL = getEnvOrDefault("PAYMENT_RETURN_URL", "http://localhost:3000/checkout/return")
	cfg.Payment.CancelURL = getEnvOrDefault("PAYMENT_CANCEL_URL", "http://localhost:3000/checkout/cancel")
	cfg.Payment.Timeout, err = getEnvDuration("PAYMENT_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	raw := getEnvOrDefault(key, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.DBHost, c.DBConfig.DBPort, c.DBConfig.DBUser, c.DBConfig.DBPassword, c.DBConfig.DBName, c.DBConfig.DBSSLMode)
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("%s:%s@%s:%s/%s?sslmode=%s",
		c.DBConfig.DBUser, c.DBConfig.DBPassword, c.DBConfig.DBHost, c.DBConfig.DBPort, c.DBConfig.DBName, c.DBConfig.DBSSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return []string{c.KafkaURL}
}
