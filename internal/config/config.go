package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken    string
	DBDSN            string
	Environment      string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	MigrationsPath   string
	AnnounceInterval time.Duration
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    getEnv("ENV", "development"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}
	cfg.RedisDB = redisDB

	interval, err := time.ParseDuration(getEnv("ANNOUNCE_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("ANNOUNCE_INTERVAL must be a duration: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("ANNOUNCE_INTERVAL must be positive, got %s", interval)
	}
	cfg.AnnounceInterval = interval

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
