package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration

	AppPort string
	AppEnv  string

	JWTSecret         string
	AdminPasswordHash string

	AdminWhatsAppNumber string
	CallMeBotAPIKey     string
	SiteBaseURL         string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CartTTL:       hoursFromEnv("CART_TTL_HOURS", 72),

		AppPort: os.Getenv("APP_PORT"),
		AppEnv:  os.Getenv("APP_ENV"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		AdminWhatsAppNumber: os.Getenv("ADMIN_WHATSAPP_NUMBER"),
		CallMeBotAPIKey:     os.Getenv("CALLMEBOT_API_KEY"),
		SiteBaseURL:         os.Getenv("SITE_BASE_URL"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}

	return cfg
}

func hoursFromEnv(key string, fallback int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Hour
	}
	hours, err := strconv.Atoi(v)
	if err != nil || hours <= 0 {
		return time.Duration(fallback) * time.Hour
	}
	return time.Duration(hours) * time.Hour
}
