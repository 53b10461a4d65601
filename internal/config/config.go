package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	RedisHost         string
	RedisPort         string
	SessionSecret     string
	GinMode           string
	Port              string
	InitAdminUsername string
	InitAdminPassword string
}

func Load() *Config {
	// Best-effort: a missing .env is fine in production
	_ = godotenv.Load()

	return &Config{
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "votacontrol"),
		DBPassword:        getEnv("DB_PASSWORD", "votacontrol"),
		DBName:            getEnv("DB_NAME", "votacontrol"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		SessionSecret:     getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		Port:              getEnv("PORT", "8080"),
		InitAdminUsername: getEnv("INIT_ADMIN_USERNAME", "admin"),
		InitAdminPassword: getEnv("INIT_ADMIN_PASSWORD", "admin123"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
