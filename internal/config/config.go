package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB      DBConfig
	Session SessionConfig
	Server  ServerConfig
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type SessionConfig struct {
	Secret          string
	ExpirationHours int
	CookieName      string
	Secure          bool
}

type ServerConfig struct {
	Port        string
	ReadTimeout time.Duration
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load reads the environment, after merging a .env file from the working
// directory if one exists. Variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Driver:     getEnv("DB_DRIVER", DriverSQLite),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "yatube"),
			Password:   getEnv("DB_PASSWORD", "yatube_secret"),
			Name:       getEnv("DB_NAME", "yatube"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "yatube.db"),
		},
		Session: SessionConfig{
			Secret:          getEnv("SESSION_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("SESSION_EXPIRATION_HOURS", 24),
			CookieName:      getEnv("SESSION_COOKIE", "yatube_session"),
			Secure:          getEnvAsBool("SESSION_SECURE", false),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			ReadTimeout: getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
