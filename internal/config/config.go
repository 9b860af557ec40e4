package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port          string
	StorageDriver string
	MongoURI      string
	MongoDB       string
	LogLevel      string
	CORSOrigins   []string
	PageSize      int

	JWTSecret       string
	TokenExpiry     time.Duration
	RefreshTokenTTL time.Duration

	TelegramAPIURL        string
	TelegramBotToken      string
	TelegramWebhookSecret string
	TelegramTimeout       time.Duration

	ReminderTimezone string
	ReminderSchedule string
	CleanupSchedule  string
}

// LoadConfig reads a .env file when present and falls back to process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		StorageDriver: getEnv("STORAGE_DRIVER", StorageMongo),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "habit_tracker"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		PageSize:      getEnvInt("PAGE_SIZE", 2),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenExpiry:     getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 24*time.Hour),

		TelegramAPIURL:        getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		TelegramTimeout:       getEnvDuration("TELEGRAM_TIMEOUT", 5*time.Second),

		ReminderTimezone: getEnv("REMINDER_TIMEZONE", "Local"),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "* * * * *"),
		CleanupSchedule:  getEnv("CLEANUP_SCHEDULE", "0 3 * * *"),
	}
}

// Location resolves ReminderTimezone, falling back to the server's local zone.
func (c *Config) Location() *time.Location {
	if c.ReminderTimezone == "" || c.ReminderTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		logrus.WithError(err).WithField("timezone", c.ReminderTimezone).Warn("Unknown reminder timezone, using local time")
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		logrus.WithField(key, value).Warn("Invalid integer setting, using default")
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logrus.WithField(key, value).Warn("Invalid duration setting, using default")
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
