// internal/config/config.go loads process settings from the environment.
// A .env file in the working directory is read first by the godotenv autoload
// import in each main package.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the settings shared by the server and the historian.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	DefaultPlayerCount   int
	ReshuffleOnEmptyDeck bool

	HistorianEnabled bool
	RedisAddr        string
	RedisDB          int
	QueueName        string
	BatchSize        int
	FlushDelay       time.Duration
	Inactivity       time.Duration // duration until an idle game is marked abandoned
}

// Load reads Config from the environment, applying defaults for unset keys.
func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("SKYJO_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: databaseURL(),

		DefaultPlayerCount:   getEnvInt("DEFAULT_PLAYER_COUNT", 4),
		ReshuffleOnEmptyDeck: getEnvBool("RESHUFFLE_ON_EMPTY_DECK", true),

		HistorianEnabled: getEnvBool("HISTORIAN_ENABLED", false),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		QueueName:        getEnv("HISTORIAN_QUEUE_NAME", "skyjo_actions"),
		BatchSize:        getEnvPositiveInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay:       time.Duration(getEnvPositiveInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		Inactivity:       time.Duration(getEnvPositiveInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// IsProduction reports whether SKYJO_ENV is "production".
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NewLogger builds the process logger. Production logs are JSON; anything
// else uses the text formatter with full timestamps.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// databaseURL prefers DATABASE_URL and falls back to the POSTGRES_*/PG_* parts.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	if os.Getenv("PG_HOST") == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}

// getEnvPositiveInt is getEnvInt for values that must be greater than zero.
func getEnvPositiveInt(key string, defVal int) int {
	if i := getEnvInt(key, defVal); i > 0 {
		return i
	}
	return defVal
}

func getEnvBool(key string, defVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defVal
	}
	return b
}
