package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"graphclick/internal/clickgate"
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	Click       ClickConfig
	Session     SessionConfig
	Journal     JournalConfig
}

type ClickConfig struct {
	DoubleClickWindow time.Duration
	PollInterval      time.Duration
	PollMaxAttempts   int
	// TargetOrigin is the origin every notification is addressed to. "*"
	// delivers to any parent page; set a concrete origin in production.
	TargetOrigin string
}

type SessionConfig struct {
	Capacity int
}

type JournalConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	return fromEnv(*port), nil
}

func fromEnv(port string) *Config {
	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			port = envPort
		} else {
			port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:        port,
		Env:         env,
		LogLevel:    firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), defaultLogLevel(env)),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Click: ClickConfig{
			DoubleClickWindow: envDuration("CLICK_DOUBLE_CLICK_WINDOW", clickgate.DefaultDoubleClickWindow),
			PollInterval:      envDuration("CLICK_POLL_INTERVAL", clickgate.DefaultPollInterval),
			PollMaxAttempts:   envInt("CLICK_POLL_MAX_ATTEMPTS", clickgate.DefaultMaxPollAttempts),
			TargetOrigin:      firstNonEmpty(strings.TrimSpace(os.Getenv("CLICK_TARGET_ORIGIN")), clickgate.WildcardOrigin),
		},
		Session: SessionConfig{
			Capacity: envInt("SESSION_CAPACITY", 1024),
		},
		Journal: JournalConfig{
			CacheSize: envInt("JOURNAL_CACHE_SIZE", 1024),
			CacheTTL:  envDuration("JOURNAL_CACHE_TTL", time.Minute),
		},
	}
}

func defaultLogLevel(env string) string {
	if strings.EqualFold(env, "local") {
		return "debug"
	}
	return "info"
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
