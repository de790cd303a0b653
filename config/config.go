package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency   int
	RateLimitMs      int
	MaxRetries       int
	RetryBaseDelayMs int
	RetryJitterMs    int

	SourceChartURL       string
	SourceAppsLimit      int
	CompetitorLimit      int
	NavigationTimeoutSec int

	TranslateURL        string
	TranslateTimeoutSec int
	SourceLang          string
	TargetLang          string

	FillersPath   string
	CSVOutputPath string
	ChromeBin     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scout"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scout123"),
		PostgresDB:       getEnv("POSTGRES_DB", "scout_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelayMs: getEnvInt("RETRY_BASE_DELAY_MS", 1000),
		RetryJitterMs:    getEnvInt("RETRY_JITTER_MS", 500),

		SourceChartURL:       getEnv("SOURCE_CHART_URL", "https://play.google.com/store/apps/top"),
		SourceAppsLimit:      getEnvInt("SOURCE_APPS_LIMIT", 30),
		CompetitorLimit:      getEnvInt("COMPETITOR_LIMIT", 20),
		NavigationTimeoutSec: getEnvInt("NAVIGATION_TIMEOUT_SEC", 60),

		TranslateURL:        getEnv("TRANSLATE_URL", "https://translate.googleapis.com/translate_a/single"),
		TranslateTimeoutSec: getEnvInt("TRANSLATE_TIMEOUT_SEC", 10),
		SourceLang:          getEnv("SOURCE_LANG", "en"),
		TargetLang:          getEnv("TARGET_LANG", "ru"),

		FillersPath:   getEnv("FILLERS_PATH", ""),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_source_apps.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// NavigationTimeout is the per-page timeout for browser navigation.
func (c *Config) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSec) * time.Second
}

// TranslateTimeout is the per-call timeout for the translation endpoint.
func (c *Config) TranslateTimeout() time.Duration {
	return time.Duration(c.TranslateTimeoutSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
