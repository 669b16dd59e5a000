package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	RemotiveAPIURL string        `validate:"required,url"`
	SearchKeyword  string        `validate:"required"`
	FetchTimeout   time.Duration `validate:"gt=0"`
	UserAgent      string        `validate:"required"`

	CSVOutputPath string `validate:"required"`
	TopN          int    `validate:"gte=1"`

	ListenAddr   string `validate:"required"`
	SnapshotPath string `validate:"required"`
	ChromeBin    string
	LogLevel     string `validate:"oneof=debug info warn error"`

	PostgresEnabled  bool
	PostgresHost     string `validate:"required_if=PostgresEnabled true"`
	PostgresPort     string `validate:"required_if=PostgresEnabled true"`
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string `validate:"required_if=PostgresEnabled true"`
	PostgresSSLMode  string
	MaxRetries       int `validate:"gte=1"`
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		RemotiveAPIURL: getEnv("REMOTIVE_API_URL", "https://remotive.com/api/remote-jobs"),
		SearchKeyword:  getEnv("SEARCH_KEYWORD", "Python Developer"),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 20*time.Second),
		UserAgent:      getEnv("USER_AGENT", "job-trend-analyzer/1.0 (+https://remotive.com/api)"),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/jobs.csv"),
		TopN:          getEnvInt("TOP_N", 10),

		ListenAddr:   getEnv("LISTEN_ADDR", ":8501"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "./output/dashboard.png"),
		ChromeBin:    getEnv("CHROME_BIN", ""),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "jobs"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "jobs123"),
		PostgresDB:       getEnv("POSTGRES_DB", "jobs_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
	}
}

// Validate checks the struct tags and returns the first failing field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("20s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
