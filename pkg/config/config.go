package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Price sources
const (
	PriceSourceDatabase = "database"
	PriceSourceNaver    = "naver"
	PriceSourceYahoo    = "yahoo"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Price data
	PriceSource string // database, naver, yahoo
	Naver       NaverConfig
	Yahoo       YahooConfig

	// Simulation engine
	Simulation SimulationConfig

	// Price collection
	Collector CollectorConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NaverConfig holds Naver Finance configuration
type NaverConfig struct {
	BaseURL   string
	ChartURL  string // fchart siseJson API
	RateLimit int    // requests per second
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string
	RateLimit int // requests per second
}

// SimulationConfig holds simulation engine tuning
type SimulationConfig struct {
	Workers     int           // 0 = runtime.NumCPU()
	BatchSize   int           // 0 = risk.DefaultBatchSize
	Timeout     time.Duration // 요청 1건 wall-clock 상한
	ProfilePath string        // YAML 프로파일 (빈 값 = 기본 프로파일)
	HistoryDays int           // 가격 조회 기간 (lookback 여유분 포함)
}

// CollectorConfig holds scheduled price collection settings
type CollectorConfig struct {
	Symbols  []string
	Schedule string // cron (초 포함 6필드)
	Days     int    // 1회 수집 기간
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "mcrisk"),
			User:            getEnv("DB_USER", "mcrisk"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Price data
		PriceSource: strings.ToLower(getEnv("PRICE_SOURCE", PriceSourceDatabase)),
		Naver: NaverConfig{
			BaseURL:   getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
			ChartURL:  getEnv("NAVER_CHART_URL", "https://fchart.stock.naver.com"),
			RateLimit: getEnvAsInt("NAVER_RATE_LIMIT", 10),
		},
		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			RateLimit: getEnvAsInt("YAHOO_RATE_LIMIT", 5),
		},

		// Simulation engine
		Simulation: SimulationConfig{
			Workers:     getEnvAsInt("SIM_WORKERS", 0),
			BatchSize:   getEnvAsInt("SIM_BATCH_SIZE", 0),
			Timeout:     getEnvAsDuration("SIM_TIMEOUT", "30s"),
			ProfilePath: getEnv("SIM_PROFILE", ""),
			HistoryDays: getEnvAsInt("SIM_HISTORY_DAYS", 800),
		},

		// Price collection
		Collector: CollectorConfig{
			Symbols:  getEnvAsList("COLLECT_SYMBOLS"),
			Schedule: getEnv("COLLECT_SCHEDULE", "0 0 18 * * 1-5"),
			Days:     getEnvAsInt("COLLECT_DAYS", 30),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.PriceSource {
	case PriceSourceDatabase:
		// Database URL is required only when prices come from Postgres
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when PRICE_SOURCE=database")
		}
	case PriceSourceNaver, PriceSourceYahoo:
	default:
		return fmt.Errorf("PRICE_SOURCE must be one of: database, naver, yahoo")
	}

	if c.Simulation.Workers < 0 {
		return fmt.Errorf("SIM_WORKERS must be >= 0")
	}
	if c.Simulation.BatchSize < 0 {
		return fmt.Errorf("SIM_BATCH_SIZE must be >= 0")
	}
	if c.Simulation.Timeout <= 0 {
		return fmt.Errorf("SIM_TIMEOUT must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList "005930, 000660" → ["005930", "000660"]
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
