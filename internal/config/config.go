package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Pipeline PipelineConfig
	Fetch    FetchConfig
	LogLevel string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Enabled  bool
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Enabled bool
}

// RedisConfig holds the summary cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Enabled  bool
}

// PipelineConfig locates the raw input and the two output tables
type PipelineConfig struct {
	DataDir      string
	RawFile      string
	CleanedFile  string
	SummaryFile  string
	Format       string
	LookbackDays int
}

// FetchConfig controls price acquisition
type FetchConfig struct {
	Provider      string
	PolygonAPIKey string
	Workers       int
	Tickers       []models.Security
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stockdash"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Enabled:  getEnvBool("DB_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "stock-pipeline-events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "stockdash-pipeline"),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_TTL", 10*time.Minute),
			Enabled:  getEnvBool("REDIS_ENABLED", false),
		},
		Pipeline: PipelineConfig{
			DataDir:      getEnv("DATA_DIR", "data"),
			RawFile:      getEnv("RAW_FILE", "stock_data_raw.csv"),
			CleanedFile:  getEnv("CLEANED_FILE", "stock_data_cleaned"),
			SummaryFile:  getEnv("SUMMARY_FILE", "summary_stats"),
			Format:       getEnv("OUTPUT_FORMAT", "csv"),
			LookbackDays: getEnvInt("LOOKBACK_DAYS", 730),
		},
		Fetch: FetchConfig{
			Provider:      getEnv("FETCH_PROVIDER", "yahoo"),
			PolygonAPIKey: getEnv("POLYGON_API_KEY", ""),
			Workers:       getEnvInt("FETCH_WORKERS", 4),
			Tickers:       parseTickers(getEnv("TICKERS", "")),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// RawPath is the location of the raw observation table
func (p *PipelineConfig) RawPath() string {
	return filepath.Join(p.DataDir, p.RawFile)
}

// CleanedPath is the location of the enriched table for the given extension
func (p *PipelineConfig) CleanedPath(ext string) string {
	return filepath.Join(p.DataDir, p.CleanedFile+"."+ext)
}

// SummaryPath is the location of the summary table for the given extension
func (p *PipelineConfig) SummaryPath(ext string) string {
	return filepath.Join(p.DataDir, p.SummaryFile+"."+ext)
}

// Addr is the listen address of the HTTP server
func (s *ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// parseTickers reads "SYM:Name,SYM:Name"; a bare symbol uses itself as the
// name. Empty input yields the default universe.
func parseTickers(s string) []models.Security {
	if strings.TrimSpace(s) == "" {
		out := make([]models.Security, len(models.DefaultSecurities))
		copy(out, models.DefaultSecurities)
		return out
	}
	var out []models.Security
	for _, item := range splitList(s) {
		sym, name, ok := strings.Cut(item, ":")
		sym = strings.TrimSpace(sym)
		name = strings.TrimSpace(name)
		if sym == "" {
			continue
		}
		if !ok || name == "" {
			name = sym
		}
		out = append(out, models.Security{Ticker: sym, Company: name})
	}
	return out
}

// Validate reports settings that would make every command fail
func (c *Config) Validate() error {
	if c.Pipeline.LookbackDays <= 0 {
		return fmt.Errorf("LOOKBACK_DAYS must be positive, got %d", c.Pipeline.LookbackDays)
	}
	if c.Fetch.Workers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive, got %d", c.Fetch.Workers)
	}
	if len(c.Fetch.Tickers) == 0 {
		return fmt.Errorf("TICKERS contains no symbols")
	}
	switch strings.ToLower(c.Fetch.Provider) {
	case "yahoo":
	case "polygon":
		if c.Fetch.PolygonAPIKey == "" {
			return fmt.Errorf("POLYGON_API_KEY is required for the polygon provider")
		}
	default:
		return fmt.Errorf("unknown FETCH_PROVIDER %q", c.Fetch.Provider)
	}
	switch strings.ToLower(c.Pipeline.Format) {
	case "csv", "parquet", "json":
	default:
		return fmt.Errorf("unknown OUTPUT_FORMAT %q", c.Pipeline.Format)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
