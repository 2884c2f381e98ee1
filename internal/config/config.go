package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds all configuration for a service.
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Upload    UploadConfig
	Auth      AuthConfig
	Seed      SeedConfig
	Store     string
	LogLevel  string
	LogFormat string
	Metrics   bool
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout int
}

type UploadConfig struct {
	Dir         string
	MaxFileSize int64
	MaxFiles    int
}

type AuthConfig struct {
	APIKeys []string // Valid API keys; empty disables authentication
}

// Enabled reports whether write routes require an API key.
func (a AuthConfig) Enabled() bool {
	return len(a.APIKeys) > 0
}

type SeedConfig struct {
	ShopSources []string // Files or URLs of newline-delimited shop JSON, memory store only
}

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	uri := getEnv("MONGODB_URI", "mongodb://localhost:27017/shopdb")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 30),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 15),
		},
		Mongo: MongoConfig{
			URI:            uri,
			Database:       getEnv("MONGODB_DATABASE", DatabaseNameFromURI(uri, "shopdb")),
			ConnectTimeout: getEnvAsInt("MONGODB_CONNECT_TIMEOUT", 10),
		},
		Upload: UploadConfig{
			Dir:         getEnv("UPLOAD_DIR", "uploads"),
			MaxFileSize: int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE", 5000000)),
			MaxFiles:    getEnvAsInt("UPLOAD_MAX_FILES", 5),
		},
		Auth: AuthConfig{
			APIKeys: getEnvAsSlice("API_KEYS", nil),
		},
		Seed: SeedConfig{
			ShopSources: getEnvAsSlice("SHOP_SEED_SOURCES", nil),
		},
		Store:     strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		Metrics:   getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.Store {
	case StoreMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("invalid store driver: %s (must be mongo or memory)", c.Store)
	}

	if c.Upload.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be positive")
	}

	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// DatabaseNameFromURI extracts the database path segment of a MongoDB
// connection string, e.g. "shopdb" from mongodb://localhost:27017/shopdb?x=y.
func DatabaseNameFromURI(uri, fallback string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, "/")
	if i < 0 {
		return fallback
	}
	name := rest[i+1:]
	if j := strings.IndexAny(name, "?#"); j >= 0 {
		name = name[:j]
	}
	if name == "" {
		return fallback
	}
	return name
}

// Helper functions for reading environment variables

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

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
