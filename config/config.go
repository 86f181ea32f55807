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

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort string
	ServerHost string
	// BaseURL is the public origin used to build absolute links (short links, media).
	BaseURL string

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	MigrationsDir string

	// Redis is optional; rate limiting and token revocation fall back to in-process behaviour without it.
	RedisURL string

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string

	// Media storage
	StorageBackend string
	MediaRoot      string
	MediaURL       string
	S3Bucket       string
	AWSRegion      string
	S3PublicURL    string

	PDFFontPath string

	LogLevel  string
	LogFormat string

	// RateLimitWrites is the number of recipe writes a user may make per hour.
	RateLimitWrites int
}

// secretNames lists the settings that production reads from the secrets directory only.
var secretNames = map[string]bool{
	"DB_USER":     true,
	"DB_PASSWORD": true,
	"JWT_SECRET":  true,
	"REDIS_URL":   true,
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	var lookup func(name string) string
	switch env {
	case CI:
		lookup = os.Getenv
	case Development, Test:
		// A missing .env file is fine; the process environment still applies.
		_ = godotenv.Load()
		lookup = func(name string) string {
			if v := os.Getenv(name); v != "" {
				return v
			}
			return readSecret(strings.ToLower(name))
		}
	case Production:
		lookup = func(name string) string {
			if secretNames[name] {
				return readSecret(strings.ToLower(name))
			}
			return os.Getenv(name)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg, err := load(env, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(env Environment, lookup func(string) string) (*Config, error) {
	get := func(name, def string) string {
		if v := strings.TrimSpace(lookup(name)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Env:            env,
		ServerPort:     get("SERVER_PORT", "8080"),
		ServerHost:     get("SERVER_HOST", ""),
		DBDriver:       get("DB_DRIVER", "postgres"),
		DBHost:         get("DB_HOST", ""),
		DBPort:         get("DB_PORT", "5432"),
		DBUser:         get("DB_USER", ""),
		DBPassword:     get("DB_PASSWORD", ""),
		DBName:         get("DB_NAME", ""),
		DBSSLMode:      get("DB_SSL_MODE", "disable"),
		SQLitePath:     get("SQLITE_PATH", "foodgram.db"),
		MigrationsDir:  get("MIGRATIONS_DIR", "migrations"),
		RedisURL:       get("REDIS_URL", ""),
		JWTSecret:      get("JWT_SECRET", ""),
		StorageBackend: get("STORAGE_BACKEND", "local"),
		MediaRoot:      get("MEDIA_ROOT", "media"),
		MediaURL:       get("MEDIA_URL", "/media/"),
		S3Bucket:       get("S3_BUCKET_NAME", ""),
		AWSRegion:      get("AWS_REGION", ""),
		S3PublicURL:    strings.TrimSuffix(get("S3_PUBLIC_URL", ""), "/"),
		PDFFontPath:    get("PDF_FONT_PATH", ""),
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFormat:      get("LOG_FORMAT", "json"),
	}

	cfg.BaseURL = strings.TrimSuffix(get("BASE_URL", "http://localhost:"+cfg.ServerPort), "/")

	ttl, err := time.ParseDuration(get("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.JWTTTL = ttl

	limit, err := strconv.Atoi(get("RATE_LIMIT_WRITES", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WRITES: %w", err)
	}
	cfg.RateLimitWrites = limit

	for _, origin := range strings.Split(get("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds a libpq-style connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
