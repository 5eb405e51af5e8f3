package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// DefaultSQLitePath is used when the sqlite driver is selected without a path.
const DefaultSQLitePath = "comedor.db"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret     string
	JWTExpiration time.Duration

	// Allowed browser origins; empty means the development defaults.
	CORSOrigins []string

	// Import event stream; disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string

	// Archive bucket for uploaded sheets; disabled when empty.
	S3Bucket  string
	AWSRegion string

	LogLevel string
	LogFile  string

	// Seeded operator account.
	AdminUsername string
	AdminPassword string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.WithFields(log.Fields{"environment": GetEnvironment(), "db_driver": cfg.DBDriver}).Debug("Configuration loaded")
	return cfg, nil
}

// LoadEnv reads the environment and applies defaults without validating.
// Commands that only touch the database validate with ValidateDatabase.
func LoadEnv() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		loadValues(cfg, envOnly)
	case Development, Test:
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		loadValues(cfg, envThenSecret)
	case Production:
		loadValues(cfg, envThenSecret)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	applyDefaults(cfg, env)
	return cfg, nil
}

type lookupFunc func(envKey, secret string) string

func envOnly(envKey, _ string) string {
	return strings.TrimSpace(os.Getenv(envKey))
}

// envThenSecret prefers the environment and falls back to a Docker secret.
func envThenSecret(envKey, secret string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if secret == "" {
		return ""
	}
	return readSecret(secret)
}

func loadValues(cfg *Config, get lookupFunc) {
	cfg.ServerPort = get("SERVER_PORT", "server_port")
	cfg.ServerHost = get("SERVER_HOST", "server_host")

	cfg.DBDriver = strings.ToLower(get("DB_DRIVER", ""))
	cfg.DBHost = get("DB_HOST", "db_host")
	cfg.DBPort = get("DB_PORT", "db_port")
	cfg.DBUser = get("DB_USER", "db_user")
	cfg.DBPassword = get("DB_PASSWORD", "db_password")
	cfg.DBName = get("DB_NAME", "db_name")
	cfg.DBSSLMode = get("DB_SSL_MODE", "db_ssl_mode")
	cfg.SQLitePath = get("SQLITE_PATH", "")

	cfg.RedisHost = get("REDIS_HOST", "redis_host")
	cfg.RedisPort = get("REDIS_PORT", "redis_port")
	cfg.RedisPassword = get("REDIS_PASSWORD", "redis_password")
	cfg.RedisURL = get("REDIS_URL", "redis_url")
	cfg.RedisDB = atoiDefault(get("REDIS_DB", ""), 0)

	cfg.JWTSecret = get("JWT_SECRET", "jwt_secret")
	if raw := get("JWT_EXPIRATION", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.JWTExpiration = d
		} else {
			log.Warnf("Ignoring invalid JWT_EXPIRATION %q: %v", raw, err)
		}
	}

	cfg.CORSOrigins = splitList(get("CORS_ORIGINS", ""))
	cfg.KafkaBrokers = splitList(get("KAFKA_BROKERS", ""))
	cfg.KafkaTopic = get("KAFKA_TOPIC", "")
	cfg.S3Bucket = get("S3_BUCKET_NAME", "")
	cfg.AWSRegion = get("AWS_REGION", "")
	cfg.LogLevel = get("LOG_LEVEL", "")
	cfg.LogFile = get("LOG_FILE", "")

	cfg.AdminUsername = get("ADMIN_USERNAME", "")
	cfg.AdminPassword = get("ADMIN_PASSWORD", "admin_password")
}

func applyDefaults(cfg *Config, env Environment) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "postgres"
	}
	if cfg.DBDriver == "sqlite" && cfg.SQLitePath == "" {
		cfg.SQLitePath = DefaultSQLitePath
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if cfg.JWTExpiration == 0 {
		cfg.JWTExpiration = time.Hour
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "menu.imported"
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AdminPassword == "" && env != Production {
		cfg.AdminPassword = "admin123"
	}
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
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

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// atoiDefault parses n or returns def.
func atoiDefault(n string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
		return v
	}
	return def
}
