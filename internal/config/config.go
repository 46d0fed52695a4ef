package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers understood by bootstrap
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		URL             string `yaml:"url" env:"DATABASE_URL"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		ConnectTimeout  string `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Mongo struct {
		URI      string `yaml:"uri" env:"MONGO_URI"`
		Database string `yaml:"database" env:"MONGO_DATABASE"`
	} `yaml:"mongo"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	Session struct {
		Secret     string `yaml:"secret" env:"SESSION_SECRET"`
		CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
		MaxAge     string `yaml:"max_age" env:"SESSION_MAX_AGE"`
		Secure     bool   `yaml:"secure" env:"SESSION_SECURE"`
	} `yaml:"session"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Seed struct {
		AdminUsername string `yaml:"admin_username" env:"SEED_ADMIN_USERNAME"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		AdminFullName string `yaml:"admin_full_name" env:"SEED_ADMIN_FULL_NAME"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5001"
	config.Server.Mode = "development"

	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "catequesis"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.ConnectTimeout = "5s"
	config.Database.MigrationsDir = "migrations"

	config.Mongo.URI = "mongodb://localhost:27017"
	config.Mongo.Database = "Proyecto_Integrador"

	config.Session.CookieName = "catequesis_session"
	config.Session.MaxAge = "12h"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.URL == "" && config.Database.Host == "" {
			return fmt.Errorf("database url or host is required")
		}
	case DriverMongo:
		if config.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}

	if _, err := time.ParseDuration(config.Session.MaxAge); err != nil {
		return fmt.Errorf("invalid session max age format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnectTimeout); err != nil {
		return fmt.Errorf("invalid database connect timeout format: %w", err)
	}

	if (config.Seed.AdminUsername == "") != (config.Seed.AdminPassword == "") {
		return fmt.Errorf("seed admin username and password must be set together")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Mode) == "production"
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
