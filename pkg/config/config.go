package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Where the database settings came from
const (
	SourceVCAP   = "vcap_services"
	SourceTravis = "travis"
	SourceEnv    = "environment"
)

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string
	URI             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
	Source          string
}

// GetDSN returns the connection string for the configured driver.
// DATABASE_URI, when set, is returned untouched.
func (c *DBConfig) GetDSN() string {
	if c.URI != "" {
		return c.URI
	}

	switch c.Driver {
	case DriverMySQL:
		auth := c.User
		if c.Password != "" {
			auth += ":" + c.Password
		}
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			auth, c.Host, c.Port, c.DBName)
	case DriverSQLite:
		return c.DBName
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port      string
	Env       string
	BodyLimit string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// Load reads the optional .env file and then builds the configuration from
// environment variables.
func Load(serviceName string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	defaultDBLogLevel := logger.Error
	if env == "development" {
		defaultDBLogLevel = logger.Info
	}

	config := &Config{
		ServiceName: serviceName,
		Server: ServerConfig{
			Port:      getEnv("PORT", getEnv("SERVER_PORT", "8080")),
			Env:       env,
			BodyLimit: getEnv("BODY_LIMIT", "1M"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "shopcart"),
		},
	}

	db, err := loadDBConfig(defaultDBLogLevel)
	if err != nil {
		return nil, err
	}
	config.DB = *db

	return config, nil
}

func loadDBConfig(defaultLogLevel logger.LogLevel) (*DBConfig, error) {
	db := &DBConfig{
		URI:             getEnv("DATABASE_URI", ""),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
		LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", defaultLogLevel),
	}

	if vcap, ok := os.LookupEnv("VCAP_SERVICES"); ok {
		creds, err := parseVCAPServices(vcap)
		if err != nil {
			return nil, err
		}
		db.Driver = DriverMySQL
		db.Host = creds.Hostname
		db.Port = creds.Port.String()
		db.User = creds.Username
		db.Password = creds.Password
		db.DBName = creds.Name
		db.Source = SourceVCAP
		return db, nil
	}

	if _, ok := os.LookupEnv("TRAVIS"); ok {
		db.Driver = DriverMySQL
		db.Host = "localhost"
		db.Port = "3306"
		db.User = "root"
		db.Password = ""
		db.DBName = "development"
		db.Source = SourceTravis
		return db, nil
	}

	db.Driver = strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	db.Host = getEnv("DB_HOST", "localhost")
	db.User = getEnv("DB_USER", "postgres")
	db.Password = getEnv("DB_PASSWORD", "password")
	db.Source = SourceEnv

	switch db.Driver {
	case DriverPostgres:
		db.Port = getEnv("DB_PORT", "5432")
		db.DBName = getEnv("DB_NAME", "shopcarts")
	case DriverMySQL:
		db.Port = getEnv("DB_PORT", "3306")
		db.DBName = getEnv("DB_NAME", "shopcarts")
	case DriverSQLite:
		db.DBName = getEnv("DB_NAME", "shopcarts.sqlite3")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", db.Driver)
	}

	return db, nil
}

// vcapCredentials is the ClearDB binding found in VCAP_SERVICES
type vcapCredentials struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Hostname string      `json:"hostname"`
	Port     json.Number `json:"port"`
	Name     string      `json:"name"`
}

func parseVCAPServices(raw string) (*vcapCredentials, error) {
	var services map[string][]struct {
		Credentials vcapCredentials `json:"credentials"`
	}
	if err := json.Unmarshal([]byte(raw), &services); err != nil {
		return nil, fmt.Errorf("failed to parse VCAP_SERVICES: %w", err)
	}

	bindings := services["cleardb"]
	if len(bindings) == 0 {
		return nil, fmt.Errorf("VCAP_SERVICES has no cleardb binding")
	}

	creds := bindings[0].Credentials
	if creds.Hostname == "" || creds.Name == "" {
		return nil, fmt.Errorf("VCAP_SERVICES cleardb credentials are incomplete")
	}
	return &creds, nil
}

// LogConfig returns the configuration as zap fields. Credentials are left out.
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_source", c.DB.Source),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as gorm log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch getEnv(key, "") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
