package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	Admin    AdminConfig
	Employee EmployeeConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	ConnectTimeout  time.Duration
	RetryInterval   time.Duration
	BootstrapSchema bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// StorageConfig selects where uploaded avatars and certificates live.
type StorageConfig struct {
	Type          string // "local" or "inline"
	BasePath      string
	BaseURL       string
	MaxUploadSize int64
}

// AdminConfig is the single administrator credential.
// PasswordHash wins over Password when both are set.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

type EmployeeConfig struct {
	DefaultPassword string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	connectTimeout, err := time.ParseDuration(getEnv("DB_CONNECT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONNECT_TIMEOUT: %w", err)
	}
	retryInterval, err := time.ParseDuration(getEnv("DB_RETRY_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_RETRY_INTERVAL: %w", err)
	}
	bootstrap, err := strconv.ParseBool(getEnv("DB_BOOTSTRAP_SCHEMA", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_BOOTSTRAP_SCHEMA: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "training_records"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(maxConns),
		ConnectTimeout:  connectTimeout,
		RetryInterval:   retryInterval,
		BootstrapSchema: bootstrap,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"),
	}

	// Storage configuration
	maxUpload, err := strconv.ParseInt(getEnv("STORAGE_MAX_UPLOAD_SIZE", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_MAX_UPLOAD_SIZE: %w", err)
	}

	config.Storage = StorageConfig{
		Type:          getEnv("STORAGE_TYPE", "local"),
		BasePath:      getEnv("STORAGE_BASE_PATH", "assets/employee-images"),
		BaseURL:       getEnv("STORAGE_BASE_URL", "/assets/employee-images"),
		MaxUploadSize: maxUpload,
	}

	config.Admin = AdminConfig{
		Username:     getEnv("ADMIN_USERNAME", "admin"),
		Password:     getEnv("ADMIN_PASSWORD", "admin"),
		PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}

	config.Employee = EmployeeConfig{
		DefaultPassword: getEnv("DEFAULT_EMPLOYEE_PASSWORD", "admin12345"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if c.Database.RetryInterval <= 0 {
		return fmt.Errorf("DB_RETRY_INTERVAL must be positive")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.BasePath == "" {
			return fmt.Errorf("STORAGE_BASE_PATH is required for local storage")
		}
	case "inline":
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_SIZE must be positive")
	}
	if c.Admin.Username == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if c.Employee.DefaultPassword == "" {
		return fmt.Errorf("DEFAULT_EMPLOYEE_PASSWORD is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string with user and password escaped
func (c *Config) DatabaseURL() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return dsn.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
