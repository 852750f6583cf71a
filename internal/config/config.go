package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
		BaseURL   string `yaml:"base_url" env:"SMTP_BASE_URL"`
	} `yaml:"smtp"`

	RateLimit struct {
		APIRequests    int    `yaml:"api_requests" env:"RATE_LIMIT_API_REQUESTS"`
		APIWindow      string `yaml:"api_window" env:"RATE_LIMIT_API_WINDOW"`
		LoginRequests  int    `yaml:"login_requests" env:"RATE_LIMIT_LOGIN_REQUESTS"`
		LoginWindow    string `yaml:"login_window" env:"RATE_LIMIT_LOGIN_WINDOW"`
		ResetRequests  int    `yaml:"reset_requests" env:"RATE_LIMIT_RESET_REQUESTS"`
		ResetWindow    string `yaml:"reset_window" env:"RATE_LIMIT_RESET_WINDOW"`
	} `yaml:"rate_limit"`

	Audit struct {
		RetentionDays int `yaml:"retention_days" env:"AUDIT_RETENTION_DAYS"`
	} `yaml:"audit"`

	Library LibraryConfig `yaml:"library"`

	Storage struct {
		Path string `yaml:"path" env:"STORAGE_PATH"`
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LibraryConfig carries the lending policy knobs
type LibraryConfig struct {
	BorrowLimit  int     `yaml:"borrow_limit" env:"LIBRARY_BORROW_LIMIT"`
	LoanDays     int     `yaml:"loan_days" env:"LIBRARY_LOAN_DAYS"`
	RenewalLimit int     `yaml:"renewal_limit" env:"LIBRARY_RENEWAL_LIMIT"`
	FinePerDay   float64 `yaml:"fine_per_day" env:"LIBRARY_FINE_PER_DAY"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
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

	// Override with environment variables
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
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campuserp"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.RefreshTokenExpiration = "168h"
	config.JWT.Issuer = "campuserp.app"

	config.SMTP.Port = 587
	config.SMTP.FromName = "Campus ERP"
	config.SMTP.BaseURL = "http://localhost:8080"

	config.RateLimit.APIRequests = 100
	config.RateLimit.APIWindow = "15m"
	config.RateLimit.LoginRequests = 5
	config.RateLimit.LoginWindow = "15m"
	config.RateLimit.ResetRequests = 3
	config.RateLimit.ResetWindow = "1h"

	config.Audit.RetentionDays = 365

	config.Library.BorrowLimit = 5
	config.Library.LoanDays = 14
	config.Library.RenewalLimit = 2
	config.Library.FinePerDay = 1.0

	config.Storage.Path = "uploads"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	for _, window := range []string{config.RateLimit.APIWindow, config.RateLimit.LoginWindow, config.RateLimit.ResetWindow} {
		if _, err := time.ParseDuration(window); err != nil {
			return fmt.Errorf("invalid rate limit window format %q: %w", window, err)
		}
	}

	if config.Audit.RetentionDays <= 0 {
		return fmt.Errorf("audit retention must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns the postgres connection string
func (c *Config) GetPostgresConnectionString() string {
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
	return c.Server.Mode == "production"
}
