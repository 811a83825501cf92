// Package config provides configuration management for the application.
// It follows the 12-Factor App methodology by loading configuration
// from environment variables and supporting external configuration files.
//
// 12-Factor App Compilance:
//   - III. Config: Store config in the environment
//   - Configuration is loaded from environment variables (prefix APNA_)
//   - A local .env file is honoured outside production
//   - Sensitive data (passwords, DSNs) only via environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

// EnvPrefix is prepended to every environment variable, e.g. APNA_SERVER_PORT.
const EnvPrefix = "APNA"

// Config holds all application configuration.
// All fields are populated from environment variables or config files.
type Config struct {
	// App contains application-level configuration
	App AppConfig `mapstructure:"app"`

	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server"`

	// Log contains logger configuration
	Log LogConfig `mapstructure:"log"`

	// Database contains catalog storage configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Cart contains cart capacity and session configuration
	Cart CartConfig `mapstructure:"cart"`

	// Order contains checkout configuration
	Order OrderConfig `mapstructure:"order"`

	// Catalog contains seed and image configuration
	Catalog CatalogConfig `mapstructure:"catalog"`

	// RateLimit contains request rate limiting configuration
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// AppConfig contains application-level configuration.
type AppConfig struct {
	// Name of the application
	Name string `mapstructure:"name"`

	// Environment the application is running in (e.g., development, staging, production)
	Environment string `mapstructure:"environment"`

	// Version of the application
	Version string `mapstructure:"version"`

	// Debug mode flag
	Debug bool `mapstructure:"debug"`
}

// IsProduction reports whether the app runs in production.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Environment, "production")
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address
	Host string `mapstructure:"host"`

	// Port is the server port
	Port int `mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request, including the body
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// RequestTimeout bounds the handling of a single request
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// ShutdownTimeout is the maximum duration for graceful server shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxRequestSize is the maximun allowed request body size
	MaxRequestSize int64 `mapstructure:"max_request_size"`

	// CORSAllowedOrigins is a list of allowed origins for CORS
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// TrustedProxies are the IPs or CIDRs whose X-Forwarded-For is believed
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// Address returns host:port for the listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger configuration.
type LogConfig struct {
	// Level is the minimum level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is json or console
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains catalog storage configuration.
type DatabaseConfig struct {
	// Driver is postgres or sqlite
	Driver string `mapstructure:"driver"`

	// DSN is the connection string; DATABASE_URL is honoured too
	DSN string `mapstructure:"dsn"`

	// MaxOpenConns caps open connections
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxIdleConns caps idle connections
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// ConnMaxLifetime recycles connections
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// AutoMigrate creates the schema on startup
	AutoMigrate bool `mapstructure:"auto_migrate"`

	// ConnectTimeout bounds the initial ping
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// CartConfig contains cart capacity and session configuration.
type CartConfig struct {
	// SmallCapacityKg is the weight budget of the small cart
	SmallCapacityKg float64 `mapstructure:"small_capacity_kg"`

	// FamilyCapacityKg is the weight budget of the family cart
	FamilyCapacityKg float64 `mapstructure:"family_capacity_kg"`

	// SessionTTL is how long an idle cart is kept
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// MaxSessions caps live carts (0 = unlimited)
	MaxSessions int `mapstructure:"max_sessions"`

	// SmallPrice is the flat price of the small cart in major units
	SmallPrice float64 `mapstructure:"small_price"`

	// FamilyPrice is the flat price of the family cart in major units
	FamilyPrice float64 `mapstructure:"family_price"`

	// Currency is the ISO 4217 code of the cart prices
	Currency string `mapstructure:"currency"`
}

// OrderConfig contains checkout configuration.
type OrderConfig struct {
	// StoreName appears in the order message title
	StoreName string `mapstructure:"store_name"`

	// WhatsAppNumber receives orders, international format
	WhatsAppNumber string `mapstructure:"whatsapp_number"`

	// RequireFullCart only allows checkout at capacity
	RequireFullCart bool `mapstructure:"require_full_cart"`
}

// CatalogConfig contains seed and image configuration.
type CatalogConfig struct {
	// ImagesDir holds the catalog images served under /images
	ImagesDir string `mapstructure:"images_dir"`

	// CacheDir holds resized image variants (empty disables caching)
	CacheDir string `mapstructure:"cache_dir"`

	// SeedFile overrides the built-in seed catalog
	SeedFile string `mapstructure:"seed_file"`

	// MappingsFile overrides the built-in name to image table
	MappingsFile string `mapstructure:"mappings_file"`

	// CheckImageFiles skips mappings whose file is missing from ImagesDir
	CheckImageFiles bool `mapstructure:"check_image_files"`
}

// RateLimitConfig contains request rate limiting configuration.
type RateLimitConfig struct {
	// Enabled turns the limiter on
	Enabled bool `mapstructure:"enabled"`

	// RequestsPerSecond is the sustained rate
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// Burst is the bucket size
	Burst int `mapstructure:"burst"`
}

// Load loads the configuration from environment variables and config files.
// It follows this precedence (higest to lowest):
//  1. Environment variables (and .env outside production)
//  2. Config file (if provided)
//  3. Default values
//
// Parameters:
//   - configFile: explicit config file path; empty searches the default locations
//
// Returns:
//   - *Config: The loaded configuration
//   - error: Any error encountered during loading
func Load(configFile string) (*Config, error) {
	loadDotEnv()

	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/apnacart")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// A postgres URL (typically DATABASE_URL) selects the postgres driver.
	if dsn := strings.ToLower(cfg.Database.DSN); strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		cfg.Database.Driver = "postgres"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "postgresql", "pgx", "sqlite", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be postgres or sqlite", c.Database.Driver))
	}
	if c.Cart.SmallCapacityKg <= 0 || c.Cart.FamilyCapacityKg <= 0 {
		errs = append(errs, errors.New("cart capacities must be positive"))
	}
	if _, err := valueobject.ParseCurrency(c.Cart.Currency); err != nil {
		errs = append(errs, fmt.Errorf("cart.currency: %w", err))
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("rate_limit.requests_per_second must be positive"))
	}
	return errors.Join(errs...)
}

// loadDotEnv reads .env into the process environment unless running in
// production. Variables already set are not overridden.
func loadDotEnv() {
	env := os.Getenv(EnvPrefix + "_APP_ENVIRONMENT")
	if env == "" {
		env = os.Getenv(EnvPrefix + "_ENVIRONMENT")
	}
	if strings.EqualFold(env, "production") {
		return
	}
	_ = godotenv.Load()
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "apnacart")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_request_size", 1<<20) // 1MB
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.trusted_proxies", []string{"127.0.0.1", "::1"})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:apnacart.db?_pragma=busy_timeout(5000)")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	// Cart defaults
	v.SetDefault("cart.small_capacity_kg", 4.5)
	v.SetDefault("cart.family_capacity_kg", 7.0)
	v.SetDefault("cart.session_ttl", 2*time.Hour)
	v.SetDefault("cart.max_sessions", 10000)
	v.SetDefault("cart.small_price", 349.0)
	v.SetDefault("cart.family_price", 559.0)
	v.SetDefault("cart.currency", "INR")

	// Order defaults
	v.SetDefault("order.store_name", "ApnaCart")
	v.SetDefault("order.whatsapp_number", "919100018181")
	v.SetDefault("order.require_full_cart", false)

	// Catalog defaults
	v.SetDefault("catalog.images_dir", "./public/images")
	v.SetDefault("catalog.cache_dir", "./cache/images")
	v.SetDefault("catalog.seed_file", "")
	v.SetDefault("catalog.mappings_file", "")
	v.SetDefault("catalog.check_image_files", false)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)
}

// bindEnvVars binds specific environment variables to configuration keys.
func bindEnvVars(v *viper.Viper) {
	// These are explicity bound for clarity
	_ = v.BindEnv("app.environment", EnvPrefix+"_APP_ENVIRONMENT", EnvPrefix+"_ENVIRONMENT")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.dsn", EnvPrefix+"_DATABASE_DSN", "DATABASE_URL")
}
