// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
//
// Two programs read configuration: the web front end (Load) and the poster
// API collaborator service (LoadAPI).
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds the web front end configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Redis holds Redis connection settings for the session store.
	Redis RedisConfig

	// Auth holds authentication-related settings.
	Auth AuthConfig

	// Upstream holds the collaborator endpoints the front end calls.
	Upstream UpstreamConfig

	// TrustedProxies lists the CIDRs whose X-Forwarded-For / X-Real-IP
	// headers are believed when resolving the client IP.
	TrustedProxies []string
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// SecretKey signs the flash message cookie. Must be 32+ characters in
	// production.
	SecretKey string

	// SessionTTL is the absolute lifetime of a login session. The expiry
	// sentinel cookie uses the same lifetime.
	SessionTTL time.Duration

	// SessionStore selects the session backend: "redis" or "memory".
	SessionStore string
}

// UpstreamConfig holds the base URLs of the identity and poster
// collaborators.
type UpstreamConfig struct {
	// UserAPIURL is the identity collaborator endpoint (GET/POST/PUT/DELETE).
	UserAPIURL string

	// PosterAPIBase is the base URL for /history, /pay and generation.
	PosterAPIBase string

	// Timeout bounds each collaborator request at the transport layer.
	Timeout time.Duration

	// ImageSources are the origins poster images are served from. They are
	// allowed in the img-src Content-Security-Policy directive.
	ImageSources []string
}

// Load reads the front end configuration from environment variables with
// sensible defaults. Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			SecretKey:    getEnv("SECRET_KEY", ""),
			SessionTTL:   getEnvDuration("SESSION_TTL", time.Hour),
			SessionStore: strings.ToLower(getEnv("SESSION_STORE", "redis")),
		},

		Upstream: UpstreamConfig{
			UserAPIURL:    strings.TrimRight(getEnv("USER_API_URL", "http://localhost:8090/user"), "/"),
			PosterAPIBase: strings.TrimRight(getEnv("POSTER_API_BASE", "http://localhost:8090"), "/"),
			Timeout:       getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
			ImageSources:  getEnvList("POSTER_IMAGE_SOURCES", []string{"https:", "http://localhost:8090"}),
		},

		TrustedProxies: getEnvList("TRUSTED_PROXIES", []string{
			"127.0.0.0/8",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"fd00::/8",
		}),
	}

	if cfg.Auth.SessionStore != "redis" && cfg.Auth.SessionStore != "memory" {
		return nil, fmt.Errorf("SESSION_STORE must be \"redis\" or \"memory\", got %q", cfg.Auth.SessionStore)
	}
	if cfg.Auth.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	// Validate required fields in production. Case-insensitive check catches
	// common variants like "Production", "prod", etc.
	if isProduction(cfg.Env) {
		if cfg.Auth.SecretKey == "" {
			return nil, fmt.Errorf("SECRET_KEY is required in production")
		}
		if len(cfg.Auth.SecretKey) < 32 {
			return nil, fmt.Errorf("SECRET_KEY must be at least 32 characters in production")
		}
		if cfg.Auth.SessionStore == "memory" {
			return nil, fmt.Errorf("SESSION_STORE=memory is not allowed in production")
		}
	}

	// Provide a dev-only default secret so local dev works without .env.
	if cfg.Auth.SecretKey == "" {
		cfg.Auth.SecretKey = "dev-secret-key-do-not-use-in-production!!"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return isDevelopment(c.Env)
}

// --- Poster API collaborator service ---

// APIConfig holds configuration for the poster API collaborator service
// (cmd/posterapi): the identity, history, payment and generation endpoints.
type APIConfig struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8090).
	Port int

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// MigrationsPath is the directory holding golang-migrate SQL files.
	MigrationsPath string

	// MaxPromptLen is the hard cap applied to generation prompts.
	MaxPromptLen int

	// EnvelopeResponses wraps every reply as {"statusCode": N, "body": "<json>"}
	// with HTTP 200, the way an API gateway in front of functions does.
	EnvelopeResponses bool

	// CORSOrigins lists browser origins allowed to call the API directly.
	CORSOrigins []string

	// Storage holds poster image storage settings.
	Storage StorageConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so
// container orchestrators can manage each independently.
// If DATABASE_URL is set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "posterdesk").
	User string

	// Password is the MariaDB password (default: "posterdesk").
	Password string

	// Name is the database name (default: "posterdesk").
	Name string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// Host/User/Password/Name fields using the driver's Config.FormatDSN()
// to safely handle special characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	// Migrations contain several statements per file.
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
// Allows users to set DB_HOST=mydb (gets :3306) or DB_HOST=mydb:3307 (as-is).
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// StorageConfig selects where rendered posters are written.
type StorageConfig struct {
	// Backend is "local" (MediaPath served under MediaBaseURL) or "s3".
	Backend string

	// MediaPath is the root directory for the local backend.
	MediaPath string

	// MediaBaseURL is the public URL prefix for locally stored posters.
	MediaBaseURL string

	// S3 holds settings for the s3 backend.
	S3 S3Config
}

// S3Config holds object storage settings. Endpoint and the static keys are
// optional; when empty the AWS default credential chain and endpoint apply.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// LoadAPI reads the poster API configuration from environment variables.
func LoadAPI() (*APIConfig, error) {
	cfg := &APIConfig{
		Env:  getEnv("ENV", "development"),
		Port: getEnvInt("API_PORT", 8090),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "posterdesk"),
			Password:        getEnv("DB_PASSWORD", "posterdesk"),
			Name:            getEnv("DB_NAME", "posterdesk"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		MigrationsPath:    getEnv("MIGRATIONS_PATH", "db/migrations"),
		MaxPromptLen:      getEnvInt("MAX_PROMPT_LEN", 512),
		EnvelopeResponses: getEnvBool("ENVELOPE_RESPONSES", false),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:8080"}),

		Storage: StorageConfig{
			Backend:      strings.ToLower(getEnv("POSTER_STORAGE", "local")),
			MediaPath:    getEnv("MEDIA_PATH", "./media"),
			MediaBaseURL: strings.TrimRight(getEnv("MEDIA_BASE_URL", "http://localhost:8090/media"), "/"),
			S3: S3Config{
				Bucket:    getEnv("S3_BUCKET", ""),
				Region:    getEnv("S3_REGION", "us-east-1"),
				Endpoint:  getEnv("S3_ENDPOINT", ""),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
			},
		},
	}

	if cfg.MaxPromptLen <= 0 {
		return nil, fmt.Errorf("MAX_PROMPT_LEN must be positive")
	}

	switch cfg.Storage.Backend {
	case "local":
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when POSTER_STORAGE=s3")
		}
	default:
		return nil, fmt.Errorf("POSTER_STORAGE must be \"local\" or \"s3\", got %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *APIConfig) IsDevelopment() bool {
	return isDevelopment(c.Env)
}

func isDevelopment(env string) bool {
	env = strings.ToLower(env)
	return env == "development" || env == "dev"
}

func isProduction(env string) bool {
	env = strings.ToLower(env)
	return env == "production" || env == "prod"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvBool reads a boolean env var ("true", "1", "yes") or returns the default.
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		if strings.EqualFold(val, "yes") {
			return true
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var or returns the default.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvDuration reads a duration env var (e.g., "1h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
