package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageCouchDB  = "couchdb"
	StoragePostgres = "postgres"
	StorageMySQL    = "mysql"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	JWT       JWTConfig
	Session   SessionConfig
	Redis     RedisConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	Memos     MemoConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type StorageConfig struct {
	Driver  string
	CouchDB CouchDBConfig

	// DSN is used by the SQL drivers.
	DSN string
}

type CouchDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// URL is the kivik connection string.
func (c CouchDBConfig) URL() string {
	return fmt.Sprintf("http://%s:%s@%s:%s/", c.User, c.Password, c.Host, c.Port)
}

type JWTConfig struct {
	Secret                 string
	Expiration             time.Duration
	RefreshTokenExpiration time.Duration
}

type SessionConfig struct {
	CookieName   string
	CookieSecure bool
}

// RedisConfig is optional; an empty Addr disables token revocation.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	MaxMessageSize  int64
	WriteWait       time.Duration
	PongWait        time.Duration
	PingPeriod      time.Duration
	MaxConnPerUser  int
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level string
}

type MemoConfig struct {
	ListDefaultLimit int
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func Load() (*Config, error) {
	godotenv.Load()

	jwtExp, err := getEnvAsDuration("JWT_EXPIRATION", "15m")
	if err != nil {
		return nil, err
	}

	refreshExp, err := getEnvAsDuration("REFRESH_TOKEN_EXPIRATION", "168h")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Env:             getEnv("ENV", "development"),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: shutdownTimeout,
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageCouchDB)),
			CouchDB: CouchDBConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5984"),
				User:     getEnv("DB_USER", "admin"),
				Password: getEnv("DB_PASSWORD", "password"),
				Name:     getEnv("DB_NAME", "kizuki"),
			},
			DSN: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret:                 getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			Expiration:             jwtExp,
			RefreshTokenExpiration: refreshExp,
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "kizuki_session"),
			CookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  getEnvAsInt("WS_READ_BUFFER_SIZE", 4096),
			WriteBufferSize: getEnvAsInt("WS_WRITE_BUFFER_SIZE", 4096),
			MaxMessageSize:  int64(getEnvAsInt("WS_MAX_MESSAGE_SIZE", 65536)),
			WriteWait:       10 * time.Second,
			PongWait:        60 * time.Second,
			PingPeriod:      54 * time.Second,
			MaxConnPerUser:  getEnvAsInt("WS_MAX_CONN_PER_USER", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Memos: MemoConfig{
			ListDefaultLimit: getEnvAsInt("MEMO_LIST_DEFAULT_LIMIT", 5),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageCouchDB:
	case StoragePostgres, StorageMySQL:
		if c.Storage.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for STORAGE_DRIVER=%s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %q", c.Storage.Driver)
	}

	if c.IsProduction() && c.JWT.Secret == "dev-secret-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
