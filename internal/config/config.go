package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// MongoDB Configuration
	MongoDB MongoDBConfig `json:"mongodb"`

	// Store selects the persistence backend
	Store StoreConfig `json:"store"`

	Auth AuthConfig `json:"auth"`

	// RateLimit Configuration (redis backed, optional)
	RateLimit RateLimitConfig `json:"rate_limit"`

	Messaging MessagingConfig `json:"messaging"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port            string `json:"port"`
	GRPCPort        string `json:"grpc_port"`
	Host            string `json:"host"`
	ReadTimeout     int    `json:"read_timeout"`
	WriteTimeout    int    `json:"write_timeout"`
	ShutdownTimeout int    `json:"shutdown_timeout"`
	Environment     string `json:"environment"` // development, staging, production
}

// MongoDBConfig contains document store connection configuration
type MongoDBConfig struct {
	URI            string `json:"-"` // overrides the fields below when set
	Host           string `json:"host"`
	Port           string `json:"port"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Database       string `json:"database"`
	ConnectTimeout int    `json:"connect_timeout"` // Seconds
}

type StoreConfig struct {
	Driver string `json:"driver"` // mongo, memory
}

type AuthConfig struct {
	JWTSecret         string `json:"-"`
	TokenTTLHours     int    `json:"token_ttl_hours"`
	FriendTokenSecret string `json:"-"`
}

type RateLimitConfig struct {
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`
	WriteLimit    int    `json:"write_limit"` // requests per window per caller
	WindowSeconds int    `json:"window_seconds"`
}

type MessagingConfig struct {
	SealKey string `json:"-"` // base64 32-byte key; empty stores text as-is
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, console
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system env variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			GRPCPort:        getEnv("GRPC_PORT", "9090"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30),
			Environment:     getEnv("APP_ENV", "development"),
		},
		MongoDB: MongoDBConfig{
			URI:            getEnv("MONGO_URI", ""),
			Host:           getEnv("MONGO_HOST", "localhost"),
			Port:           getEnv("MONGO_PORT", "27017"),
			Username:       getEnv("MONGO_USERNAME", ""),
			Password:       getEnv("MONGO_PASSWORD", ""),
			Database:       getEnv("MONGO_DATABASE", "userdb"),
			ConnectTimeout: getEnvAsInt("MONGO_CONNECT_TIMEOUT", 10),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "mongo"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
			TokenTTLHours:     getEnvAsInt("JWT_TTL_HOURS", 24),
			FriendTokenSecret: getEnv("FRIEND_TOKEN_SECRET", defaultFriendSecret),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			WriteLimit:    getEnvAsInt("RATE_LIMIT_WRITES", 60),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		},
		Messaging: MessagingConfig{
			SealKey: getEnv("MESSAGE_SEAL_KEY", ""),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}
}

func (c *Config) GetMongoURI() string {
	if c.MongoDB.URI != "" {
		return c.MongoDB.URI
	}
	if c.MongoDB.Username != "" && c.MongoDB.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			c.MongoDB.Username,
			c.MongoDB.Password,
			c.MongoDB.Host,
			c.MongoDB.Port,
			c.MongoDB.Database,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", c.MongoDB.Host, c.MongoDB.Port, c.MongoDB.Database)
}

const (
	defaultJWTSecret    = "change-me"
	defaultFriendSecret = "change-me-too"
)

// Validate rejects settings the service cannot run with. Placeholder secrets
// are only accepted outside production.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Auth.JWTSecret == c.Auth.FriendTokenSecret {
		return fmt.Errorf("JWT_SECRET and FRIEND_TOKEN_SECRET must differ")
	}
	if c.Server.Environment == "production" &&
		(c.Auth.JWTSecret == defaultJWTSecret || c.Auth.FriendTokenSecret == defaultFriendSecret) {
		return fmt.Errorf("default secrets are not allowed in production")
	}
	if c.RateLimit.RedisAddr != "" && (c.RateLimit.WriteLimit <= 0 || c.RateLimit.WindowSeconds <= 0) {
		return fmt.Errorf("rate limit needs a positive RATE_LIMIT_WRITES and RATE_LIMIT_WINDOW")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
