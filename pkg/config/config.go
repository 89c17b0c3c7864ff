// Package config centralizes every environment-driven setting. Values are
// read once at process start; nothing reloads at runtime.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port    int
	Host    string
	Env     string // development | production
	Version string
}

// IsDev reports whether the server runs outside production.
func (s ServerConfig) IsDev() bool {
	return s.Env != "production"
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host       string
	Port       int
	Password   string
	DB         int
	DefaultTTL time.Duration
}

// Address returns the host:port pair for go-redis.
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	// APIKey is the legacy static key accepted on the /api-key route
	// variants for backward compatibility.
	APIKey     string
	BcryptCost int
}

type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
}

// Origins returns the comma-joined origin list in Fiber's format.
func (c CORSConfig) Origins() string {
	return strings.Join(c.AllowedOrigins, ",")
}

// Methods returns the comma-joined method list in Fiber's format.
func (c CORSConfig) Methods() string {
	return strings.Join(c.AllowedMethods, ",")
}

type LogConfig struct {
	Level string
	Dev   bool
}

// Load reads the optional .env file and assembles the configuration.
func Load() *Config {
	_ = godotenv.Load() // absent .env is fine, real env wins anyway

	env := getEnv("APP_ENV", "development")

	return &Config{
		Server: ServerConfig{
			Port:    getEnvInt("PORT", 3000),
			Host:    getEnv("HOST", "0.0.0.0"),
			Env:     env,
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "infinitynet"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnvInt("REDIS_PORT", 6379),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			DefaultTTL: getEnvDuration("REDIS_DEFAULT_TTL", time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "sua-chave-secreta-muito-segura"),
			AccessTTL:  getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
			RefreshTTL: getEnvDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
			Issuer:     getEnv("JWT_ISSUER", "api-infinitynet"),
			APIKey:     getEnv("API_KEY", "default_api_key"),
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		RateLimit: RateLimitConfig{
			Window:      getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			MaxRequests: getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvStringSlice("CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Dev:   env != "production",
		},
	}
}
