package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string
	RequestTimeout    time.Duration
	DBDriver          string // postgres, sqlite, mongo, memory
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	SQLitePath        string
	MongoURI          string
	MongoDatabase     string
	JWTSecret         string
	JWTTTL            time.Duration
	CORSOrigins       string
	LogFormat         string // json, console
	LogLevel          string
	LegacyStatusCodes bool
}

var defaults = map[string]interface{}{
	"SERVER_PORT":         "8080",
	"REQUEST_TIMEOUT":     "10s",
	"DB_DRIVER":           "postgres",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "postgres",
	"DB_NAME":             "tracks",
	"DB_SSLMODE":          "disable",
	"SQLITE_PATH":         "tracks.db",
	"MONGODB_URI":         "mongodb://localhost:27017",
	"MONGODB_DATABASE":    "tracks",
	"JWT_SECRET":          "secret",
	"JWT_TTL":             "72h",
	"CORS_ORIGINS":        "http://localhost:3000",
	"LOG_FORMAT":          "json",
	"LOG_LEVEL":           "info",
	"LEGACY_STATUS_CODES": true,
}

// LoadConfig reads .env into the process environment, then resolves every
// key from the environment, an optional config.yaml, or the defaults.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:        v.GetString("SERVER_PORT"),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		DBSSLMode:         v.GetString("DB_SSLMODE"),
		SQLitePath:        v.GetString("SQLITE_PATH"),
		MongoURI:          v.GetString("MONGODB_URI"),
		MongoDatabase:     v.GetString("MONGODB_DATABASE"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTTTL:            v.GetDuration("JWT_TTL"),
		CORSOrigins:       v.GetString("CORS_ORIGINS"),
		LogFormat:         strings.ToLower(v.GetString("LOG_FORMAT")),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		LegacyStatusCodes: v.GetBool("LEGACY_STATUS_CODES"),
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite", "mongo", "memory":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}

	return cfg, nil
}

// PostgresDSN builds the connection string for gorm's postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}
