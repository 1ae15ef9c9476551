package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecret = "dev-secret-change-me"

type Config struct {
	Env      string
	Port     int
	LogLevel string

	DatabaseURL string

	JWTSecret []byte
	TokenTTL  time.Duration

	CORSOrigins []string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	Storage StorageConfig

	AuthRateLimit float64
	AuthRateBurst int

	SeedDefaultAccounts bool
}

type StorageConfig struct {
	Driver    string
	UploadDir string
	URLPrefix string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
}

// Load reads .env (if present) and the process environment once.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func FromEnv() *Config {
	cfg := &Config{
		Env:      EnvDefault("APP_ENV", "prod"),
		Port:     EnvIntDefault("PORT", 3001),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:  EnvDurationDefault("TOKEN_TTL", 24*time.Hour),

		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		Storage: StorageConfig{
			Driver:     EnvDefault("STORAGE_DRIVER", "local"),
			UploadDir:  EnvDefault("UPLOAD_DIR", "uploads"),
			URLPrefix:  EnvDefault("UPLOAD_URL_PREFIX", "/uploads"),
			S3Bucket:   os.Getenv("S3_BUCKET"),
			S3Region:   EnvDefault("S3_REGION", "us-east-1"),
			S3Key:      os.Getenv("S3_KEY"),
			S3Secret:   os.Getenv("S3_SECRET"),
			S3Endpoint: os.Getenv("S3_ENDPOINT"),
			S3URL:      os.Getenv("S3_URL"),
		},

		AuthRateLimit: EnvFloatDefault("AUTH_RATE_LIMIT", 5),
		AuthRateBurst: EnvIntDefault("AUTH_RATE_BURST", 10),

		SeedDefaultAccounts: EnvBoolDefault("SEED_DEFAULT_ACCOUNTS", true),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromParts(
			EnvDefault("DB_HOST", "localhost"),
			EnvDefault("DB_PORT", "5432"),
			EnvDefault("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			EnvDefault("DB_NAME", "bakery"),
			EnvDefault("DB_SSLMODE", "disable"),
		)
	}
	if len(cfg.JWTSecret) == 0 && cfg.Env == "dev" {
		cfg.JWTSecret = []byte(devSecret)
	}
	return cfg
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			errs = append(errs, errors.New("missing required env S3_BUCKET for STORAGE_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func dsnFromParts(host, port, user, password, name, sslmode string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func EnvFloatDefault(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return f
}

func EnvBoolDefault(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
