package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

type Config struct {
	Env         string `env:"ENV,          default=development"`
	Port        string `env:"PORT,         default=3001"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	JWTSecret   string `env:"JWT_SECRET"`
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:5173"`
	APIURL      string `env:"API_URL,      default=http://localhost:3001"`

	Turnstile TurnstileConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type TurnstileConfig struct {
	SecretKey string `env:"TURNSTILE_SECRET_KEY"`
	VerifyURL string `env:"TURNSTILE_VERIFY_URL, default=https://challenges.cloudflare.com/turnstile/v0/siteverify"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URI,      default=mongodb://localhost:27017"`
	TestURI  string `env:"MONGODB_TEST_URI"`
	DevURI   string `env:"MONGODB_DEV_URI"`
	Database string `env:"MONGODB_DATABASE, default=patient_portal"`
}

// RedisConfig is optional. An empty Addr keeps the rate limiter in memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type RateLimitConfig struct {
	Max    int           `env:"RATE_LIMIT_MAX,    default=100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=15m"`
}

// Load reads an optional dotenv file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := LoadDotEnv(os.Getenv("ENV")); err != nil {
		return nil, err
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves configuration from lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads .env.production in production and .env otherwise.
// Variables already present in the environment win. A missing file is not an error.
func LoadDotEnv(env string) error {
	file := ".env"
	if env == EnvProduction {
		file = ".env.production"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", file, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("config: unknown ENV %q", c.Env)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.IsProduction() && c.Turnstile.SecretKey == "" {
		return errors.New("config: TURNSTILE_SECRET_KEY is required in production")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("config: RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

func (c *Config) Addr() string { return ":" + c.Port }

// MongoURI picks the connection string for the running environment, falling
// back to MONGODB_URI.
func (c *Config) MongoURI() string {
	switch c.Env {
	case EnvTest:
		if c.Mongo.TestURI != "" {
			return c.Mongo.TestURI
		}
	case EnvDevelopment:
		if c.Mongo.DevURI != "" {
			return c.Mongo.DevURI
		}
	}
	return c.Mongo.URI
}
