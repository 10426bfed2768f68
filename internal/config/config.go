package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"fallen-dragon-server/shared/utils"
)

// Config holds the application configuration.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`

	// SQLite
	DBPath         string        `envconfig:"DB_PATH" default:"data/fallen_dragon.db"`
	DBBusyTimeout  time.Duration `envconfig:"DB_BUSY_TIMEOUT" default:"5s"`
	DBMaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"4"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Redis story cache, disabled when REDIS_ADDR is empty
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	StoryCacheTTL time.Duration `envconfig:"STORY_CACHE_TTL" default:"1h"`
	// Секретное поле БЕЗ envconfig тега
	RedisPassword string `ignored:"true"`

	// RabbitMQ session events, disabled when RABBITMQ_URL is empty
	RabbitMQURL        string `envconfig:"RABBITMQ_URL" default:""`
	SessionEventsQueue string `envconfig:"SESSION_EVENTS_QUEUE" default:"story_session_events"`

	// Story rules
	AllowAdvanceAfterCompletion bool `envconfig:"STORY_ALLOW_ADVANCE_AFTER_COMPLETION" default:"false"`

	// Optional story file applied on startup
	SeedFile string `envconfig:"SEED_FILE" default:""`

	// JWT Settings - секретное поле БЕЗ envconfig тега
	JWTSecret string        `ignored:"true"`
	JWTLeeway time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// IsDevelopment reports whether ENV is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.DBMaxOpenConns < 1 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be at least 1"))
	}
	if c.RedisAddr != "" && c.StoryCacheTTL <= 0 {
		errs = append(errs, errors.New("STORY_CACHE_TTL must be positive"))
	}
	if c.RabbitMQURL != "" && c.SessionEventsQueue == "" {
		errs = append(errs, errors.New("SESSION_EVENTS_QUEUE must not be empty"))
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from an optional .env file, environment
// variables and secrets. The JWT secret is required.
func LoadConfig(envFilePath string) (*Config, error) {
	return load(envFilePath, true)
}

// LoadSeedConfig is LoadConfig for tools that never verify tokens.
func LoadSeedConfig(envFilePath string) (*Config, error) {
	return load(envFilePath, false)
}

func load(envFilePath string, requireJWTSecret bool) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	// Загружаем НЕсекретные переменные из окружения
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Обязательный секрет (кроме seed)
	var err error
	cfg.JWTSecret, err = utils.ReadSecretOrEnv("jwt_secret", "JWT_SECRET")
	if err != nil && (requireJWTSecret || !errors.Is(err, utils.ErrSecretNotFound)) {
		return nil, fmt.Errorf("jwt secret: %w", err)
	}

	// Необязательный секрет
	cfg.RedisPassword, err = utils.ReadSecretOrEnv("redis_password", "REDIS_PASSWORD")
	if err != nil {
		if !errors.Is(err, utils.ErrSecretNotFound) {
			return nil, fmt.Errorf("redis password: %w", err)
		}
		cfg.RedisPassword = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
