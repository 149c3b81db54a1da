package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Addr               string `env:"APP_ADDR" env-default:":8080"`
	DatabaseURL        string `env:"DATABASE_URL"`
	Environment        string `env:"APP_ENV" env-default:"development"`
	LogLevel           string `env:"LOG_LEVEL" env-default:"info"`
	FrontendDir        string `env:"FRONTEND_DIR" env-default:"frontend/dist"`
	MigrationsDir      string `env:"MIGRATIONS_DIR" env-default:"migrations"`
	RunMigrations      bool   `env:"RUN_MIGRATIONS" env-default:"true"`
	RunSeed            bool   `env:"RUN_SEED" env-default:"false"`
	CORSOrigins        string `env:"CORS_ORIGINS" env-default:"*"`
	MaxBodyBytes       int64  `env:"MAX_BODY_BYTES" env-default:"1048576"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`
	MetricsEnabled     bool   `env:"METRICS_ENABLED" env-default:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.Environment == "production" && c.RunSeed {
		return fmt.Errorf("RUN_SEED must be disabled in production")
	}
	return nil
}

// Origins splits CORS_ORIGINS into the list the CORS middleware expects.
func (c Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
