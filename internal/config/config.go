package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	PasswordScheme  string        `env:"PASSWORD_SCHEME" envDefault:"plain"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED" envDefault:"true"`
	TurnTimerUnit   time.Duration `env:"TURN_TIMER_UNIT" envDefault:"1s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

var ErrInvalidConfig = errors.New("invalid config")

// Load reads .env files when present, then the environment.
func Load(files ...string) (Config, error) {
	// A missing .env is normal outside local dev.
	_ = godotenv.Load(files...)
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.PasswordScheme {
	case "plain", "bcrypt":
	default:
		return fmt.Errorf("%w: PASSWORD_SCHEME %q", ErrInvalidConfig, c.PasswordScheme)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%w: LOG_FORMAT %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.TurnTimerUnit <= 0 {
		return fmt.Errorf("%w: TURN_TIMER_UNIT must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) Addr() string { return ":" + c.Port }
