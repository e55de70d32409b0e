package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env string `env:"APP_ENV" env-default:"production"`
	}
	API struct {
		BaseURL string        `env:"EMBERLY_API_URL" env-default:"https://api.emberly.app"`
		Token   string        `env:"EMBERLY_API_TOKEN"`
		Timeout time.Duration `env:"EMBERLY_API_TIMEOUT" env-default:"15s"`
	}
	Media struct {
		StaticRoot      string `env:"EMBERLY_STATIC_ROOT" env-default:"https://static.emberly.app"`
		PrefetchWorkers int    `env:"EMBERLY_PREFETCH_WORKERS" env-default:"3"`
	}
	Playback struct {
		TickInterval time.Duration `env:"PLAYBACK_TICK_INTERVAL" env-default:"100ms"`
		ProgressStep float64       `env:"PLAYBACK_PROGRESS_STEP" env-default:"2"`
	}
	Toast struct {
		Duration time.Duration `env:"TOAST_DURATION" env-default:"2500ms"`
	}
	Reactions struct {
		Per   time.Duration `env:"REACTIONS_RATE_PER" env-default:"10s"`
		Burst int           `env:"REACTIONS_RATE_BURST" env-default:"3"`
	}
	Sentry struct {
		DSN string `env:"SENTRY_DSN"`
	}
}

// New reads .env when present and falls back to the process environment.
func New() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(".env"); err == nil {
		if err := cleanenv.ReadConfig(".env", cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
