package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultTimeseriesURL   = "https://raw.githubusercontent.com/owid/covid-19-data/master/public/data/vaccinations/vaccinations.csv"
	defaultDemographicsURL = "https://archive.ics.uci.edu/ml/machine-learning-databases/adult/adult.data"
)

type Config struct {
	AppEnv           string        `env:"APP_ENV" envDefault:"local"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	TimeseriesURL    string        `env:"TIMESERIES_URL"`
	DemographicsURL  string        `env:"DEMOGRAPHICS_URL"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" envDefault:"2m"`
	RateLimitRPS     float64       `env:"RATE_LIMIT_RPS" envDefault:"20"`
	DefaultPageLimit int           `env:"DEFAULT_PAGE_LIMIT" envDefault:"500"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads the configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.TimeseriesURL == "" {
		cfg.TimeseriesURL = defaultTimeseriesURL
	}
	if cfg.DemographicsURL == "" {
		cfg.DemographicsURL = defaultDemographicsURL
	}

	return cfg, nil
}
