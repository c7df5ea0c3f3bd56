package config

import (
	"github.com/caarlos0/env/v11"

	"item-crowdfund/internal/config/configs"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library.
// Nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev).
	Env string `env:"ENV" envDefault:"prod"`

	HTTP configs.HTTP   `envPrefix:"HTTP_"`
	Log  configs.Logger `envPrefix:"LOG_"`

	// Psql is only used when Crowdfund.Storage is "postgres".
	Psql configs.Postgres `envPrefix:"PSQL_"`

	Crowdfund configs.Crowdfund `envPrefix:"CROWDFUND_"`
	AMQP      configs.AMQP      `envPrefix:"AMQP_"`
	Redis     configs.Redis     `envPrefix:"REDIS_"`
	Scheduler configs.Scheduler `envPrefix:"SCHEDULER_"`
}

// Load reads configuration from environment variables into a Config. All
// fields are loaded with their defaults when no variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Crowdfund.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
