package configs

import "time"

// Redis configures the transfer deduplication store. An empty Addr
// disables deduplication.
type Redis struct {
	Addr     string        `env:"ADDRESS"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	DedupTTL time.Duration `env:"DEDUP_TTL" envDefault:"168h"`
}
