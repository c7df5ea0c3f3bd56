package configs

import "time"

// Scheduler configures background jobs.
type Scheduler struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`
	// StaleDispatchInterval is how often pending dispatches are swept.
	StaleDispatchInterval time.Duration `env:"STALE_DISPATCH_INTERVAL" envDefault:"5m"`
	// StaleDispatchAfter is how long a dispatch may stay pending.
	StaleDispatchAfter time.Duration `env:"STALE_DISPATCH_AFTER" envDefault:"1h"`
}
