package configs

import (
	"fmt"

	"github.com/shopspring/decimal"

	"item-crowdfund/internal/core/domain"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Crowdfund configures the item registry.
type Crowdfund struct {
	// Authority is the identity allowed to add operators and retry mints.
	Authority string `env:"AUTHORITY" envDefault:"crowdfund"`
	// MinterAccount is the identity the minting service uses on the HTTP
	// result callback.
	MinterAccount string `env:"MINTER_ACCOUNT" envDefault:"minter"`
	// AcceptedCoin is the only coin whose transfers fund items.
	AcceptedCoin string `env:"ACCEPTED_COIN" envDefault:"usdc"`
	// DefaultFeePercentage is frozen into every new item.
	DefaultFeePercentage decimal.Decimal `env:"DEFAULT_FEE_PERCENTAGE" envDefault:"4"`
	TokenSupply          int64           `env:"TOKEN_SUPPLY" envDefault:"1000000"`
	// Storage selects the repository: memory or postgres.
	Storage string `env:"STORAGE" envDefault:"memory"`
	// SeedFile is an optional YAML fixture applied at startup.
	SeedFile string `env:"SEED_FILE"`
}

// Validate checks values env cannot express in tags.
func (c Crowdfund) Validate() error {
	if c.Authority == "" {
		return fmt.Errorf("CROWDFUND_AUTHORITY is required")
	}
	if c.AcceptedCoin == "" {
		return fmt.Errorf("CROWDFUND_ACCEPTED_COIN is required")
	}
	if err := domain.ValidateFeePercentage(c.DefaultFeePercentage); err != nil {
		return fmt.Errorf("CROWDFUND_DEFAULT_FEE_PERCENTAGE: %w", err)
	}
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("CROWDFUND_STORAGE: unknown driver %q", c.Storage)
	}
	return nil
}
