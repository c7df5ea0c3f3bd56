package port

import (
	"context"

	"item-crowdfund/internal/core/domain"
)

// Minter is the external tokenization service. DispatchMint hands the
// request over and returns before the mint happens; the outcome arrives
// later through CrowdfundUseCase.ConfirmTokenization.
type Minter interface {
	DispatchMint(ctx context.Context, req domain.MintRequest) error
}

// Deduper guards against processing the same payment notification twice.
type Deduper interface {
	// AcquireOnce returns true the first time key is seen.
	AcquireOnce(ctx context.Context, key string) bool
	// Release forgets key so a rejected notification can be retried.
	Release(ctx context.Context, key string)
}
