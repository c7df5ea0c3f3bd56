package port

import (
	"context"

	"github.com/shopspring/decimal"

	"item-crowdfund/internal/core/domain"
)

// CrowdfundUseCase defines the business operations exposed by the item
// registry. This interface represents the primary port into the
// application domain.
type CrowdfundUseCase interface {
	// CreateItem registers a new crowdfund on behalf of an operator and
	// returns its index.
	CreateItem(ctx context.Context, operator string, goal int64, md domain.ItemMetadata) (int64, error)

	// AddOperator grants account the right to create items. Only the
	// service authority may call it.
	AddOperator(ctx context.Context, requester, account string) error

	// Fund applies a payment notification to the item referenced by its
	// message and returns the amount owed back to the sender.
	Fund(ctx context.Context, req FundReq) (*FundResp, error)

	GetItem(ctx context.Context, index int64) (*domain.Crowdfund, error)
	ListItems(ctx context.Context) ([]domain.ItemSummary, error)
	GetProgress(ctx context.Context, index int64) (int64, error)
	GetGoal(ctx context.Context, index int64) (int64, error)
	GetFeePercentage(ctx context.Context, index int64) (decimal.Decimal, error)
	// GetLedger returns the accepted contributions in first-contribution
	// order.
	GetLedger(ctx context.Context, index int64) ([]domain.LedgerEntry, error)

	// ConfirmTokenization applies the minting service's answer. It never
	// rejects a well-formed result; unknown or stale results are logged.
	ConfirmTokenization(ctx context.Context, index int64, res domain.MintResult) error
	// ConfirmTokenizationFrom is ConfirmTokenization for results reported
	// by an identified caller. Callers other than the authority or the
	// configured minter account get domain.ErrNotMinter.
	ConfirmTokenizationFrom(ctx context.Context, caller string, index int64, res domain.MintResult) error

	// RetryTokenization re-sends the mint request of an item whose last
	// dispatch failed. Only the service authority may call it.
	RetryTokenization(ctx context.Context, requester string, index int64) (*domain.Dispatch, error)

	// ListDispatches returns the tokenization attempts of an item.
	ListDispatches(ctx context.Context, index int64) ([]domain.Dispatch, error)
}

// FundReq is a payment notification from the transfer collaborator. Coin
// is the account of the token contract that moved the funds, Message
// carries the item index.
type FundReq struct {
	Coin       string
	Sender     string
	Amount     int64
	Message    string
	TransferID string
}

// FundResp reports how a contribution was applied. Leftover must be sent
// back to the contributor by the caller.
type FundResp struct {
	ItemIndex   int64
	Net         int64
	Fee         int64
	Leftover    int64
	GoalReached bool
	Status      domain.Status
}
