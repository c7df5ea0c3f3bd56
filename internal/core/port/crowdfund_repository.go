package port

import (
	"context"
	"time"

	"item-crowdfund/internal/core/domain"
)

// CrowdfundRepository defines the persistence layer for the item registry.
// It is an outbound port in hexagonal architecture. Implementations must
// serialize UpdateItem calls per item so that each operation observes the
// result of the previous one.
type CrowdfundRepository interface {
	// CreateItem appends cf at the next sequential index, stores the
	// assigned index in cf and returns it.
	CreateItem(ctx context.Context, cf *domain.Crowdfund) (int64, error)
	// GetItem returns the item with its full ledger, or
	// domain.ErrItemNotFound.
	GetItem(ctx context.Context, index int64) (*domain.Crowdfund, error)
	// ListItems returns every item in index order.
	ListItems(ctx context.Context) ([]domain.ItemSummary, error)
	// UpdateItem loads the item, applies fn to a private copy and persists
	// the copy only when fn returns nil.
	UpdateItem(ctx context.Context, index int64, fn func(cf *domain.Crowdfund) error) error

	// IsOperator reports whether account may create items.
	IsOperator(ctx context.Context, account string) (bool, error)
	// AddOperator adds account to the operator set. Existing operators are
	// left untouched.
	AddOperator(ctx context.Context, account string) error
}

// DispatchRepository stores mint dispatch records.
type DispatchRepository interface {
	// CreateDispatch stores a new dispatch.
	CreateDispatch(ctx context.Context, d *domain.Dispatch) error
	// UpdateDispatch persists the state, reason and resolution time of d
	// only if the stored state is still from. Otherwise it returns
	// domain.ErrDispatchNotPending and leaves the record untouched.
	UpdateDispatch(ctx context.Context, d *domain.Dispatch, from domain.DispatchState) error
	// GetDispatch returns a dispatch by id, or domain.ErrDispatchNotFound.
	GetDispatch(ctx context.Context, id string) (*domain.Dispatch, error)
	// LatestDispatch returns the most recent dispatch of an item, or
	// domain.ErrDispatchNotFound.
	LatestDispatch(ctx context.Context, itemIndex int64) (*domain.Dispatch, error)
	// ListDispatches returns the dispatches of an item, oldest first.
	ListDispatches(ctx context.Context, itemIndex int64) ([]domain.Dispatch, error)
	// ListPendingBefore returns pending dispatches created before cutoff.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Dispatch, error)
}
