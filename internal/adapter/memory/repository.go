package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"item-crowdfund/internal/core/domain"
)

// Repository implements port.CrowdfundRepository and
// port.DispatchRepository in process memory. Items live in an append-only
// arena addressed by index; every item owns its ledger. A single mutex
// serializes all operations, which mirrors the row locks taken by the
// postgres adapter.
type Repository struct {
	mu         sync.Mutex
	items      []*domain.Crowdfund
	operators  map[string]struct{}
	dispatches map[string]*domain.Dispatch
	byItem     map[int64][]string
	now        func() time.Time
}

// NewRepository returns an empty store.
func NewRepository() *Repository {
	return &Repository{
		operators:  make(map[string]struct{}),
		dispatches: make(map[string]*domain.Dispatch),
		byItem:     make(map[int64][]string),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateItem appends cf at the next index.
func (r *Repository) CreateItem(_ context.Context, cf *domain.Crowdfund) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cf.Index = int64(len(r.items))
	stored := cf.Clone()
	stored.Ledger.ClearDirty()
	r.items = append(r.items, stored)
	return cf.Index, nil
}

// GetItem returns a copy of the item.
func (r *Repository) GetItem(_ context.Context, index int64) (*domain.Crowdfund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cf, err := r.item(index)
	if err != nil {
		return nil, err
	}
	return cf.Clone(), nil
}

// ListItems returns the summary of every item in index order.
func (r *Repository) ListItems(_ context.Context) ([]domain.ItemSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.ItemSummary, 0, len(r.items))
	for _, cf := range r.items {
		out = append(out, cf.Summary())
	}
	return out, nil
}

// UpdateItem applies fn to a copy and swaps it in on success.
func (r *Repository) UpdateItem(_ context.Context, index int64, fn func(cf *domain.Crowdfund) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cf, err := r.item(index)
	if err != nil {
		return err
	}
	cp := cf.Clone()
	if err = fn(cp); err != nil {
		return err
	}
	cp.Index = index
	cp.UpdatedAt = r.now()
	cp.Ledger.ClearDirty()
	r.items[index] = cp
	return nil
}

func (r *Repository) item(index int64) (*domain.Crowdfund, error) {
	if index < 0 || index >= int64(len(r.items)) {
		return nil, domain.ErrItemNotFound
	}
	return r.items[index], nil
}

// IsOperator reports whether account is in the operator set.
func (r *Repository) IsOperator(_ context.Context, account string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.operators[account]
	return ok, nil
}

// AddOperator adds account to the operator set.
func (r *Repository) AddOperator(_ context.Context, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.operators[account] = struct{}{}
	return nil
}

// CreateDispatch stores a copy of d.
func (r *Repository) CreateDispatch(_ context.Context, d *domain.Dispatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *d
	r.dispatches[d.ID] = &cp
	r.byItem[d.ItemIndex] = append(r.byItem[d.ItemIndex], d.ID)
	return nil
}

// UpdateDispatch stores the resolution of d if the stored state is still
// from.
func (r *Repository) UpdateDispatch(_ context.Context, d *domain.Dispatch, from domain.DispatchState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.dispatches[d.ID]
	if !ok {
		return domain.ErrDispatchNotFound
	}
	if stored.State != from {
		return fmt.Errorf("%w: %s", domain.ErrDispatchNotPending, stored.State)
	}
	stored.State = d.State
	stored.Reason = d.Reason
	stored.ResolvedAt = d.ResolvedAt
	return nil
}

// GetDispatch returns a copy of the dispatch with the given id.
func (r *Repository) GetDispatch(_ context.Context, id string) (*domain.Dispatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dispatches[id]
	if !ok {
		return nil, domain.ErrDispatchNotFound
	}
	cp := *d
	return &cp, nil
}

// LatestDispatch returns the newest dispatch of an item.
func (r *Repository) LatestDispatch(_ context.Context, itemIndex int64) (*domain.Dispatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byItem[itemIndex]
	if len(ids) == 0 {
		return nil, domain.ErrDispatchNotFound
	}
	cp := *r.dispatches[ids[len(ids)-1]]
	return &cp, nil
}

// ListDispatches returns the dispatches of an item, oldest first.
func (r *Repository) ListDispatches(_ context.Context, itemIndex int64) ([]domain.Dispatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byItem[itemIndex]
	out := make([]domain.Dispatch, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.dispatches[id])
	}
	return out, nil
}

// ListPendingBefore returns pending dispatches created before cutoff.
func (r *Repository) ListPendingBefore(_ context.Context, cutoff time.Time) ([]domain.Dispatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Dispatch
	for _, d := range r.dispatches {
		if d.State == domain.DispatchPending && d.CreatedAt.Before(cutoff) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
