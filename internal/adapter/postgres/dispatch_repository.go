package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"item-crowdfund/internal/core/domain"
)

// DispatchRepository implements port.DispatchRepository on the
// mint_dispatches table.
type DispatchRepository struct {
	pool *pgxpool.Pool
}

// NewDispatchRepository returns a new repository instance.
func NewDispatchRepository(pool *pgxpool.Pool) *DispatchRepository {
	return &DispatchRepository{pool: pool}
}

const selectDispatch = `
        SELECT id, item_index, attempt, request, state, reason, created_at, resolved_at
        FROM mint_dispatches`

func scanDispatch(row rowScanner) (domain.Dispatch, error) {
	var (
		d      domain.Dispatch
		reqRaw []byte
		state  string
	)
	err := row.Scan(&d.ID, &d.ItemIndex, &d.Attempt, &reqRaw, &state, &d.Reason, &d.CreatedAt, &d.ResolvedAt)
	if err != nil {
		return d, err
	}
	if err = json.Unmarshal(reqRaw, &d.Request); err != nil {
		return d, fmt.Errorf("dispatch %s request: %w", d.ID, err)
	}
	d.State = domain.DispatchState(state)
	return d, nil
}

func (r *DispatchRepository) one(ctx context.Context, query string, args ...any) (*domain.Dispatch, error) {
	d, err := scanDispatch(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDispatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DispatchRepository) many(ctx context.Context, query string, args ...any) ([]domain.Dispatch, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Dispatch, error) {
		return scanDispatch(row)
	})
}

// CreateDispatch inserts d.
func (r *DispatchRepository) CreateDispatch(ctx context.Context, d *domain.Dispatch) error {
	reqJSON, err := json.Marshal(d.Request)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO mint_dispatches
(id, item_index, attempt, request, state, reason, created_at, resolved_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.ItemIndex, d.Attempt, reqJSON, string(d.State), d.Reason, d.CreatedAt, d.ResolvedAt)
	return err
}

// UpdateDispatch stores the resolution of d if the row is still in state
// from.
func (r *DispatchRepository) UpdateDispatch(ctx context.Context, d *domain.Dispatch, from domain.DispatchState) error {
	tag, err := r.pool.Exec(ctx, `UPDATE mint_dispatches SET state = $1, reason = $2, resolved_at = $3 WHERE id = $4 AND state = $5`,
		string(d.State), d.Reason, d.ResolvedAt, d.ID, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM mint_dispatches WHERE id = $1)`, d.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrDispatchNotFound
	}
	return domain.ErrDispatchNotPending
}

// GetDispatch returns a dispatch by id.
func (r *DispatchRepository) GetDispatch(ctx context.Context, id string) (*domain.Dispatch, error) {
	return r.one(ctx, selectDispatch+` WHERE id = $1`, id)
}

// LatestDispatch returns the highest attempt of an item.
func (r *DispatchRepository) LatestDispatch(ctx context.Context, itemIndex int64) (*domain.Dispatch, error) {
	return r.one(ctx, selectDispatch+` WHERE item_index = $1 ORDER BY attempt DESC LIMIT 1`, itemIndex)
}

// ListDispatches returns the dispatches of an item, oldest first.
func (r *DispatchRepository) ListDispatches(ctx context.Context, itemIndex int64) ([]domain.Dispatch, error) {
	return r.many(ctx, selectDispatch+` WHERE item_index = $1 ORDER BY attempt`, itemIndex)
}

// ListPendingBefore returns pending dispatches created before cutoff.
func (r *DispatchRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Dispatch, error) {
	return r.many(ctx, selectDispatch+` WHERE state = 'pending' AND created_at < $1 ORDER BY created_at`, cutoff)
}
