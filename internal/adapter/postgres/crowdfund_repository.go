package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"item-crowdfund/internal/core/domain"
)

// CrowdfundRepository implements port.CrowdfundRepository using pgxpool for
// PostgreSQL. Item updates run in a read committed transaction holding
// the item row lock; transactions aborted by a serialization failure or a
// deadlock are replayed.
type CrowdfundRepository struct {
	pool *pgxpool.Pool
}

// NewCrowdfundRepository returns a new repository instance.
func NewCrowdfundRepository(pool *pgxpool.Pool) *CrowdfundRepository {
	return &CrowdfundRepository{pool: pool}
}

const selectCrowdfund = `
        SELECT
            item_index,
            metadata,
            goal,
            fee_percentage::text,
            progress,
            status,
            created_at,
            updated_at
        FROM crowdfunds`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCrowdfund(row rowScanner) (*domain.Crowdfund, error) {
	var (
		cf     domain.Crowdfund
		mdRaw  []byte
		feeRaw string
		status string
	)
	err := row.Scan(&cf.Index, &mdRaw, &cf.Goal, &feeRaw, &cf.Progress, &status, &cf.CreatedAt, &cf.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(mdRaw, &cf.Metadata); err != nil {
		return nil, fmt.Errorf("item %d metadata: %w", cf.Index, err)
	}
	if cf.FeePercentage, err = decimal.NewFromString(feeRaw); err != nil {
		return nil, fmt.Errorf("item %d fee percentage: %w", cf.Index, err)
	}
	if cf.Status, err = domain.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("item %d: %w", cf.Index, err)
	}
	cf.Ledger = domain.NewLedger()
	return &cf, nil
}

// CreateItem inserts cf at the next index. The table lock keeps indexes
// dense under concurrent creation.
func (r *CrowdfundRepository) CreateItem(ctx context.Context, cf *domain.Crowdfund) (int64, error) {
	mdJSON, err := json.Marshal(cf.Metadata)
	if err != nil {
		return 0, err
	}

	var index int64
	err = withRetry(ctx, func() error {
		var txErr error
		index, txErr = r.createItem(ctx, cf, mdJSON)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	cf.Index = index
	return index, nil
}

func (r *CrowdfundRepository) createItem(ctx context.Context, cf *domain.Crowdfund, mdJSON []byte) (index int64, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `LOCK TABLE crowdfunds IN EXCLUSIVE MODE`); err != nil {
		return 0, err
	}
	if err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(item_index) + 1, 0) FROM crowdfunds`).Scan(&index); err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, `INSERT INTO crowdfunds
    (item_index, metadata, goal, fee_percentage, progress, status, created_at, updated_at)
VALUES ($1,$2,$3,$4::numeric,$5,$6,$7,$8)`,
		index, mdJSON, cf.Goal, cf.FeePercentage.String(), cf.Progress, string(cf.Status), cf.CreatedAt, cf.UpdatedAt)
	if err != nil {
		return 0, err
	}
	if err = insertEntries(ctx, tx, index, cf.Ledger.Dirty()); err != nil {
		return 0, err
	}
	return index, nil
}

// GetItem returns the item with its ledger in first-contribution order.
func (r *CrowdfundRepository) GetItem(ctx context.Context, index int64) (*domain.Crowdfund, error) {
	cf, err := scanCrowdfund(r.pool.QueryRow(ctx, selectCrowdfund+` WHERE item_index = $1`, index))
	if err != nil {
		return nil, err
	}
	if err = loadLedger(ctx, r.pool, cf); err != nil {
		return nil, err
	}
	return cf, nil
}

// ListItems returns the summary of every item in index order.
func (r *CrowdfundRepository) ListItems(ctx context.Context) ([]domain.ItemSummary, error) {
	rows, err := r.pool.Query(ctx, selectCrowdfund+` ORDER BY item_index`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ItemSummary, error) {
		cf, err := scanCrowdfund(row)
		if err != nil {
			return domain.ItemSummary{}, err
		}
		return cf.Summary(), nil
	})
}

// UpdateItem locks the item row, applies fn and writes back the item and
// the ledger entries fn changed. fn sees a freshly loaded item on every
// attempt and may run more than once.
func (r *CrowdfundRepository) UpdateItem(ctx context.Context, index int64, fn func(cf *domain.Crowdfund) error) error {
	return withRetry(ctx, func() error {
		return r.updateItem(ctx, index, fn)
	})
}

func (r *CrowdfundRepository) updateItem(ctx context.Context, index int64, fn func(cf *domain.Crowdfund) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	cf, err := scanCrowdfund(tx.QueryRow(ctx, selectCrowdfund+` WHERE item_index = $1 FOR UPDATE`, index))
	if err != nil {
		return err
	}
	if err = loadLedger(ctx, tx, cf); err != nil {
		return err
	}
	if err = fn(cf); err != nil {
		return err
	}

	cf.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `UPDATE crowdfunds SET progress = $1, status = $2, updated_at = $3 WHERE item_index = $4`,
		cf.Progress, string(cf.Status), cf.UpdatedAt, index)
	if err != nil {
		return err
	}
	return insertEntries(ctx, tx, index, cf.Ledger.Dirty())
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadLedger(ctx context.Context, q querier, cf *domain.Crowdfund) error {
	rows, err := q.Query(ctx, `SELECT contributor, net_funded, fees_paid FROM ledger_entries WHERE item_index = $1 ORDER BY seq`, cf.Index)
	if err != nil {
		return err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LedgerEntry, error) {
		var e domain.LedgerEntry
		err := row.Scan(&e.Contributor, &e.NetFunded, &e.FeesPaid)
		return e, err
	})
	if err != nil {
		return err
	}
	for _, e := range entries {
		cf.Ledger.Load(e)
	}
	return nil
}

// insertEntries upserts entries; new contributors get the next seq so the
// first-contribution order survives a reload.
func insertEntries(ctx context.Context, tx pgx.Tx, index int64, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO ledger_entries (item_index, contributor, net_funded, fees_paid)
VALUES ($1,$2,$3,$4)
ON CONFLICT (item_index, contributor) DO UPDATE SET net_funded = EXCLUDED.net_funded, fees_paid = EXCLUDED.fees_paid`,
			index, e.Contributor, e.NetFunded, e.FeesPaid)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// IsOperator reports whether account is in the operator set.
func (r *CrowdfundRepository) IsOperator(ctx context.Context, account string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM operators WHERE account = $1)`, account).Scan(&ok)
	return ok, err
}

// AddOperator adds account to the operator set.
func (r *CrowdfundRepository) AddOperator(ctx context.Context, account string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO operators (account) VALUES ($1) ON CONFLICT DO NOTHING`, account)
	return err
}
