package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"item-crowdfund/internal/core/domain"
	"item-crowdfund/internal/core/port"
	"item-crowdfund/internal/metrics"
)

// Tokenizer coordinates the hand-off of a funded item to the minting
// service. Every hand-off is recorded as a Dispatch before the mint
// request leaves the process, so an unanswered or failed mint can be found
// and retried by an operator. Nothing is retried automatically.
type Tokenizer struct {
	items      port.CrowdfundRepository
	dispatches port.DispatchRepository
	minter     port.Minter
	supply     int64
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewTokenizer creates a coordinator minting supply tokens per item. A
// non-positive supply falls back to domain.DefaultTokenSupply.
func NewTokenizer(items port.CrowdfundRepository, dispatches port.DispatchRepository, minter port.Minter, supply int64, logger *slog.Logger) *Tokenizer {
	if supply <= 0 {
		supply = domain.DefaultTokenSupply
	}
	return &Tokenizer{
		items:      items,
		dispatches: dispatches,
		minter:     minter,
		supply:     supply,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Dispatch snapshots the ledger of cf and sends the mint request. It
// returns once the request is handed over. A hand-off failure is recorded
// on the returned dispatch; an error is only returned when the dispatch
// could not be recorded at all.
func (t *Tokenizer) Dispatch(ctx context.Context, cf *domain.Crowdfund) (*domain.Dispatch, error) {
	attempt := 1
	last, err := t.dispatches.LatestDispatch(ctx, cf.Index)
	switch {
	case err == nil:
		attempt = last.Attempt + 1
	case !errors.Is(err, domain.ErrDispatchNotFound):
		return nil, err
	}
	return t.dispatch(ctx, cf, attempt)
}

func (t *Tokenizer) dispatch(ctx context.Context, cf *domain.Crowdfund, attempt int) (*domain.Dispatch, error) {
	req := domain.NewMintRequest(t.newID(), cf, t.supply)
	d := domain.NewDispatch(req, attempt, t.now())
	if err := t.dispatches.CreateDispatch(ctx, d); err != nil {
		return nil, fmt.Errorf("record dispatch: %w", err)
	}

	logger := t.logger.With(
		slog.Int64("item_index", cf.Index),
		slog.String("dispatch_id", d.ID),
		slog.Int("attempt", attempt),
	)

	if err := t.minter.DispatchMint(ctx, req); err != nil {
		metrics.IncrementMintDispatch("publish_failed")
		logger.Error("mint dispatch failed", slog.Any("error", err))
		_ = d.Fail(fmt.Sprintf("dispatch: %v", err), t.now())
		if uerr := t.dispatches.UpdateDispatch(ctx, d, domain.DispatchPending); uerr != nil {
			logger.Error("record dispatch failure", slog.Any("error", uerr))
		}
		return d, nil
	}

	metrics.IncrementMintDispatch("sent")
	logger.Info("mint requested",
		slog.Int("holders", len(req.Holders)),
		slog.Int64("total_supply", req.TotalSupply),
	)
	return d, nil
}

// Confirm applies the minting service's answer for an item. It only
// returns infrastructure errors: results for unknown or already resolved
// dispatches are logged and dropped. A failed mint leaves the item in
// Transporting; recovery goes through Retry.
func (t *Tokenizer) Confirm(ctx context.Context, index int64, res domain.MintResult) error {
	logger := t.logger.With(slog.Int64("item_index", index), slog.String("dispatch_id", res.DispatchID))

	d, err := t.lookup(ctx, index, res.DispatchID)
	if errors.Is(err, domain.ErrDispatchNotFound) {
		metrics.IncrementMintResult("ignored")
		logger.Warn("mint result for unknown dispatch", slog.Bool("success", res.Success))
		return nil
	}
	if err != nil {
		return err
	}

	if !res.Success {
		reason := res.Reason
		if reason == "" {
			reason = "mint failed"
		}
		if err = d.Fail(reason, t.now()); err != nil {
			metrics.IncrementMintResult("ignored")
			logger.Warn("mint failure for resolved dispatch", slog.String("state", string(d.State)))
			return nil
		}
		err = t.dispatches.UpdateDispatch(ctx, d, domain.DispatchPending)
		if errors.Is(err, domain.ErrDispatchNotPending) {
			metrics.IncrementMintResult("ignored")
			logger.Warn("mint failure raced with another resolution")
			return nil
		}
		if err != nil {
			return fmt.Errorf("record mint failure: %w", err)
		}
		metrics.IncrementMintResult("failed")
		logger.Warn("mint failed, item remains transporting", slog.String("reason", reason))
		return nil
	}

	from := d.State
	if err = d.Confirm(t.now()); err != nil {
		metrics.IncrementMintResult("ignored")
		logger.Warn("duplicate mint confirmation")
		return nil
	}

	err = t.items.UpdateItem(ctx, index, func(cf *domain.Crowdfund) error {
		return cf.Transition(domain.StatusTokenized)
	})
	switch {
	case err == nil:
	case domain.Kind(err) == domain.KindState || domain.Kind(err) == domain.KindNotFound:
		logger.Error("mint confirmed but item cannot be tokenized", slog.Any("error", err))
	default:
		return fmt.Errorf("tokenize item: %w", err)
	}

	if err = t.markConfirmed(ctx, d, from); err != nil {
		return fmt.Errorf("record mint confirmation: %w", err)
	}
	metrics.IncrementMintResult("confirmed")
	logger.Info("item tokenized")

	if err = t.supersedeSiblings(ctx, d, logger); err != nil {
		return fmt.Errorf("supersede pending dispatches: %w", err)
	}
	return nil
}

// markConfirmed stores the confirmation of d. When another writer resolved
// the record since it was read, the stored state is re-read once and the
// confirmation applied on top of it.
func (t *Tokenizer) markConfirmed(ctx context.Context, d *domain.Dispatch, from domain.DispatchState) error {
	err := t.dispatches.UpdateDispatch(ctx, d, from)
	if !errors.Is(err, domain.ErrDispatchNotPending) {
		return err
	}

	cur, err := t.dispatches.GetDispatch(ctx, d.ID)
	if err != nil {
		return err
	}
	from = cur.State
	if cur.Confirm(t.now()) != nil {
		// confirmed concurrently
		return nil
	}
	if err = t.dispatches.UpdateDispatch(ctx, cur, from); err != nil {
		return err
	}
	*d = *cur
	return nil
}

// supersedeSiblings closes the attempts of the item still pending after
// winner was confirmed, so no later expiry or retry acts on them.
func (t *Tokenizer) supersedeSiblings(ctx context.Context, winner *domain.Dispatch, logger *slog.Logger) error {
	all, err := t.dispatches.ListDispatches(ctx, winner.ItemIndex)
	if err != nil {
		return err
	}
	now := t.now()
	for i := range all {
		d := &all[i]
		if d.ID == winner.ID || d.Supersede(winner.ID, now) != nil {
			continue
		}
		err = t.dispatches.UpdateDispatch(ctx, d, domain.DispatchPending)
		if errors.Is(err, domain.ErrDispatchNotPending) {
			continue
		}
		if err != nil {
			return err
		}
		metrics.IncrementMintResult("superseded")
		logger.Warn("pending mint dispatch superseded",
			slog.String("superseded_id", d.ID),
			slog.Int("attempt", d.Attempt),
		)
	}
	return nil
}

func (t *Tokenizer) lookup(ctx context.Context, index int64, dispatchID string) (*domain.Dispatch, error) {
	if dispatchID == "" {
		return t.dispatches.LatestDispatch(ctx, index)
	}
	d, err := t.dispatches.GetDispatch(ctx, dispatchID)
	if err != nil {
		return nil, err
	}
	if d.ItemIndex != index {
		return nil, domain.ErrDispatchNotFound
	}
	return d, nil
}

// Retry sends a fresh mint request for an item stuck in Transporting whose
// latest dispatch failed, or that has no dispatch at all.
func (t *Tokenizer) Retry(ctx context.Context, index int64) (*domain.Dispatch, error) {
	cf, err := t.items.GetItem(ctx, index)
	if err != nil {
		return nil, err
	}
	if cf.Status != domain.StatusTransporting {
		return nil, fmt.Errorf("%w: item is %s", domain.ErrNotRetryable, cf.Status)
	}

	attempt := 1
	last, err := t.dispatches.LatestDispatch(ctx, index)
	switch {
	case err == nil:
		if last.State != domain.DispatchFailed {
			return nil, fmt.Errorf("%w: last dispatch is %s", domain.ErrNotRetryable, last.State)
		}
		attempt = last.Attempt + 1
	case !errors.Is(err, domain.ErrDispatchNotFound):
		return nil, err
	}
	return t.dispatch(ctx, cf, attempt)
}

// ExpireStale fails every dispatch still pending after olderThan and
// returns how many were expired.
func (t *Tokenizer) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	now := t.now()
	pending, err := t.dispatches.ListPendingBefore(ctx, now.Add(-olderThan))
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range pending {
		d := &pending[i]
		if err = d.Fail(fmt.Sprintf("no mint confirmation within %s", olderThan), now); err != nil {
			continue
		}
		err = t.dispatches.UpdateDispatch(ctx, d, domain.DispatchPending)
		if errors.Is(err, domain.ErrDispatchNotPending) {
			// resolved after the listing
			continue
		}
		if err != nil {
			return expired, fmt.Errorf("expire dispatch %s: %w", d.ID, err)
		}
		metrics.IncrementMintResult("expired")
		t.logger.Warn("mint dispatch expired",
			slog.Int64("item_index", d.ItemIndex),
			slog.String("dispatch_id", d.ID),
			slog.Time("created_at", d.CreatedAt),
		)
		expired++
	}
	return expired, nil
}

// ListDispatches returns the tokenization attempts of an item.
func (t *Tokenizer) ListDispatches(ctx context.Context, index int64) ([]domain.Dispatch, error) {
	if _, err := t.items.GetItem(ctx, index); err != nil {
		return nil, err
	}
	return t.dispatches.ListDispatches(ctx, index)
}
