package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"item-crowdfund/internal/core/domain"
	"item-crowdfund/internal/core/port"
	"item-crowdfund/internal/metrics"
)

// Options configures the registry. Authority is the identity of the
// service itself, the only account allowed to add operators.
// MinterAccount is the identity the minting service reports results
// under; when empty only the authority may report them.
type Options struct {
	Authority            string
	AcceptedCoin         string
	DefaultFeePercentage decimal.Decimal
	MinterAccount        string
}

// CrowdfundUseCase is the item registry. It implements port.CrowdfundUseCase
// by orchestrating the repository, the domain state machine and the
// tokenization coordinator.
type CrowdfundUseCase struct {
	repo      port.CrowdfundRepository
	tokenizer *Tokenizer
	deduper   port.Deduper
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewCrowdfundUseCase creates the registry. A zero DefaultFeePercentage
// is kept as is; callers wanting the standard fee pass
// domain.DefaultFeePercentage.
func NewCrowdfundUseCase(repo port.CrowdfundRepository, tokenizer *Tokenizer, opts Options, logger *slog.Logger) *CrowdfundUseCase {
	return &CrowdfundUseCase{
		repo:      repo,
		tokenizer: tokenizer,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithDeduper enables transfer-id deduplication of payment notifications.
func (u *CrowdfundUseCase) WithDeduper(d port.Deduper) *CrowdfundUseCase {
	u.deduper = d
	return u
}

// CreateItem registers a new crowdfund at the next index.
func (u *CrowdfundUseCase) CreateItem(ctx context.Context, operator string, goal int64, md domain.ItemMetadata) (int64, error) {
	ok, err := u.repo.IsOperator(ctx, operator)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrNotOperator
	}

	cf, err := domain.NewCrowdfund(md, goal, u.opts.DefaultFeePercentage, u.now())
	if err != nil {
		return 0, err
	}
	index, err := u.repo.CreateItem(ctx, cf)
	if err != nil {
		return 0, fmt.Errorf("create item: %w", err)
	}

	u.logger.Info("crowdfund created",
		slog.Int64("item_index", index),
		slog.String("operator", operator),
		slog.Int64("goal", goal),
		slog.String("fee_percentage", cf.FeePercentage.String()),
	)
	return index, nil
}

// AddOperator grants account the right to create items.
func (u *CrowdfundUseCase) AddOperator(ctx context.Context, requester, account string) error {
	if requester == "" || requester != u.opts.Authority {
		return domain.ErrNotAuthority
	}
	if account == "" {
		return domain.ErrInvalidAccount
	}
	if err := u.repo.AddOperator(ctx, account); err != nil {
		return fmt.Errorf("add operator: %w", err)
	}
	u.logger.Info("operator added", slog.String("operator", account))
	return nil
}

// Fund applies a payment notification. The ledger update is committed
// before tokenization is dispatched; a dispatch problem is logged and
// recorded but never undoes the contribution.
func (u *CrowdfundUseCase) Fund(ctx context.Context, req port.FundReq) (resp *port.FundResp, err error) {
	defer func() {
		if err != nil {
			metrics.IncrementRejectedContribution()
		}
	}()

	if req.Coin == "" || req.Coin != u.opts.AcceptedCoin {
		return nil, domain.ErrCoinNotAccepted
	}
	index, err := parseItemIndex(req.Message)
	if err != nil {
		return nil, err
	}

	if req.TransferID != "" && u.deduper != nil {
		key := "transfer:" + req.Coin + ":" + req.TransferID
		if !u.deduper.AcquireOnce(ctx, key) {
			return nil, domain.ErrDuplicateTransfer
		}
		defer func() {
			if err != nil {
				u.deduper.Release(ctx, key)
			}
		}()
	}

	var (
		contribution domain.Contribution
		status       domain.Status
		funded       *domain.Crowdfund
	)
	err = u.repo.UpdateItem(ctx, index, func(cf *domain.Crowdfund) error {
		// the repository may replay fn after a serialization failure
		funded = nil
		c, ferr := cf.Fund(req.Sender, req.Amount)
		if ferr != nil {
			return ferr
		}
		contribution, status = c, cf.Status
		if c.GoalReached {
			funded = cf.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordContribution(contribution.Accepted(), contribution.Fee-contribution.FeeLeftover, contribution.Leftover(), contribution.GoalReached)
	u.logger.Info("item funded",
		slog.Int64("item_index", index),
		slog.String("sender", req.Sender),
		slog.Int64("net", contribution.Net),
		slog.Int64("fee", contribution.Fee),
		slog.Int64("leftover", contribution.Leftover()),
	)

	if funded != nil {
		u.logger.Info("crowdfund goal reached, initiating tokenization", slog.Int64("item_index", index))
		// the contribution is committed; the hand-off must outlive the caller
		if _, derr := u.tokenizer.Dispatch(context.WithoutCancel(ctx), funded); derr != nil {
			u.logger.Error("tokenization dispatch not recorded",
				slog.Int64("item_index", index),
				slog.Any("error", derr),
			)
		}
	}

	return &port.FundResp{
		ItemIndex:   index,
		Net:         contribution.Accepted(),
		Fee:         contribution.Fee - contribution.FeeLeftover,
		Leftover:    contribution.Leftover(),
		GoalReached: contribution.GoalReached,
		Status:      status,
	}, nil
}

func parseItemIndex(msg string) (int64, error) {
	index, err := strconv.ParseInt(strings.TrimSpace(msg), 10, 64)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedMessage, msg)
	}
	return index, nil
}

// GetItem returns the item with its ledger.
func (u *CrowdfundUseCase) GetItem(ctx context.Context, index int64) (*domain.Crowdfund, error) {
	return u.repo.GetItem(ctx, index)
}

// ListItems returns every registered item.
func (u *CrowdfundUseCase) ListItems(ctx context.Context) ([]domain.ItemSummary, error) {
	return u.repo.ListItems(ctx)
}

// GetProgress returns the net amount funded so far.
func (u *CrowdfundUseCase) GetProgress(ctx context.Context, index int64) (int64, error) {
	cf, err := u.repo.GetItem(ctx, index)
	if err != nil {
		return 0, err
	}
	return cf.Progress, nil
}

// GetGoal returns the funding goal.
func (u *CrowdfundUseCase) GetGoal(ctx context.Context, index int64) (int64, error) {
	cf, err := u.repo.GetItem(ctx, index)
	if err != nil {
		return 0, err
	}
	return cf.Goal, nil
}

// GetFeePercentage returns the fee frozen at creation.
func (u *CrowdfundUseCase) GetFeePercentage(ctx context.Context, index int64) (decimal.Decimal, error) {
	cf, err := u.repo.GetItem(ctx, index)
	if err != nil {
		return decimal.Zero, err
	}
	return cf.FeePercentage, nil
}

// GetLedger returns the accepted contributions of an item.
func (u *CrowdfundUseCase) GetLedger(ctx context.Context, index int64) ([]domain.LedgerEntry, error) {
	cf, err := u.repo.GetItem(ctx, index)
	if err != nil {
		return nil, err
	}
	return cf.Ledger.Entries(), nil
}

// ConfirmTokenization forwards a mint result to the coordinator.
func (u *CrowdfundUseCase) ConfirmTokenization(ctx context.Context, index int64, res domain.MintResult) error {
	return u.tokenizer.Confirm(ctx, index, res)
}

// ConfirmTokenizationFrom forwards a mint result reported by caller.
func (u *CrowdfundUseCase) ConfirmTokenizationFrom(ctx context.Context, caller string, index int64, res domain.MintResult) error {
	if !u.isMinter(caller) {
		return domain.ErrNotMinter
	}
	return u.tokenizer.Confirm(ctx, index, res)
}

func (u *CrowdfundUseCase) isMinter(caller string) bool {
	if caller == "" {
		return false
	}
	return caller == u.opts.Authority || caller == u.opts.MinterAccount
}

// RetryTokenization re-dispatches a failed mint.
func (u *CrowdfundUseCase) RetryTokenization(ctx context.Context, requester string, index int64) (*domain.Dispatch, error) {
	if requester == "" || requester != u.opts.Authority {
		return nil, domain.ErrNotAuthority
	}
	return u.tokenizer.Retry(ctx, index)
}

// ListDispatches returns the tokenization attempts of an item.
func (u *CrowdfundUseCase) ListDispatches(ctx context.Context, index int64) ([]domain.Dispatch, error) {
	return u.tokenizer.ListDispatches(ctx, index)
}
