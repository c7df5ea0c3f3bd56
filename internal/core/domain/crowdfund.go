package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ItemMetadata describes the item being crowdfunded. It is passed unchanged
// to the minting service.
type ItemMetadata struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
	Media       string `json:"media,omitempty" yaml:"media"`
	MediaHash   string `json:"media_hash,omitempty" yaml:"media_hash"`
	Reference   string `json:"reference,omitempty" yaml:"reference"`
	Extra       string `json:"extra,omitempty" yaml:"extra"`
}

// Crowdfund is one fundable item. Amounts are in the smallest unit of the
// accepted coin. Progress always equals Ledger.TotalNet() and never exceeds
// Goal.
type Crowdfund struct {
	Index         int64
	Metadata      ItemMetadata
	Goal          int64
	FeePercentage decimal.Decimal
	Progress      int64
	Ledger        *Ledger
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewCrowdfund returns an item in progress with an empty ledger. The index
// is assigned by the repository.
func NewCrowdfund(md ItemMetadata, goal int64, feePct decimal.Decimal, now time.Time) (*Crowdfund, error) {
	if goal <= 0 {
		return nil, ErrInvalidGoal
	}
	if err := ValidateFeePercentage(feePct); err != nil {
		return nil, err
	}
	return &Crowdfund{
		Metadata:      md,
		Goal:          goal,
		FeePercentage: feePct,
		Ledger:        NewLedger(),
		Status:        StatusInProgress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Contribution is the outcome of a successful Fund call.
type Contribution struct {
	Contributor string
	Gross       int64
	Net         int64
	Fee         int64
	NetLeftover int64
	FeeLeftover int64
	GoalReached bool
}

// Leftover is the amount owed back to the contributor.
func (c Contribution) Leftover() int64 {
	return c.NetLeftover + c.FeeLeftover
}

// Accepted is the net amount that counted toward the goal.
func (c Contribution) Accepted() int64 {
	return c.Net - c.NetLeftover
}

// Fund applies a gross contribution. When the contribution reaches the goal
// only the accepted portion is recorded, progress is set to the goal and the
// item moves to Transporting; the caller must then dispatch tokenization and
// return Leftover() to the contributor. On error nothing is modified.
func (c *Crowdfund) Fund(contributor string, gross int64) (Contribution, error) {
	if contributor == "" {
		return Contribution{}, ErrInvalidContributor
	}
	if gross <= 0 {
		return Contribution{}, ErrInvalidAmount
	}
	if c.Progress >= c.Goal {
		return Contribution{}, ErrGoalReached
	}
	if !c.Status.AcceptsFunding() {
		return Contribution{}, fmt.Errorf("%w: %s", ErrFundingClosed, c.Status)
	}

	net, fee := SplitFee(gross, c.FeePercentage)
	entry := c.Ledger.Entry(contributor)

	newNet, err := addChecked(entry.NetFunded, net)
	if err != nil {
		return Contribution{}, err
	}
	newFees, err := addChecked(entry.FeesPaid, fee)
	if err != nil {
		return Contribution{}, err
	}
	reached, err := addChecked(c.Progress, net)
	if err != nil {
		return Contribution{}, err
	}

	out := Contribution{Contributor: contributor, Gross: gross, Net: net, Fee: fee}

	if reached < c.Goal {
		c.Ledger.put(LedgerEntry{Contributor: contributor, NetFunded: newNet, FeesPaid: newFees})
		c.Progress = reached
		return out, nil
	}

	out.NetLeftover, out.FeeLeftover = Leftover(c.Progress, c.Goal, net, fee)
	out.GoalReached = true

	c.Ledger.put(LedgerEntry{
		Contributor: contributor,
		NetFunded:   newNet - out.NetLeftover,
		FeesPaid:    newFees - out.FeeLeftover,
	})
	c.Progress = c.Goal
	c.Status = StatusTransporting
	return out, nil
}

// Transition moves the item to next if the lifecycle allows it.
func (c *Crowdfund) Transition(next Status) error {
	if !c.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}
	c.Status = next
	return nil
}

// Clone returns a deep copy that can be mutated independently.
func (c *Crowdfund) Clone() *Crowdfund {
	cp := *c
	if c.Ledger != nil {
		cp.Ledger = c.Ledger.Clone()
	} else {
		cp.Ledger = NewLedger()
	}
	return &cp
}

// ItemSummary is the list view of a crowdfund.
type ItemSummary struct {
	Index         int64           `json:"index"`
	Metadata      ItemMetadata    `json:"metadata"`
	Goal          int64           `json:"goal"`
	Progress      int64           `json:"progress"`
	FeePercentage decimal.Decimal `json:"fee_percentage"`
	Status        Status          `json:"status"`
}

// Summary returns the list view of c.
func (c *Crowdfund) Summary() ItemSummary {
	return ItemSummary{
		Index:         c.Index,
		Metadata:      c.Metadata,
		Goal:          c.Goal,
		Progress:      c.Progress,
		FeePercentage: c.FeePercentage,
		Status:        c.Status,
	}
}
