package domain

import (
	"fmt"
	"time"
)

// DefaultTokenSupply is the fungible supply minted for a tokenized item.
const DefaultTokenSupply int64 = 1_000_000

// MintRequest is the snapshot sent to the minting service once an item's
// goal is reached. Holders[i] owns Shares[i].
type MintRequest struct {
	DispatchID  string       `json:"dispatch_id"`
	ItemIndex   int64        `json:"item_index"`
	Metadata    ItemMetadata `json:"metadata"`
	TotalSupply int64        `json:"total_supply"`
	Holders     []string     `json:"holders"`
	Shares      []int64      `json:"shares"`
}

// NewMintRequest snapshots the accepted net shares of every contributor.
func NewMintRequest(dispatchID string, cf *Crowdfund, supply int64) MintRequest {
	entries := cf.Ledger.Entries()
	req := MintRequest{
		DispatchID:  dispatchID,
		ItemIndex:   cf.Index,
		Metadata:    cf.Metadata,
		TotalSupply: supply,
		Holders:     make([]string, 0, len(entries)),
		Shares:      make([]int64, 0, len(entries)),
	}
	for _, e := range entries {
		req.Holders = append(req.Holders, e.Contributor)
		req.Shares = append(req.Shares, e.NetFunded)
	}
	return req
}

// MintResult is delivered by the minting service exactly once per dispatch.
// An empty DispatchID targets the latest dispatch of the item.
type MintResult struct {
	DispatchID string
	Success    bool
	Reason     string
}

// DispatchState tracks one hand-off to the minting service independently
// of the crowdfund status.
type DispatchState string

const (
	DispatchPending   DispatchState = "pending"
	DispatchConfirmed DispatchState = "confirmed"
	DispatchFailed    DispatchState = "failed"

	// DispatchSuperseded marks a pending attempt left behind when another
	// attempt of the same item was confirmed.
	DispatchSuperseded DispatchState = "superseded"
)

// Dispatch records a mint request and its outcome. A failed dispatch is
// the reconciliation record for an item stuck in Transporting.
type Dispatch struct {
	ID         string        `json:"id"`
	ItemIndex  int64         `json:"item_index"`
	Attempt    int           `json:"attempt"`
	Request    MintRequest   `json:"request"`
	State      DispatchState `json:"state"`
	Reason     string        `json:"reason,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
}

// NewDispatch returns a pending dispatch for req.
func NewDispatch(req MintRequest, attempt int, now time.Time) *Dispatch {
	return &Dispatch{
		ID:        req.DispatchID,
		ItemIndex: req.ItemIndex,
		Attempt:   attempt,
		Request:   req,
		State:     DispatchPending,
		CreatedAt: now,
	}
}

// Confirm marks the mint as done. A dispatch failed by timeout can still be
// confirmed because the mint may have completed late.
func (d *Dispatch) Confirm(now time.Time) error {
	if d.State == DispatchConfirmed {
		return fmt.Errorf("%w: %s", ErrDispatchNotPending, d.State)
	}
	d.State = DispatchConfirmed
	d.Reason = ""
	d.ResolvedAt = &now
	return nil
}

// Fail records a failed or abandoned mint.
func (d *Dispatch) Fail(reason string, now time.Time) error {
	if d.State != DispatchPending {
		return fmt.Errorf("%w: %s", ErrDispatchNotPending, d.State)
	}
	d.State = DispatchFailed
	d.Reason = reason
	d.ResolvedAt = &now
	return nil
}

// Supersede closes a pending attempt after attempt winner was confirmed.
func (d *Dispatch) Supersede(winner string, now time.Time) error {
	if d.State != DispatchPending {
		return fmt.Errorf("%w: %s", ErrDispatchNotPending, d.State)
	}
	d.State = DispatchSuperseded
	d.Reason = "superseded by dispatch " + winner
	d.ResolvedAt = &now
	return nil
}
