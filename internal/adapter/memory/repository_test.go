package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"item-crowdfund/internal/core/domain"
)

func newItem(t *testing.T, r *Repository, goal int64) int64 {
	t.Helper()
	cf, err := domain.NewCrowdfund(domain.ItemMetadata{Title: "item"}, goal, domain.DefaultFeePercentage, time.Now())
	require.NoError(t, err)
	index, err := r.CreateItem(context.Background(), cf)
	require.NoError(t, err)
	return index
}

func TestUpdateItemDiscardsFailedChanges(t *testing.T) {
	r := NewRepository()
	ctx := context.Background()
	index := newItem(t, r, 1000)

	boom := errors.New("boom")
	err := r.UpdateItem(ctx, index, func(cf *domain.Crowdfund) error {
		if _, err := cf.Fund("alice", 500); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	cf, err := r.GetItem(ctx, index)
	require.NoError(t, err)
	assert.Zero(t, cf.Progress)
	assert.Zero(t, cf.Ledger.Len())

	require.NoError(t, r.UpdateItem(ctx, index, func(cf *domain.Crowdfund) error {
		_, err := cf.Fund("alice", 500)
		return err
	}))
	cf, err = r.GetItem(ctx, index)
	require.NoError(t, err)
	assert.Equal(t, int64(480), cf.Progress)
	assert.Empty(t, cf.Ledger.Dirty())

	// returned items are copies
	cf.Progress = 1
	again, err := r.GetItem(ctx, index)
	require.NoError(t, err)
	assert.Equal(t, int64(480), again.Progress)
}

func TestUnknownItem(t *testing.T) {
	r := NewRepository()
	ctx := context.Background()

	_, err := r.GetItem(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	err = r.UpdateItem(ctx, -1, func(*domain.Crowdfund) error { return nil })
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestDispatchQueries(t *testing.T) {
	r := NewRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"b", "a", "c"} {
		d := domain.NewDispatch(domain.MintRequest{DispatchID: id, ItemIndex: 0}, i+1, base.Add(time.Duration(2-i)*time.Minute))
		require.NoError(t, r.CreateDispatch(ctx, d))
	}

	latest, err := r.LatestDispatch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "c", latest.ID)

	pending, err := r.ListPendingBefore(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "c", pending[0].ID)
	assert.Equal(t, "a", pending[1].ID)

	require.NoError(t, latest.Fail("timeout", base))
	require.NoError(t, r.UpdateDispatch(ctx, latest, domain.DispatchPending))
	got, err := r.GetDispatch(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, domain.DispatchFailed, got.State)

	// the stored state no longer matches, nothing is written
	require.NoError(t, got.Confirm(base))
	assert.ErrorIs(t, r.UpdateDispatch(ctx, got, domain.DispatchPending), domain.ErrDispatchNotPending)
	got, err = r.GetDispatch(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, domain.DispatchFailed, got.State)

	_, err = r.LatestDispatch(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrDispatchNotFound)
	assert.ErrorIs(t, r.UpdateDispatch(ctx, &domain.Dispatch{ID: "zz"}, domain.DispatchPending), domain.ErrDispatchNotFound)
}
