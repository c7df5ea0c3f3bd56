package domain

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCrowdfund(t *testing.T, goal int64) *Crowdfund {
	t.Helper()
	cf, err := NewCrowdfund(ItemMetadata{Title: "rolex"}, goal, DefaultFeePercentage, time.Unix(0, 0))
	require.NoError(t, err)
	return cf
}

func TestNewCrowdfundValidation(t *testing.T) {
	_, err := NewCrowdfund(ItemMetadata{}, 0, DefaultFeePercentage, time.Now())
	assert.ErrorIs(t, err, ErrInvalidGoal)

	_, err = NewCrowdfund(ItemMetadata{}, -5, DefaultFeePercentage, time.Now())
	assert.ErrorIs(t, err, ErrInvalidGoal)

	cf := newTestCrowdfund(t, 10)
	assert.Equal(t, StatusInProgress, cf.Status)
	assert.Zero(t, cf.Progress)
	assert.Zero(t, cf.Ledger.Len())
}

// TestFundGoalCrossing walks through two contributions where the second one
// overshoots the goal.
func TestFundGoalCrossing(t *testing.T) {
	cf := newTestCrowdfund(t, 1000)

	a, err := cf.Fund("alice", 400)
	require.NoError(t, err)
	assert.Equal(t, int64(384), a.Net)
	assert.Equal(t, int64(16), a.Fee)
	assert.Zero(t, a.Leftover())
	assert.False(t, a.GoalReached)
	assert.Equal(t, int64(384), cf.Progress)
	assert.Equal(t, StatusInProgress, cf.Status)

	b, err := cf.Fund("bob", 700)
	require.NoError(t, err)
	assert.Equal(t, int64(672), b.Net)
	assert.Equal(t, int64(28), b.Fee)
	assert.Equal(t, int64(56), b.NetLeftover)
	assert.Equal(t, int64(2), b.FeeLeftover)
	assert.Equal(t, int64(58), b.Leftover())
	assert.Equal(t, int64(616), b.Accepted())
	assert.True(t, b.GoalReached)

	assert.Equal(t, int64(1000), cf.Progress)
	assert.Equal(t, StatusTransporting, cf.Status)
	assert.Equal(t, []LedgerEntry{
		{Contributor: "alice", NetFunded: 384, FeesPaid: 16},
		{Contributor: "bob", NetFunded: 616, FeesPaid: 26},
	}, cf.Ledger.Entries())
	assert.Equal(t, b.Net, b.Accepted()+b.NetLeftover)
}

func TestFundGoalAlreadyReached(t *testing.T) {
	cf := newTestCrowdfund(t, 100)
	_, err := cf.Fund("alice", 200)
	require.NoError(t, err)

	before := cf.Clone()
	_, err = cf.Fund("bob", 10)
	assert.ErrorIs(t, err, ErrGoalReached)
	assert.Equal(t, before.Progress, cf.Progress)
	assert.Equal(t, before.Status, cf.Status)
	assert.Equal(t, before.Ledger.Entries(), cf.Ledger.Entries())
}

func TestFundRejectsInvalidInput(t *testing.T) {
	cf := newTestCrowdfund(t, 100)

	_, err := cf.Fund("", 10)
	assert.ErrorIs(t, err, ErrInvalidContributor)
	_, err = cf.Fund("alice", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = cf.Fund("alice", -3)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Zero(t, cf.Progress)
	assert.Zero(t, cf.Ledger.Len())
}

func TestFundClosedStatus(t *testing.T) {
	cf := newTestCrowdfund(t, 100)
	cf.Status = StatusCreated

	_, err := cf.Fund("alice", 10)
	assert.ErrorIs(t, err, ErrFundingClosed)
	assert.Zero(t, cf.Progress)
}

func TestFundOverflowLeavesStateUntouched(t *testing.T) {
	cf := newTestCrowdfund(t, math.MaxInt64)
	cf.Ledger.Load(LedgerEntry{Contributor: "whale", NetFunded: math.MaxInt64 - 10})
	cf.Progress = math.MaxInt64 - 10

	_, err := cf.Fund("whale", 1000)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, int64(math.MaxInt64-10), cf.Progress)
	assert.Equal(t, int64(math.MaxInt64-10), cf.Ledger.Entry("whale").NetFunded)
	assert.Empty(t, cf.Ledger.Dirty())
}

func TestFundConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	contributors := []string{"a", "b", "c", "d", "e"}

	for round := 0; round < 50; round++ {
		goal := int64(rng.Intn(100_000) + 1)
		cf := newTestCrowdfund(t, goal)

		for cf.Status == StatusInProgress {
			who := contributors[rng.Intn(len(contributors))]
			gross := int64(rng.Intn(5_000) + 1)

			before := cf.Ledger.Entry(who)
			c, err := cf.Fund(who, gross)
			require.NoError(t, err)

			after := cf.Ledger.Entry(who)
			require.Equal(t, c.Accepted(), after.NetFunded-before.NetFunded)
			require.Equal(t, c.Fee-c.FeeLeftover, after.FeesPaid-before.FeesPaid)
			require.Equal(t, cf.Progress, cf.Ledger.TotalNet())
			require.LessOrEqual(t, cf.Progress, cf.Goal)
		}
		require.Equal(t, cf.Goal, cf.Progress)
		require.Equal(t, StatusTransporting, cf.Status)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cf := newTestCrowdfund(t, 1000)
	_, err := cf.Fund("alice", 100)
	require.NoError(t, err)

	cp := cf.Clone()
	_, err = cp.Fund("bob", 100)
	require.NoError(t, err)

	assert.Equal(t, 1, cf.Ledger.Len())
	assert.Equal(t, 2, cp.Ledger.Len())
	assert.NotEqual(t, cf.Progress, cp.Progress)
}
