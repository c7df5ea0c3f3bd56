package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"item-crowdfund/internal/adapter/memory"
	"item-crowdfund/internal/core/domain"
	"item-crowdfund/internal/core/port/mocks"
)

const (
	testAuthority = "crowdfund.test"
	testCoin      = "usdc.test"
	testOperator  = "operator.test"
)

type fixture struct {
	repo      *memory.Repository
	minter    *mocks.MockMinter
	tokenizer *Tokenizer
	svc       *CrowdfundUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := memory.NewRepository()
	minter := mocks.NewMockMinter(t)
	tokenizer := NewTokenizer(repo, repo, minter, 0, logger)
	svc := NewCrowdfundUseCase(repo, tokenizer, Options{
		Authority:            testAuthority,
		AcceptedCoin:         testCoin,
		DefaultFeePercentage: domain.DefaultFeePercentage,
	}, logger)

	require.NoError(t, svc.AddOperator(context.Background(), testAuthority, testOperator))
	return &fixture{repo: repo, minter: minter, tokenizer: tokenizer, svc: svc}
}

func (f *fixture) createItem(t *testing.T, goal int64) int64 {
	t.Helper()
	index, err := f.svc.CreateItem(context.Background(), testOperator, goal, domain.ItemMetadata{Title: "rolex"})
	require.NoError(t, err)
	return index
}
