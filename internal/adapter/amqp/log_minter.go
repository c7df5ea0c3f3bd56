package amqp

import (
	"context"
	"log/slog"

	"item-crowdfund/internal/core/domain"
)

// LogMinter stands in for the broker when AMQP_URL is empty. Requests are
// only logged; results must be posted to the HTTP callback.
type LogMinter struct {
	logger *slog.Logger
}

// NewLogMinter returns a minter writing requests to logger.
func NewLogMinter(logger *slog.Logger) *LogMinter {
	return &LogMinter{logger: logger}
}

// DispatchMint logs req and reports it as handed over.
func (m *LogMinter) DispatchMint(_ context.Context, req domain.MintRequest) error {
	m.logger.Info("mint request (no broker configured)",
		slog.Int64("item_index", req.ItemIndex),
		slog.String("dispatch_id", req.DispatchID),
		slog.Any("holders", req.Holders),
		slog.Any("shares", req.Shares),
	)
	return nil
}
