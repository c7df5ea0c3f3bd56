package httpadapter

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"item-crowdfund/internal/core/domain"
)

type createItemRequest struct {
	Goal     int64               `json:"goal"`
	Metadata domain.ItemMetadata `json:"metadata"`
}

type createItemResponse struct {
	Index int64 `json:"index"`
}

type itemResponse struct {
	Index         int64                `json:"index"`
	Metadata      domain.ItemMetadata  `json:"metadata"`
	Goal          int64                `json:"goal"`
	Progress      int64                `json:"progress"`
	FeePercentage decimal.Decimal      `json:"fee_percentage"`
	Status        domain.Status        `json:"status"`
	Ledger        []domain.LedgerEntry `json:"ledger"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func newItemResponse(cf *domain.Crowdfund) itemResponse {
	return itemResponse{
		Index:         cf.Index,
		Metadata:      cf.Metadata,
		Goal:          cf.Goal,
		Progress:      cf.Progress,
		FeePercentage: cf.FeePercentage,
		Status:        cf.Status,
		Ledger:        cf.Ledger.Entries(),
		CreatedAt:     cf.CreatedAt,
		UpdatedAt:     cf.UpdatedAt,
	}
}

type amountResponse struct {
	Index  int64 `json:"index"`
	Amount int64 `json:"amount"`
}

type feeResponse struct {
	Index         int64           `json:"index"`
	FeePercentage decimal.Decimal `json:"fee_percentage"`
}

// handleCreateItem registers an item on behalf of the operator named in
// the account header.
func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	index, err := h.svc.CreateItem(r.Context(), account(r), req.Goal, req.Metadata)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, createItemResponse{Index: index})
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListItems(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cf, err := h.svc.GetItem(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newItemResponse(cf))
}

func (h *Handler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	h.amount(w, r, h.svc.GetProgress)
}

func (h *Handler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	h.amount(w, r, h.svc.GetGoal)
}

func (h *Handler) amount(w http.ResponseWriter, r *http.Request, get func(context.Context, int64) (int64, error)) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := get(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, amountResponse{Index: index, Amount: v})
}

func (h *Handler) handleGetFeePercentage(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	fee, err := h.svc.GetFeePercentage(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, feeResponse{Index: index, FeePercentage: fee})
}

func (h *Handler) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := h.svc.GetLedger(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}
