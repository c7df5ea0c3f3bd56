package httpadapter

import (
	"log/slog"
	"net/http"

	"item-crowdfund/internal/core/domain"
)

type mintCallbackRequest struct {
	DispatchID string `json:"dispatch_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

func (h *Handler) handleListDispatches(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dispatches, err := h.svc.ListDispatches(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dispatches)
}

// handleMintCallback receives the minting service's answer. Only the
// minting service identity may call it. Any well-formed result from it is
// accepted; results that do not match a pending dispatch are dropped by the
// coordinator.
func (h *Handler) handleMintCallback(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, r, domain.ErrMalformedMessage)
		return
	}
	var req mintCallbackRequest
	if err = decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	err = h.svc.ConfirmTokenizationFrom(r.Context(), account(r), index, domain.MintResult{
		DispatchID: req.DispatchID,
		Success:    req.Success,
		Reason:     req.Error,
	})
	if kind := domain.Kind(err); err != nil && (kind == domain.KindInternal || kind == domain.KindAuthorization) {
		h.writeError(w, r, err)
		return
	}
	if err != nil {
		h.logger.Warn("mint callback dropped", slog.Int64("item_index", index), slog.Any("error", err))
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleRetryMint(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.svc.RetryTokenization(r.Context(), account(r), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, d)
}
