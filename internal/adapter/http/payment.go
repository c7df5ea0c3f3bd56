package httpadapter

import (
	"net/http"

	"item-crowdfund/internal/core/domain"
	"item-crowdfund/internal/core/port"
)

// paymentRequest is a transfer notification. The account header names the
// coin that moved the funds; Msg carries the item index.
type paymentRequest struct {
	SenderID   string `json:"sender_id"`
	Amount     int64  `json:"amount"`
	Msg        string `json:"msg"`
	TransferID string `json:"transfer_id,omitempty"`
}

type paymentResponse struct {
	ItemIndex   int64         `json:"item_index"`
	Net         int64         `json:"net"`
	Fee         int64         `json:"fee"`
	Leftover    int64         `json:"leftover"`
	GoalReached bool          `json:"goal_reached"`
	Status      domain.Status `json:"status"`
}

// handlePayment applies a transfer notification. The leftover in the
// response must be returned to the sender by the transfer service.
func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.svc.Fund(r.Context(), port.FundReq{
		Coin:       account(r),
		Sender:     req.SenderID,
		Amount:     req.Amount,
		Message:    req.Msg,
		TransferID: req.TransferID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, paymentResponse{
		ItemIndex:   resp.ItemIndex,
		Net:         resp.Net,
		Fee:         resp.Fee,
		Leftover:    resp.Leftover,
		GoalReached: resp.GoalReached,
		Status:      resp.Status,
	})
}
