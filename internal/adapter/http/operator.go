package httpadapter

import "net/http"

type addOperatorRequest struct {
	Account string `json:"account"`
}

func (h *Handler) handleAddOperator(w http.ResponseWriter, r *http.Request) {
	var req addOperatorRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.AddOperator(r.Context(), account(r), req.Account); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
