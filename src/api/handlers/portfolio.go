package handlers

import (
	"net/http"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	snapshot, err := h.Ledger.PortfolioSnapshot(ctx, currentSession(r).UserID)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, "index", "Portfolio", snapshot, http.StatusOK)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	history, err := h.Ledger.TransactionHistory(ctx, currentSession(r).UserID)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, "history", "History", history, http.StatusOK)
}
