package handlers

import (
	"net/http"

	"finance/src/schemas"
)

func (h *Handler) GetBuy(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "buy", "Buy", nil, http.StatusOK)
}

func (h *Handler) PostBuy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	s := currentSession(r)
	if _, err := h.Ledger.Buy(ctx, s.UserID, schemas.ParseTradeForm(r)); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.redirectWithFlash(w, r, s, "Bought!", "/")
}

func (h *Handler) GetSell(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	symbols, err := h.Ledger.SellableSymbols(ctx, currentSession(r).UserID)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, "sell", "Sell", symbols, http.StatusOK)
}

func (h *Handler) PostSell(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	s := currentSession(r)
	if _, err := h.Ledger.Sell(ctx, s.UserID, schemas.ParseTradeForm(r)); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.redirectWithFlash(w, r, s, "Sold!", "/")
}

func (h *Handler) GetAddCash(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "add_cash", "Add Cash", nil, http.StatusOK)
}

func (h *Handler) PostAddCash(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	s := currentSession(r)
	if _, err := h.Ledger.AddCash(ctx, s.UserID, schemas.ParseAddCashForm(r)); err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.redirectWithFlash(w, r, s, "Cash added!", "/")
}
