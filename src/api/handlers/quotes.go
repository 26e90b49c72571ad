package handlers

import (
	"net/http"

	"finance/src/schemas"
)

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "quote", "Quote", nil, http.StatusOK)
}

func (h *Handler) PostQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	quote, err := h.Ledger.Quote(ctx, schemas.ParseQuoteForm(r))
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	h.respond(w, r, "quoted", "Quoted", quote, http.StatusOK)
}
