package services

import (
	"context"
	"errors"
	"time"

	"finance/src/clients"
	"finance/src/schemas"

	"golang.org/x/sync/singleflight"
)

// pricePlaces matches the scale of the price columns.
const pricePlaces = 4

// lookupTimeout bounds a shared provider call, which outlives the request
// that started it.
const lookupTimeout = 10 * time.Second

type QuoteServiceI interface {
	Lookup(ctx context.Context, symbol string) (*schemas.Quote, error)
}

// QuoteService normalizes symbols and collapses concurrent lookups of the
// same symbol into one provider call. Results are not cached.
type QuoteService struct {
	client clients.QuoteClient
	group  singleflight.Group
}

func NewQuoteService(client clients.QuoteClient) *QuoteService {
	return &QuoteService{client: client}
}

func (s *QuoteService) Lookup(ctx context.Context, symbol string) (*schemas.Quote, error) {
	symbol = schemas.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, NewError(ErrInvalidInput, "must provide symbol")
	}

	// The shared call runs detached from any single caller so one cancelled
	// request does not fail the others waiting on the same symbol.
	results := s.group.DoChan(symbol, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return s.client.Lookup(callCtx, symbol)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	v, err := res.Val, res.Err
	if errors.Is(err, clients.ErrSymbolNotFound) {
		return nil, NewError(ErrUnknownSymbol, "symbol %s does not exist", symbol)
	}
	if err != nil {
		return nil, err
	}

	quote := *v.(*schemas.Quote)
	quote.Symbol = schemas.NormalizeSymbol(quote.Symbol)
	quote.Price = quote.Price.Round(pricePlaces)
	if !quote.Price.IsPositive() {
		return nil, NewError(ErrUnknownSymbol, "symbol %s has no price", symbol)
	}
	return &quote, nil
}
