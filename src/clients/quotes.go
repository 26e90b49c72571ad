package clients

import (
	"context"
	"errors"

	"finance/src/schemas"
)

// ErrSymbolNotFound is returned by a QuoteClient when the provider does not
// know the requested symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// QuoteClient resolves a normalized ticker symbol to its current quote.
type QuoteClient interface {
	Lookup(ctx context.Context, symbol string) (*schemas.Quote, error)
}
