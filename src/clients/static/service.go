package static

import (
	"context"
	"fmt"

	"finance/src/clients"
	"finance/src/config"
	"finance/src/schemas"

	"github.com/shopspring/decimal"
)

// StaticClient serves quotes from a fixed table. It backs tests and offline
// development.
type StaticClient struct {
	quotes map[string]schemas.Quote
}

// NewClient builds the table from configuration. Keys are normalized since
// viper lowercases map keys.
func NewClient(cfg *config.Config) (*StaticClient, error) {
	quotes := make(map[string]schemas.Quote, len(cfg.ExternalClients.Static.Quotes))
	for key, q := range cfg.ExternalClients.Static.Quotes {
		symbol := schemas.NormalizeSymbol(key)
		price, err := decimal.NewFromString(q.Price)
		if err != nil {
			return nil, fmt.Errorf("static quote %s: invalid price %q: %w", symbol, q.Price, err)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("static quote %s: price must be positive", symbol)
		}
		name := q.Name
		if name == "" {
			name = symbol
		}
		quotes[symbol] = schemas.Quote{Symbol: symbol, Name: name, Price: price}
	}
	return &StaticClient{quotes: quotes}, nil
}

func NewClientFromQuotes(quotes ...schemas.Quote) *StaticClient {
	c := &StaticClient{quotes: make(map[string]schemas.Quote, len(quotes))}
	for _, q := range quotes {
		c.Set(q)
	}
	return c
}

// Set adds or replaces a quote. It is not safe for use concurrently with
// Lookup.
func (c *StaticClient) Set(q schemas.Quote) {
	q.Symbol = schemas.NormalizeSymbol(q.Symbol)
	c.quotes[q.Symbol] = q
}

func (c *StaticClient) Lookup(ctx context.Context, symbol string) (*schemas.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, ok := c.quotes[schemas.NormalizeSymbol(symbol)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", clients.ErrSymbolNotFound, symbol)
	}
	return &q, nil
}
