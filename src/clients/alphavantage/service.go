package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"finance/src/clients"
	"finance/src/config"
	"finance/src/schemas"
	"finance/src/utils"
	"finance/src/utils/requests"

	"github.com/shopspring/decimal"
)

type AlphaVantageClientI interface {
	clients.QuoteClient
	GetGlobalQuote(ctx context.Context, symbol string) (*GetGlobalQuoteResponse, error)
	SearchSymbol(ctx context.Context, keywords string) (*SymbolSearchResponse, error)
}

var _ AlphaVantageClientI = (*AlphaVantageClient)(nil)

type AlphaVantageClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
	APIKey  string
}

// NewClient creates a new instance of AlphaVantageClient
func NewClient(cfg *config.Config) *AlphaVantageClient {
	av := cfg.ExternalClients.AlphaVantage
	return &AlphaVantageClient{
		API:     requests.NewExternalAPIService(av.Timeout),
		BaseURL: strings.TrimRight(av.BaseURL, "/"),
		APIKey:  av.APIKey,
	}
}

func (c *AlphaVantageClient) query(ctx context.Context, function string, params url.Values, result interface{}) error {
	params.Set("function", function)
	params.Set("apikey", c.APIKey)
	return c.API.GetJSON(ctx, c.BaseURL+"/query", params, result)
}

// GetGlobalQuote fetches the latest price information for symbol.
func (c *AlphaVantageClient) GetGlobalQuote(ctx context.Context, symbol string) (*GetGlobalQuoteResponse, error) {
	var response GetGlobalQuoteResponse
	if err := c.query(ctx, "GLOBAL_QUOTE", url.Values{"symbol": {symbol}}, &response); err != nil {
		return nil, err
	}
	if msg := response.message(); msg != "" {
		return nil, utils.ServiceUnavailable("alphavantage: " + msg)
	}
	return &response, nil
}

// SearchSymbol returns the best matches for keywords, used to resolve a
// company name.
func (c *AlphaVantageClient) SearchSymbol(ctx context.Context, keywords string) (*SymbolSearchResponse, error) {
	var response SymbolSearchResponse
	if err := c.query(ctx, "SYMBOL_SEARCH", url.Values{"keywords": {keywords}}, &response); err != nil {
		return nil, err
	}
	if msg := response.message(); msg != "" {
		return nil, utils.ServiceUnavailable("alphavantage: " + msg)
	}
	return &response, nil
}

// Lookup combines GLOBAL_QUOTE and SYMBOL_SEARCH. An empty quote means the
// symbol is unknown. The name falls back to the symbol when the search has
// no exact match or fails.
func (c *AlphaVantageClient) Lookup(ctx context.Context, symbol string) (*schemas.Quote, error) {
	quoteResponse, err := c.GetGlobalQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	gq := quoteResponse.GlobalQuote
	if gq.Symbol == "" || gq.Price == "" {
		return nil, fmt.Errorf("%w: %s", clients.ErrSymbolNotFound, symbol)
	}

	price, err := decimal.NewFromString(gq.Price)
	if err != nil {
		return nil, fmt.Errorf("parsing price %q of %s: %w", gq.Price, symbol, err)
	}

	quote := &schemas.Quote{Symbol: strings.ToUpper(gq.Symbol), Name: strings.ToUpper(gq.Symbol), Price: price}

	search, err := c.SearchSymbol(ctx, symbol)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).WithField("symbol", symbol).Warn("symbol search failed")
		return quote, nil
	}
	for _, match := range search.BestMatches {
		if strings.EqualFold(match.Symbol, quote.Symbol) && match.Name != "" {
			quote.Name = match.Name
			break
		}
	}
	return quote, nil
}
