package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"finance/src/config"
	"finance/src/schemas"
	"finance/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingQuotes struct{}

func (failingQuotes) Lookup(context.Context, string) (*schemas.Quote, error) {
	return nil, errors.New("provider down")
}

func TestLedgerScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	user := f.newUser(t, "alice", "10000.00")

	cash, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "aapl", Shares: "10"})
	require.NoError(t, err)
	requireDecimal(t, "8500", cash)

	f.quotes.Set(quote("AAPL", "Apple Inc.", "160.00"))

	cash, err = f.ledger.Sell(ctx, user.ID, schemas.SellForm{Symbol: "AAPL", Shares: "5"})
	require.NoError(t, err)
	requireDecimal(t, "9300", cash)
	requireDecimal(t, "9300", f.cash(t, user.ID))

	snapshot, err := f.ledger.PortfolioSnapshot(ctx, user.ID)
	require.NoError(t, err)
	requireDecimal(t, "9300", snapshot.Cash)
	require.Len(t, snapshot.Positions, 1)
	assert.Equal(t, "AAPL", snapshot.Positions[0].Symbol)
	assert.Equal(t, int64(5), snapshot.Positions[0].Shares)
	requireDecimal(t, "160", snapshot.Positions[0].LastPrice)
	requireDecimal(t, "800", snapshot.Positions[0].Value)
	requireDecimal(t, "10100", snapshot.Total)

	history, err := f.ledger.TransactionHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(10), history[0].Shares)
	requireDecimal(t, "150", history[0].Price)
	assert.Equal(t, int64(-5), history[1].Shares)
	requireDecimal(t, "160", history[1].Price)
}

func TestBuy(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient funds leaves the ledger untouched", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "bob", "299.99")

		_, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "AAPL", Shares: "2"})
		assert.ErrorIs(t, err, services.ErrInsufficientFunds)
		requireDecimal(t, "299.99", f.cash(t, user.ID))

		history, err := f.ledger.TransactionHistory(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("spending exactly the balance is allowed", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "carol", "300")

		cash, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "AAPL", Shares: "2"})
		require.NoError(t, err)
		assert.True(t, cash.IsZero())
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "dave", "1000")

		for _, form := range []schemas.BuyForm{
			{Symbol: "", Shares: "1"},
			{Symbol: "AAPL", Shares: "0"},
			{Symbol: "AAPL", Shares: "-1"},
			{Symbol: "AAPL", Shares: "one"},
		} {
			_, err := f.ledger.Buy(ctx, user.ID, form)
			assert.ErrorIs(t, err, services.ErrInvalidInput, "form %+v", form)
		}
	})

	t.Run("huge orders report the full cost", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "erin", "10000.00")

		_, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "AAPL", Shares: "9223372036854775807"})
		assert.ErrorIs(t, err, services.ErrInsufficientFunds)
		assert.EqualError(t, err, "not enough cash: $1,383,505,805,528,216,371,050.00 needed, $10,000.00 available")
		requireDecimal(t, "10000", f.cash(t, user.ID))
	})

	t.Run("unknown symbol", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "erin", "1000")

		_, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "ZZZZ", Shares: "1"})
		assert.ErrorIs(t, err, services.ErrUnknownSymbol)
		assert.EqualError(t, err, "symbol ZZZZ does not exist")
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.ledger.Buy(ctx, 99, schemas.BuyForm{Symbol: "AAPL", Shares: "1"})
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})
}

func TestSell(t *testing.T) {
	ctx := context.Background()

	t.Run("more than held", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "frank", "1000")
		_, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "AAPL", Shares: "3"})
		require.NoError(t, err)

		_, err = f.ledger.Sell(ctx, user.ID, schemas.SellForm{Symbol: "AAPL", Shares: "4"})
		assert.ErrorIs(t, err, services.ErrInsufficientShares)
		requireDecimal(t, "550", f.cash(t, user.ID))

		history, err := f.ledger.TransactionHistory(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("never held", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "gina", "1000")

		_, err := f.ledger.Sell(ctx, user.ID, schemas.SellForm{Symbol: "NFLX", Shares: "1"})
		assert.ErrorIs(t, err, services.ErrInsufficientShares)
	})

	t.Run("selling everything closes the position", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "hank", "1000")
		_, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "NFLX", Shares: "2"})
		require.NoError(t, err)

		symbols, err := f.ledger.SellableSymbols(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"NFLX"}, symbols)

		cash, err := f.ledger.Sell(ctx, user.ID, schemas.SellForm{Symbol: "nflx", Shares: "2"})
		require.NoError(t, err)
		requireDecimal(t, "1000", cash)

		snapshot, err := f.ledger.PortfolioSnapshot(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, snapshot.Positions)
		requireDecimal(t, "1000", snapshot.Total)

		symbols, err = f.ledger.SellableSymbols(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, symbols)
	})
}

func TestAddCash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	user := f.newUser(t, "ivan", "0")

	cash, err := f.ledger.AddCash(ctx, user.ID, schemas.AddCashForm{Amount: "300.004"})
	require.NoError(t, err)
	requireDecimal(t, "300", cash)

	cash, err = f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "AAPL", Shares: "2"})
	require.NoError(t, err)
	assert.True(t, cash.IsZero())

	for _, amount := range []string{"", "0", "-10", "0.001", "lots", "1e30", "1e2000000"} {
		_, err := f.ledger.AddCash(ctx, user.ID, schemas.AddCashForm{Amount: amount})
		assert.ErrorIs(t, err, services.ErrInvalidInput, "amount %q", amount)
	}
	assert.True(t, f.cash(t, user.ID).IsZero())
}

func TestAddCashCannotOverflowBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	user := f.newUser(t, "ivy", "10000.00")

	cash, err := f.ledger.AddCash(ctx, user.ID, schemas.AddCashForm{Amount: "9999999999989999.99"})
	require.NoError(t, err)
	requireDecimal(t, "9999999999999999.99", cash)

	_, err = f.ledger.AddCash(ctx, user.ID, schemas.AddCashForm{Amount: "0.01"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	requireDecimal(t, "9999999999999999.99", f.cash(t, user.ID))
}

func TestConcurrentSellsNeverOversell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	user := f.newUser(t, "mallory", "10000.00")

	_, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "AAPL", Shares: "10"})
	require.NoError(t, err)

	const sellers = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		sold      int
		shortages int
	)
	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Sell(ctx, user.ID, schemas.SellForm{Symbol: "AAPL", Shares: "1"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, services.ErrInsufficientShares):
				shortages++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, sold)
	assert.Equal(t, sellers-10, shortages)
	requireDecimal(t, "10000", f.cash(t, user.ID))

	symbols, err := f.ledger.SellableSymbols(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, symbols)

	history, err := f.ledger.TransactionHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 11)
}

func TestPortfolioSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("empty portfolio", func(t *testing.T) {
		f := newFixture(t, true)
		user := f.newUser(t, "judy", "10000.00")

		snapshot, err := f.ledger.PortfolioSnapshot(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, snapshot.Positions)
		assert.Empty(t, snapshot.Positions)
		requireDecimal(t, "10000", snapshot.Total)

		history, err := f.ledger.TransactionHistory(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, history)
		assert.Empty(t, history)
	})

	t.Run("live valuation uses the current quote", func(t *testing.T) {
		f := newFixture(t, true)
		user := f.newUser(t, "kim", "1000")
		_, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "AAPL", Shares: "2"})
		require.NoError(t, err)
		_, err = f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "NFLX", Shares: "1"})
		require.NoError(t, err)

		f.quotes.Set(quote("AAPL", "Apple Inc.", "175.50"))

		snapshot, err := f.ledger.PortfolioSnapshot(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, snapshot.Positions, 2)
		assert.Equal(t, "AAPL", snapshot.Positions[0].Symbol)
		assert.Equal(t, "Apple Inc.", snapshot.Positions[0].Name)
		requireDecimal(t, "175.50", snapshot.Positions[0].LastPrice)
		requireDecimal(t, "351", snapshot.Positions[0].Value)
		assert.Equal(t, "NFLX", snapshot.Positions[1].Symbol)
		requireDecimal(t, "299.75", snapshot.Cash)
		requireDecimal(t, "1051", snapshot.Total)
	})

	t.Run("failed live lookup falls back to the last price", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.newUser(t, "leo", "1000")
		_, err := f.ledger.Buy(ctx, user.ID, schemas.BuyForm{Symbol: "AAPL", Shares: "1"})
		require.NoError(t, err)

		ledger := services.NewLedgerService(f.store, failingQuotes{}, config.LedgerConfig{LiveValuation: true})

		snapshot, err := ledger.PortfolioSnapshot(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, snapshot.Positions, 1)
		requireDecimal(t, "150", snapshot.Positions[0].LastPrice)
		assert.Equal(t, "AAPL", snapshot.Positions[0].Name)
	})
}

func TestQuote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	q, err := f.ledger.Quote(ctx, schemas.QuoteForm{Symbol: " nflx"})
	require.NoError(t, err)
	assert.Equal(t, "NFLX", q.Symbol)
	assert.Equal(t, "Netflix Inc.", q.Name)
	requireDecimal(t, "400.25", q.Price)

	_, err = f.ledger.Quote(ctx, schemas.QuoteForm{})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.ledger.Quote(ctx, schemas.QuoteForm{Symbol: "nope"})
	assert.ErrorIs(t, err, services.ErrUnknownSymbol)
}
