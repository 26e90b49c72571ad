package services_test

import (
	"context"
	"testing"

	"finance/src/clients/static"
	"finance/src/config"
	"finance/src/models"
	"finance/src/repositories"
	"finance/src/schemas"
	"finance/src/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func quote(symbol, name, price string) schemas.Quote {
	return schemas.Quote{Symbol: symbol, Name: name, Price: decimal.RequireFromString(price)}
}

type fixture struct {
	store  *repositories.MemoryStore
	quotes *static.StaticClient
	ledger *services.LedgerService
}

func newFixture(t *testing.T, live bool) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	quotes := static.NewClientFromQuotes(
		quote("AAPL", "Apple Inc.", "150.00"),
		quote("NFLX", "Netflix Inc.", "400.25"),
	)
	ledger := services.NewLedgerService(store, services.NewQuoteService(quotes), config.LedgerConfig{LiveValuation: live})
	return &fixture{store: store, quotes: quotes, ledger: ledger}
}

func (f *fixture) newUser(t *testing.T, username, cash string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Hash: "x", Cash: decimal.RequireFromString(cash)}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func (f *fixture) cash(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()
	user, err := f.store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	return user.Cash
}

func requireDecimal(t require.TestingT, want string, got decimal.Decimal) {
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
