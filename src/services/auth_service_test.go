package services_test

import (
	"context"
	"strings"
	"testing"

	"finance/src/config"
	"finance/src/repositories"
	"finance/src/schemas"
	"finance/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*services.AuthService, repositories.Store) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Ledger.StartingCash = "10000.00"
	cfg.Auth.BcryptCost = 4

	store := repositories.NewMemoryStore()
	auth, err := services.NewAuthService(store.Users(), cfg)
	require.NoError(t, err)
	return auth, store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("new user gets the starting cash", func(t *testing.T) {
		auth, _ := newAuthService(t)
		user, err := auth.Register(ctx, schemas.RegisterForm{Username: "alice", Password: "pw", Confirmation: "pw"})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		requireDecimal(t, "10000", user.Cash)
		assert.NotEqual(t, "pw", user.Hash)
	})

	t.Run("duplicate username", func(t *testing.T) {
		auth, store := newAuthService(t)
		_, err := auth.Register(ctx, schemas.RegisterForm{Username: "bob", Password: "one", Confirmation: "one"})
		require.NoError(t, err)

		_, err = auth.Register(ctx, schemas.RegisterForm{Username: "bob", Password: "two", Confirmation: "two"})
		assert.ErrorIs(t, err, services.ErrDuplicateUsername)

		_, err = auth.Login(ctx, schemas.LoginForm{Username: "bob", Password: "one"})
		assert.NoError(t, err)

		_, err = store.Users().GetByUsername(ctx, "bob")
		assert.NoError(t, err)
	})

	t.Run("invalid forms", func(t *testing.T) {
		auth, _ := newAuthService(t)
		for _, form := range []schemas.RegisterForm{
			{Password: "pw", Confirmation: "pw"},
			{Username: "x", Confirmation: "pw"},
			{Username: "x", Password: "pw"},
			{Username: "x", Password: "pw", Confirmation: "wp"},
			{Username: "x", Password: strings.Repeat("a", 73), Confirmation: strings.Repeat("a", 73)},
		} {
			_, err := auth.Register(ctx, form)
			assert.ErrorIs(t, err, services.ErrInvalidInput, "form %+v", form)
		}
	})

	t.Run("bad starting cash is a configuration error", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Ledger.StartingCash = "lots"
		_, err := services.NewAuthService(repositories.NewMemoryStore().Users(), cfg)
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthService(t)
	registered, err := auth.Register(ctx, schemas.RegisterForm{Username: "carol", Password: "secret", Confirmation: "secret"})
	require.NoError(t, err)

	user, err := auth.Login(ctx, schemas.LoginForm{Username: "carol", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = auth.Login(ctx, schemas.LoginForm{Username: "carol", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = auth.Login(ctx, schemas.LoginForm{Username: "nobody", Password: "secret"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = auth.Login(ctx, schemas.LoginForm{Username: "carol"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}
