package api

import (
	"context"
	"fmt"

	handlers "finance/src/api/handlers"
	"finance/src/clients"
	"finance/src/clients/alphavantage"
	"finance/src/clients/static"
	"finance/src/config"
	"finance/src/database"
	"finance/src/repositories"
	"finance/src/scheduler"
	"finance/src/services"
	"finance/src/sessions"
	redis_utils "finance/src/utils/redis"
	"finance/src/utils/render"

	"github.com/sirupsen/logrus"
)

const sessionPurgeSpec = "@every 1m"

// Build wires the configured store, quote provider and session backend into
// a Server. The returned cleanup releases their connections.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	store, err := newStore(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	quoteClient, err := newQuoteClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	sessionStore, err := newSessionStore(ctx, cfg, logger, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	auth, err := services.NewAuthService(store.Users(), cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	ledger := services.NewLedgerService(store, services.NewQuoteService(quoteClient), cfg.Ledger)
	handler := handlers.NewHandler(
		ledger,
		auth,
		sessions.NewManager(sessionStore, cfg.Sessions),
		renderer,
		cfg.Service.RequestTimeout,
	)

	logger.WithFields(logrus.Fields{
		"store":    cfg.Databases.SQL.Driver,
		"quotes":   cfg.ExternalClients.Provider,
		"sessions": cfg.Sessions.Driver,
	}).Info("server wired")
	return NewServer(handler, logger), cleanup, nil
}

func newStore(ctx context.Context, cfg *config.Config, closers *[]func()) (repositories.Store, error) {
	switch cfg.Databases.SQL.Driver {
	case config.MemoryDriver:
		return repositories.NewMemoryStore(), nil
	case config.PostgresDriver:
		pool, err := database.SetupDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, pool.Close)
		return repositories.NewStore(pool), nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Databases.SQL.Driver)
	}
}

func newQuoteClient(cfg *config.Config) (clients.QuoteClient, error) {
	switch cfg.ExternalClients.Provider {
	case config.StaticProvider:
		client, err := static.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.AlphaVantageProvider:
		if cfg.ExternalClients.AlphaVantage.APIKey == "" {
			return nil, fmt.Errorf("externalClients.alphaVantage.apiKey is required")
		}
		return alphavantage.NewClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported quote provider %q", cfg.ExternalClients.Provider)
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger, closers *[]func()) (sessions.Store, error) {
	switch cfg.Sessions.Driver {
	case config.MemorySessions:
		store := sessions.NewMemoryStore()
		janitor, err := scheduler.NewScheduledTask(sessionPurgeSpec, func() {
			if n := store.Purge(); n > 0 {
				logger.WithField("purged", n).Debug("expired sessions removed")
			}
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, janitor.Cancel)
		return store, nil
	case config.RedisSessions:
		handler, err := redis_utils.NewRedisHandler(ctx, cfg)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func() { _ = handler.Close() })
		return sessions.NewRedisStore(handler), nil
	default:
		return nil, fmt.Errorf("unsupported session driver %q", cfg.Sessions.Driver)
	}
}
