package services

import (
	"context"
	"errors"
	"time"

	"finance/src/config"
	"finance/src/models"
	"finance/src/repositories"
	"finance/src/schemas"
	"finance/src/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type LedgerServiceI interface {
	Buy(ctx context.Context, userID int64, form schemas.BuyForm) (decimal.Decimal, error)
	Sell(ctx context.Context, userID int64, form schemas.SellForm) (decimal.Decimal, error)
	AddCash(ctx context.Context, userID int64, form schemas.AddCashForm) (decimal.Decimal, error)
	PortfolioSnapshot(ctx context.Context, userID int64) (*schemas.PortfolioSnapshot, error)
	TransactionHistory(ctx context.Context, userID int64) ([]models.Transaction, error)
	SellableSymbols(ctx context.Context, userID int64) ([]string, error)
	Quote(ctx context.Context, form schemas.QuoteForm) (*schemas.Quote, error)
}

// LedgerService owns every change to a user's cash and transaction log.
// Holdings are always derived from the log.
type LedgerService struct {
	store         repositories.Store
	quotes        QuoteServiceI
	liveValuation bool
	now           func() time.Time
}

func NewLedgerService(store repositories.Store, quotes QuoteServiceI, cfg config.LedgerConfig) *LedgerService {
	return &LedgerService{
		store:         store,
		quotes:        quotes,
		liveValuation: cfg.LiveValuation,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Buy debits shares*price from the user's cash and records a positive
// transaction, both in one database transaction.
func (s *LedgerService) Buy(ctx context.Context, userID int64, form schemas.BuyForm) (decimal.Decimal, error) {
	symbol, shares, err := form.Validate()
	if err != nil {
		return decimal.Zero, invalidInput(err)
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	cost := quote.Price.Mul(decimal.NewFromInt(shares))

	var cash decimal.Decimal
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		user, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cost.GreaterThan(user.Cash) {
			return NewError(ErrInsufficientFunds, "not enough cash: %s needed, %s available",
				utils.FormatUSD(cost), utils.FormatUSD(user.Cash))
		}

		cash = user.Cash.Sub(cost)
		if err := tx.Users().UpdateCash(ctx, userID, cash); err != nil {
			return err
		}
		return tx.Transactions().Create(ctx, &models.Transaction{
			UserID:       userID,
			Symbol:       quote.Symbol,
			Shares:       shares,
			Price:        quote.Price,
			TransactedAt: s.now(),
		})
	})
	if err != nil {
		return decimal.Zero, err
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id": userID,
		"symbol":  quote.Symbol,
		"shares":  shares,
		"price":   quote.Price.String(),
	}).Info("shares bought")
	return cash, nil
}

// Sell credits shares*price and records a negative transaction. The held
// amount is read after locking the user so concurrent sells cannot
// oversell.
func (s *LedgerService) Sell(ctx context.Context, userID int64, form schemas.SellForm) (decimal.Decimal, error) {
	symbol, shares, err := form.Validate()
	if err != nil {
		return decimal.Zero, invalidInput(err)
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	proceeds := quote.Price.Mul(decimal.NewFromInt(shares))

	var cash decimal.Decimal
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		user, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		held, err := tx.Transactions().SharesBySymbol(ctx, userID, quote.Symbol)
		if err != nil {
			return err
		}
		if shares > held {
			return NewError(ErrInsufficientShares, "you only have %d shares of %s", held, quote.Symbol)
		}

		cash = user.Cash.Add(proceeds)
		if err := checkBalance(cash); err != nil {
			return err
		}
		if err := tx.Users().UpdateCash(ctx, userID, cash); err != nil {
			return err
		}
		return tx.Transactions().Create(ctx, &models.Transaction{
			UserID:       userID,
			Symbol:       quote.Symbol,
			Shares:       -shares,
			Price:        quote.Price,
			TransactedAt: s.now(),
		})
	})
	if err != nil {
		return decimal.Zero, err
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id": userID,
		"symbol":  quote.Symbol,
		"shares":  shares,
		"price":   quote.Price.String(),
	}).Info("shares sold")
	return cash, nil
}

// AddCash tops up the user's balance by the amount rounded to cents.
func (s *LedgerService) AddCash(ctx context.Context, userID int64, form schemas.AddCashForm) (decimal.Decimal, error) {
	amount, err := form.Validate()
	if err != nil {
		return decimal.Zero, invalidInput(err)
	}

	var cash decimal.Decimal
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		user, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		cash = user.Cash.Add(amount)
		if err := checkBalance(cash); err != nil {
			return err
		}
		return tx.Users().UpdateCash(ctx, userID, cash)
	})
	if err != nil {
		return decimal.Zero, err
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  amount.String(),
	}).Info("cash added")
	return cash, nil
}

// PortfolioSnapshot values every nonzero position. With live valuation a
// fresh quote replaces the last transaction price; failed lookups keep it.
func (s *LedgerService) PortfolioSnapshot(ctx context.Context, userID int64) (*schemas.PortfolioSnapshot, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NewError(ErrUnauthenticated, "unknown user")
	}
	if err != nil {
		return nil, err
	}

	holdings, err := s.store.Transactions().GetHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &schemas.PortfolioSnapshot{
		Cash:      user.Cash,
		Positions: make([]schemas.Position, 0, len(holdings)),
		Total:     user.Cash,
	}
	for _, h := range holdings {
		position := schemas.Position{Symbol: h.Symbol, Name: h.Symbol, Shares: h.Shares, LastPrice: h.LastPrice}
		if s.liveValuation {
			quote, err := s.quotes.Lookup(ctx, h.Symbol)
			if err != nil {
				utils.LoggerFromContext(ctx).WithError(err).WithField("symbol", h.Symbol).
					Warn("live valuation failed, using last transaction price")
			} else {
				position.Name = quote.Name
				position.LastPrice = quote.Price
			}
		}
		position.Value = position.LastPrice.Mul(decimal.NewFromInt(position.Shares))
		snapshot.Total = snapshot.Total.Add(position.Value)
		snapshot.Positions = append(snapshot.Positions, position)
	}
	return snapshot, nil
}

// TransactionHistory returns the log in the order it was written.
func (s *LedgerService) TransactionHistory(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return s.store.Transactions().GetByUserID(ctx, userID)
}

// SellableSymbols lists the symbols with a positive net holding.
func (s *LedgerService) SellableSymbols(ctx context.Context, userID int64) ([]string, error) {
	holdings, err := s.store.Transactions().GetHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if h.Shares > 0 {
			symbols = append(symbols, h.Symbol)
		}
	}
	return symbols, nil
}

func (s *LedgerService) Quote(ctx context.Context, form schemas.QuoteForm) (*schemas.Quote, error) {
	symbol, err := form.Validate()
	if err != nil {
		return nil, invalidInput(err)
	}
	return s.quotes.Lookup(ctx, symbol)
}

// checkBalance keeps cash within what the users.cash column can store so the
// memory and Postgres stores reject the same updates.
func checkBalance(cash decimal.Decimal) error {
	if !cash.LessThan(schemas.MaxAmount) {
		return NewError(ErrInvalidInput, "balance cannot reach %s", utils.FormatUSD(schemas.MaxAmount))
	}
	return nil
}

func lockUser(ctx context.Context, tx repositories.Store, userID int64) (*models.User, error) {
	user, err := tx.Users().GetForUpdate(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NewError(ErrUnauthenticated, "unknown user")
	}
	return user, err
}
