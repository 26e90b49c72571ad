package repositories

import (
	"context"
	"fmt"

	"finance/src/models"

	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	// GetByUserID returns the user's transactions in insertion order.
	GetByUserID(ctx context.Context, userID int64) ([]models.Transaction, error)
	// SharesBySymbol sums the signed shares of every transaction of the user
	// for symbol.
	SharesBySymbol(ctx context.Context, userID int64, symbol string) (int64, error)
	// GetHoldings returns one row per symbol with a nonzero net position,
	// ordered by symbol, carrying the price of the latest transaction.
	GetHoldings(ctx context.Context, userID int64) ([]models.Holding, error)
}

type transactionRepo struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, symbol, shares, price, transacted_at)
		VALUES ($1, $2, $3, $4::numeric, $5)
		RETURNING id`

	return r.db.QueryRow(ctx, query,
		t.UserID, t.Symbol, t.Shares, t.Price.String(), t.TransactedAt,
	).Scan(&t.ID)
}

func (r *transactionRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, symbol, shares, price::text, transacted_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		var price string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Shares, &price, &t.TransactedAt); err != nil {
			return nil, err
		}
		t.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parsing price of transaction %d: %w", t.ID, err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepo) SharesBySymbol(ctx context.Context, userID int64, symbol string) (int64, error) {
	var shares int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(shares), 0)::bigint FROM transactions WHERE user_id = $1 AND symbol = $2`,
		userID, symbol,
	).Scan(&shares)
	return shares, err
}

func (r *transactionRepo) GetHoldings(ctx context.Context, userID int64) ([]models.Holding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.symbol,
			SUM(t.shares)::bigint AS shares,
			(SELECT l.price::text
				FROM transactions l
				WHERE l.user_id = t.user_id AND l.symbol = t.symbol
				ORDER BY l.id DESC
				LIMIT 1) AS last_price
		FROM transactions t
		WHERE t.user_id = $1
		GROUP BY t.user_id, t.symbol
		HAVING SUM(t.shares) <> 0
		ORDER BY t.symbol`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := make([]models.Holding, 0)
	for rows.Next() {
		h := models.Holding{UserID: userID}
		var lastPrice string
		if err := rows.Scan(&h.Symbol, &h.Shares, &lastPrice); err != nil {
			return nil, err
		}
		h.LastPrice, err = decimal.NewFromString(lastPrice)
		if err != nil {
			return nil, fmt.Errorf("parsing last price of %s: %w", h.Symbol, err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
