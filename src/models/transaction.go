package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one immutable ledger entry. Shares is positive for a buy
// and negative for a sell.
type Transaction struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	Symbol       string          `db:"symbol"`
	Shares       int64           `db:"shares"`
	Price        decimal.Decimal `db:"price"`
	TransactedAt time.Time       `db:"transacted_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t Transaction) IsBuy() bool {
	return t.Shares > 0
}

// Amount is the cash moved by the transaction: negative for a buy, positive
// for a sell.
func (t Transaction) Amount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(-t.Shares))
}
