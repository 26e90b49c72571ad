package models

import (
	"github.com/shopspring/decimal"
)

// Holding is the net position of a user in one symbol, aggregated from the
// transaction log. It is never persisted.
type Holding struct {
	UserID    int64           `db:"user_id"`
	Symbol    string          `db:"symbol"`
	Shares    int64           `db:"shares"`
	LastPrice decimal.Decimal `db:"last_price"`
}
