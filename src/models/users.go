package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64           `db:"id"`
	Username  string          `db:"username"`
	Hash      string          `db:"hash"`
	Cash      decimal.Decimal `db:"cash"`
	CreatedAt time.Time       `db:"created_at"`
}

func (User) TableName() string {
	return "users"
}
