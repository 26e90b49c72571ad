package schemas

import "github.com/shopspring/decimal"

type Position struct {
	Symbol    string
	Name      string
	Shares    int64
	LastPrice decimal.Decimal
	Value     decimal.Decimal
}

// PortfolioSnapshot is the valued view of a user's holdings. Total is Cash
// plus the value of every position.
type PortfolioSnapshot struct {
	Cash      decimal.Decimal
	Positions []Position
	Total     decimal.Decimal
}
