package schemas

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports a form field that failed validation. Message is
// safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// TradeForm is the raw input of a buy or sell request.
type TradeForm struct {
	Symbol string
	Shares string
}

type BuyForm = TradeForm

type SellForm = TradeForm

// Validate returns the normalized symbol and the share count, which must be
// a positive whole number.
func (f TradeForm) Validate() (string, int64, error) {
	symbol := NormalizeSymbol(f.Symbol)
	if symbol == "" {
		return "", 0, invalid("symbol", "must provide symbol")
	}
	shares, err := strconv.ParseInt(strings.TrimSpace(f.Shares), 10, 64)
	if err != nil || shares <= 0 {
		return "", 0, invalid("shares", "shares must be a positive integer")
	}
	return symbol, shares, nil
}

func ParseTradeForm(r *http.Request) TradeForm {
	return TradeForm{
		Symbol: r.PostFormValue("symbol"),
		Shares: r.PostFormValue("shares"),
	}
}

// MaxAmount bounds every balance and cash amount. NUMERIC(20,4) columns hold
// sixteen integer digits.
var MaxAmount = decimal.New(1, maxAmountDigits)

const maxAmountDigits = 16

type AddCashForm struct {
	Amount string
}

// Validate parses the amount, rounds it to cents and requires the result to
// be positive and below MaxAmount.
func (f AddCashForm) Validate() (decimal.Decimal, error) {
	raw := strings.TrimSpace(f.Amount)
	if raw == "" {
		return decimal.Zero, invalid("amount", "must provide an amount")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid("amount", "amount must be a number")
	}
	if !amount.IsPositive() || integerDigits(amount) < -2 {
		return decimal.Zero, invalid("amount", "amount must be greater than 0")
	}
	if integerDigits(amount) > maxAmountDigits {
		return decimal.Zero, invalid("amount", "amount is too large")
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, invalid("amount", "amount must be greater than 0")
	}
	if !amount.LessThan(MaxAmount) {
		return decimal.Zero, invalid("amount", "amount is too large")
	}
	return amount, nil
}

// integerDigits is the position of the most significant digit relative to
// the decimal point, computed without expanding the exponent.
func integerDigits(d decimal.Decimal) int {
	return d.NumDigits() + int(d.Exponent())
}

func ParseAddCashForm(r *http.Request) AddCashForm {
	return AddCashForm{Amount: r.PostFormValue("amount")}
}

type QuoteForm struct {
	Symbol string
}

func (f QuoteForm) Validate() (string, error) {
	symbol := NormalizeSymbol(f.Symbol)
	if symbol == "" {
		return "", invalid("symbol", "must provide symbol")
	}
	return symbol, nil
}

func ParseQuoteForm(r *http.Request) QuoteForm {
	return QuoteForm{Symbol: r.PostFormValue("symbol")}
}

type LoginForm struct {
	Username string
	Password string
}

func (f LoginForm) Validate() error {
	if strings.TrimSpace(f.Username) == "" {
		return invalid("username", "must provide username")
	}
	if f.Password == "" {
		return invalid("password", "must provide password")
	}
	return nil
}

func ParseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

type RegisterForm struct {
	Username     string
	Password     string
	Confirmation string
}

func (f RegisterForm) Validate() error {
	switch {
	case strings.TrimSpace(f.Username) == "":
		return invalid("username", "must provide username")
	case f.Password == "":
		return invalid("password", "must provide password")
	case f.Confirmation == "":
		return invalid("confirmation", "must provide confirmation")
	case f.Password != f.Confirmation:
		return invalid("confirmation", "passwords do not match")
	}
	return nil
}

func ParseRegisterForm(r *http.Request) RegisterForm {
	return RegisterForm{
		Username:     strings.TrimSpace(r.PostFormValue("username")),
		Password:     r.PostFormValue("password"),
		Confirmation: r.PostFormValue("confirmation"),
	}
}
