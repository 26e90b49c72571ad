package utils

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// maxMoneyCents is the largest magnitude go-money can hold as int64 cents.
var maxMoneyCents = decimal.NewFromInt(9_000_000_000_000_000)

// FormatUSD renders amount as dollars, e.g. "$1,234.56". Sub-cent digits are
// rounded away.
func FormatUSD(amount decimal.Decimal) string {
	cents := amount.Shift(2).Round(0)
	if cents.Abs().LessThan(maxMoneyCents) {
		return money.New(cents.IntPart(), money.USD).Display()
	}
	return groupUSD(amount.StringFixed(2))
}

// groupUSD formats a fixed two-place decimal string with thousands separators
// the same way go-money displays USD.
func groupUSD(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("$")
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
