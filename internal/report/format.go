package report

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const na = "N/A"

// Money formats an amount in the given ISO currency, e.g. "$96,995,000,000.00".
func Money(d decimal.Decimal, currency string) string {
	if currency == "" {
		currency = money.USD
	}
	// unknown codes get a plain formatter
	cur := money.New(0, currency).Currency()
	return cur.Formatter().Format(d.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// NullMoney is Money for an optional amount.
func NullMoney(d decimal.NullDecimal, currency string) string {
	if !d.Valid {
		return na
	}
	return Money(d.Decimal, currency)
}

// Number formats a large amount with thousands separators.
func Number(d decimal.Decimal) string {
	return humanize.Commaf(d.Round(2).InexactFloat64())
}

// NullNumber is Number for an optional amount.
func NullNumber(d decimal.NullDecimal) string {
	if !d.Valid {
		return na
	}
	return Number(d.Decimal)
}

// Ratio formats a ratio with four decimals.
func Ratio(d decimal.NullDecimal) string {
	if !d.Valid {
		return na
	}
	return d.Decimal.StringFixed(4)
}

// Percent formats a fraction as a percentage, e.g. 0.1234 as "12.34%".
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return na
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// Float formats v with the given number of decimals.
func Float(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return na
	}
	return humanize.CommafWithDigits(v, decimals)
}
