// Package report renders ledger results as markdown for the terminal.
package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats amount in the currency's own style, e.g. "₹1,234.50".
// Unknown codes fall back to the code itself as the symbol.
func Money(amount float64, code string) string {
	// money.New never returns a nil currency, even for unknown codes
	cur := *money.New(0, code).Currency()
	dec := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	if dec.IsNegative() {
		return "-" + cur.Formatter().Format(dec.Neg().IntPart())
	}
	return cur.Formatter().Format(dec.IntPart())
}
