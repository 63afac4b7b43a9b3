package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places amounts are stored with
const MoneyPlaces = 2

// RoundMoney rounds an amount half away from zero to MoneyPlaces
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// LineTotal is quantity times unit price, rounded
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Folio formats a yearly document number such as COT-2025-0007
func Folio(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%04d", prefix, year, seq)
}

// FolioPrefix returns the LIKE pattern matching all folios of a year
func FolioPrefix(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%04d-", prefix, at.Year())
}

// NextFolio returns the folio following last within the year of at.
// A last folio from another year restarts the sequence at 1.
func NextFolio(prefix string, at time.Time, last string) string {
	p := FolioPrefix(prefix, at)
	seq := 0
	if strings.HasPrefix(last, p) {
		if n, err := strconv.Atoi(last[len(p):]); err == nil {
			seq = n
		}
	}
	return Folio(prefix, at.Year(), seq+1)
}
