package database

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts travel to and from numeric columns as strings (bound with ::numeric
// casts); conversion to decimal happens only here at the scan edge.
func parseAmount(col, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("scan %s: %w", col, err)
	}
	return d, nil
}
