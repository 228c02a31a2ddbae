package vnpay

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The gateway carries amounts as integers multiplied by 100 relative to
// the application's decimal representation.

// ToGatewayAmount converts an application amount to the gateway's integer
// string, truncating any fraction beyond two decimal places.
func ToGatewayAmount(amount decimal.Decimal) string {
	return amount.Shift(2).Truncate(0).String()
}

// FromGatewayAmount parses a gateway amount string back into the
// application representation, rounded half-up to two decimal places.
func FromGatewayAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid gateway amount %q: %w", raw, err)
	}
	return d.Shift(-2).Round(2), nil
}
