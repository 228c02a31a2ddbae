package vnpay

import (
	"crypto/rand"
	"fmt"
)

// OrderRefLength is the number of digits in a merchant transaction reference.
const OrderRefLength = 8

// NewOrderRef produces a random digits-only merchant reference. Uniqueness
// is enforced downstream by the ledger's unique constraint on the code, so
// callers must be prepared to retry on a collision.
func NewOrderRef(length int) (string, error) {
	if length <= 0 {
		length = OrderRefLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	digits := make([]byte, length)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return string(digits), nil
}
