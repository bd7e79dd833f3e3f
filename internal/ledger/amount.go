package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits the store keeps.
const AmountScale = 4

// maxAmount is the exclusive magnitude limit of a NUMERIC(20, 4) column.
var maxAmount = decimal.New(1, 20-AmountScale)

// ValidateAmount rejects amounts the store cannot hold exactly.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(AmountScale)) {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, AmountScale)
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: magnitude must be below %s", ErrInvalidAmount, maxAmount)
	}
	return nil
}
