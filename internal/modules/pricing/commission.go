package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"roadbook/internal/types"
)

var hundred = decimal.NewFromInt(100)

// SplitCommission divides finalPrice using a percentage in [0, 100].
// Dividing by 100 is a decimal shift, so the two parts always add up to
// finalPrice exactly.
func SplitCommission(finalPrice, percent decimal.Decimal) (Split, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return Split{}, fmt.Errorf("%w: commission percent %s out of range", types.ErrValidation, percent)
	}
	return Split{
		Earnings:   finalPrice.Mul(hundred.Sub(percent)).Shift(-2),
		Commission: finalPrice.Mul(percent).Shift(-2),
		Percent:    percent,
	}, nil
}
