package compound

import (
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// SeizeTokens collateral shares owed for repaying repay of the borrowed asset
// seize = repay * incentive * price_borrowed / (price_collateral * exchange_rate)
func SeizeTokens(repay uint256.Int, incentive, priceBorrowed, priceCollateral, exchangeRate number.Exp) (uint256.Int, error) {
	numerator, err := incentive.Mul(priceBorrowed)
	if err != nil {
		return uint256.Int{}, err
	}

	denominator, err := priceCollateral.Mul(exchangeRate)
	if err != nil {
		return uint256.Int{}, err
	}

	ratio, err := numerator.Div(denominator)
	if err != nil {
		return uint256.Int{}, err
	}

	return ratio.MulScalarTruncate(repay)
}

// SplitSeize splits seized shares into the protocol part and the liquidator part
func SplitSeize(seize uint256.Int, protocolShare number.Exp) (protocol, liquidator uint256.Int, err error) {
	protocol, err = protocolShare.MulScalarTruncate(seize)
	if err != nil {
		return
	}

	liquidator, err = number.Sub(seize, protocol)
	return
}
