package compound

import (
	"lender/core"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// BorrowBalance caculate borrow balance
// balance = principal * market.borrow_index / snapshot.interest_index
func BorrowBalance(m *core.Market, b core.BorrowSnapshot) (uint256.Int, error) {
	if b.Principal.IsZero() {
		return uint256.Int{}, nil
	}

	return number.MulDiv(b.Principal, m.BorrowIndex.Mantissa, b.InterestIndex.Mantissa)
}
