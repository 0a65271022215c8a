package core

import (
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// PositionKey identifies one account inside one market
type PositionKey struct {
	Market  string `json:"market"`
	Account string `json:"account"`
}

// BorrowSnapshot principal as of the last touch, with the market borrow
// index at that time
type BorrowSnapshot struct {
	Principal     uint256.Int `json:"principal"`
	InterestIndex number.Exp  `json:"interest_index"`
}

// Position per market, per account balances
type Position struct {
	Market  string         `json:"market"`
	Account string         `json:"account"`
	Shares  uint256.Int    `json:"shares"`
	Borrow  BorrowSnapshot `json:"borrow"`
}

// Key key
func (p *Position) Key() PositionKey {
	return PositionKey{Market: p.Market, Account: p.Account}
}

// IsEmpty reports a position holding nothing
func (p *Position) IsEmpty() bool {
	return p.Shares.IsZero() && p.Borrow.Principal.IsZero()
}

func (p *Position) Clone() *Position {
	c := *p
	return &c
}
