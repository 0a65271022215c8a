package core

import (
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// RewardIndex global accumulator of one side of a market
type RewardIndex struct {
	Index  number.Double `json:"index"`
	Period int64         `json:"period"`
}

// RewardMarket distributor state of a market
type RewardMarket struct {
	Market string      `json:"market"`
	Supply RewardIndex `json:"supply"`
	Borrow RewardIndex `json:"borrow"`
}

func (r *RewardMarket) Clone() *RewardMarket {
	c := *r
	return &c
}

// RewardCheckpoint the global indices an account last settled against
type RewardCheckpoint struct {
	Market        string        `json:"market"`
	Account       string        `json:"account"`
	SupplierIndex number.Double `json:"supplier_index"`
	BorrowerIndex number.Double `json:"borrower_index"`
}

func (r *RewardCheckpoint) Clone() *RewardCheckpoint {
	c := *r
	return &c
}

// RewardAccount pending rewards plus the optional contributor stream
type RewardAccount struct {
	Account          string      `json:"account"`
	Accrued          uint256.Int `json:"accrued"`
	ContributorSpeed uint256.Int `json:"contributor_speed"`
	ContributorSince int64       `json:"contributor_since"`
}

func (r *RewardAccount) Clone() *RewardAccount {
	c := *r
	return &c
}
