package ledger

import (
	"encoding/json"
	"time"

	"lender/core"
	"lender/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

type position struct {
	Market              string          `sql:"size:36;PRIMARY_KEY"`
	Account             string          `sql:"size:64;PRIMARY_KEY"`
	Shares              decimal.Decimal `sql:"type:decimal(78,0)"`
	BorrowPrincipal     decimal.Decimal `sql:"type:decimal(78,0)"`
	BorrowInterestIndex decimal.Decimal `sql:"type:decimal(78,0)"`
	UpdatedAt           time.Time       `sql:"default:CURRENT_TIMESTAMP"`
}

func (position) TableName() string {
	return "positions"
}

// riskState the controller state, a single row
type riskState struct {
	ID        int64          `sql:"PRIMARY_KEY"`
	Data      types.JSONText `sql:"type:TEXT"`
	UpdatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP"`
}

func (riskState) TableName() string {
	return "risk_states"
}

type membership struct {
	Account   string         `sql:"size:64;PRIMARY_KEY"`
	Markets   types.JSONText `sql:"type:TEXT"`
	UpdatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP"`
}

func (membership) TableName() string {
	return "memberships"
}

type rewardMarket struct {
	Market       string          `sql:"size:36;PRIMARY_KEY"`
	SupplyIndex  decimal.Decimal `sql:"type:decimal(78,0)"`
	SupplyPeriod int64
	BorrowIndex  decimal.Decimal `sql:"type:decimal(78,0)"`
	BorrowPeriod int64
}

func (rewardMarket) TableName() string {
	return "reward_markets"
}

type rewardAccount struct {
	Account          string          `sql:"size:64;PRIMARY_KEY"`
	Accrued          decimal.Decimal `sql:"type:decimal(78,0)"`
	ContributorSpeed decimal.Decimal `sql:"type:decimal(78,0)"`
	ContributorSince int64
}

func (rewardAccount) TableName() string {
	return "reward_accounts"
}

type checkpoint struct {
	Market        string          `sql:"size:36;PRIMARY_KEY"`
	Account       string          `sql:"size:64;PRIMARY_KEY"`
	SupplierIndex decimal.Decimal `sql:"type:decimal(78,0)"`
	BorrowerIndex decimal.Decimal `sql:"type:decimal(78,0)"`
}

func (checkpoint) TableName() string {
	return "reward_checkpoints"
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		for _, model := range []interface{}{
			position{},
			riskState{},
			membership{},
			rewardMarket{},
			rewardAccount{},
			checkpoint{},
		} {
			if err := db.Update().Model(model).AutoMigrate(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func toPosition(p *core.Position) *position {
	return &position{
		Market:              p.Market,
		Account:             p.Account,
		Shares:              number.IntToDecimal(p.Shares),
		BorrowPrincipal:     number.IntToDecimal(p.Borrow.Principal),
		BorrowInterestIndex: number.IntToDecimal(p.Borrow.InterestIndex.Mantissa),
	}
}

func (r *position) model() (*core.Position, error) {
	p := &core.Position{Market: r.Market, Account: r.Account}

	var err error
	if p.Shares, err = number.IntFromDecimal(r.Shares); err != nil {
		return nil, err
	}
	if p.Borrow.Principal, err = number.IntFromDecimal(r.BorrowPrincipal); err != nil {
		return nil, err
	}

	index, err := number.IntFromDecimal(r.BorrowInterestIndex)
	if err != nil {
		return nil, err
	}
	p.Borrow.InterestIndex = number.ExpFromMantissa(index)

	return p, nil
}

func toMembership(m *core.Membership) (*membership, error) {
	markets, err := json.Marshal(m.Markets)
	if err != nil {
		return nil, err
	}

	return &membership{Account: m.Account, Markets: markets}, nil
}

func (r *membership) model() (*core.Membership, error) {
	m := &core.Membership{Account: r.Account}
	if err := r.Markets.Unmarshal(&m.Markets); err != nil {
		return nil, err
	}

	return m, nil
}

func toRewardMarket(m *core.RewardMarket) *rewardMarket {
	return &rewardMarket{
		Market:       m.Market,
		SupplyIndex:  number.IntToDecimal(m.Supply.Index.Mantissa),
		SupplyPeriod: m.Supply.Period,
		BorrowIndex:  number.IntToDecimal(m.Borrow.Index.Mantissa),
		BorrowPeriod: m.Borrow.Period,
	}
}

func (r *rewardMarket) model() (*core.RewardMarket, error) {
	supply, err := number.IntFromDecimal(r.SupplyIndex)
	if err != nil {
		return nil, err
	}

	borrow, err := number.IntFromDecimal(r.BorrowIndex)
	if err != nil {
		return nil, err
	}

	return &core.RewardMarket{
		Market: r.Market,
		Supply: core.RewardIndex{Index: number.Double{Mantissa: supply}, Period: r.SupplyPeriod},
		Borrow: core.RewardIndex{Index: number.Double{Mantissa: borrow}, Period: r.BorrowPeriod},
	}, nil
}

func toRewardAccount(a *core.RewardAccount) *rewardAccount {
	return &rewardAccount{
		Account:          a.Account,
		Accrued:          number.IntToDecimal(a.Accrued),
		ContributorSpeed: number.IntToDecimal(a.ContributorSpeed),
		ContributorSince: a.ContributorSince,
	}
}

func (r *rewardAccount) model() (*core.RewardAccount, error) {
	a := &core.RewardAccount{Account: r.Account, ContributorSince: r.ContributorSince}

	var err error
	if a.Accrued, err = number.IntFromDecimal(r.Accrued); err != nil {
		return nil, err
	}
	if a.ContributorSpeed, err = number.IntFromDecimal(r.ContributorSpeed); err != nil {
		return nil, err
	}

	return a, nil
}

func toCheckpoint(c *core.RewardCheckpoint) *checkpoint {
	return &checkpoint{
		Market:        c.Market,
		Account:       c.Account,
		SupplierIndex: number.IntToDecimal(c.SupplierIndex.Mantissa),
		BorrowerIndex: number.IntToDecimal(c.BorrowerIndex.Mantissa),
	}
}

func (r *checkpoint) model() (*core.RewardCheckpoint, error) {
	supplier, err := number.IntFromDecimal(r.SupplierIndex)
	if err != nil {
		return nil, err
	}

	borrower, err := number.IntFromDecimal(r.BorrowerIndex)
	if err != nil {
		return nil, err
	}

	return &core.RewardCheckpoint{
		Market:        r.Market,
		Account:       r.Account,
		SupplierIndex: number.Double{Mantissa: supplier},
		BorrowerIndex: number.Double{Mantissa: borrower},
	}, nil
}
