package market

import (
	"context"
	"encoding/json"
	"time"

	"lender/core"
	icompound "lender/internal/compound"
	"lender/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// market row, amounts and mantissas are stored as integers
type market struct {
	ID                  string          `sql:"size:36;PRIMARY_KEY"`
	AssetID             string          `sql:"size:36;index:idx_markets_asset_id"`
	Symbol              string          `sql:"size:16"`
	TotalSupply         decimal.Decimal `sql:"type:decimal(78,0)"`
	TotalBorrows        decimal.Decimal `sql:"type:decimal(78,0)"`
	TotalReserves       decimal.Decimal `sql:"type:decimal(78,0)"`
	Cash                decimal.Decimal `sql:"type:decimal(78,0)"`
	BorrowIndex         decimal.Decimal `sql:"type:decimal(78,0)"`
	AccrualPeriod       int64
	ReserveFactor       decimal.Decimal `sql:"type:decimal(78,0)"`
	InitialExchangeRate decimal.Decimal `sql:"type:decimal(78,0)"`
	RateModel           types.JSONText  `sql:"type:TEXT"`
	CreatedAt           time.Time       `sql:"default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time       `sql:"default:CURRENT_TIMESTAMP"`
}

func (market) TableName() string {
	return "markets"
}

type marketStore struct {
	db *db.DB
}

// New new market store
func New(db *db.DB) core.IMarketStore {
	return &marketStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(market{})
		if err := tx.AutoMigrate(market{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func toRecord(m *core.Market) (*market, error) {
	model, err := json.Marshal(m.RateModelParams)
	if err != nil {
		return nil, err
	}

	return &market{
		ID:                  m.ID,
		AssetID:             m.AssetID,
		Symbol:              m.Symbol,
		TotalSupply:         number.IntToDecimal(m.TotalSupply),
		TotalBorrows:        number.IntToDecimal(m.TotalBorrows),
		TotalReserves:       number.IntToDecimal(m.TotalReserves),
		Cash:                number.IntToDecimal(m.Cash),
		BorrowIndex:         number.IntToDecimal(m.BorrowIndex.Mantissa),
		AccrualPeriod:       m.AccrualPeriod,
		ReserveFactor:       number.IntToDecimal(m.ReserveFactor.Mantissa),
		InitialExchangeRate: number.IntToDecimal(m.InitialExchangeRate.Mantissa),
		RateModel:           model,
	}, nil
}

func fromRecord(r *market) (*core.Market, error) {
	m := &core.Market{
		ID:            r.ID,
		AssetID:       r.AssetID,
		Symbol:        r.Symbol,
		AccrualPeriod: r.AccrualPeriod,
	}

	ints := []struct {
		dst *number.Exp
		src decimal.Decimal
	}{
		{&m.BorrowIndex, r.BorrowIndex},
		{&m.ReserveFactor, r.ReserveFactor},
		{&m.InitialExchangeRate, r.InitialExchangeRate},
	}
	for _, v := range ints {
		mantissa, err := number.IntFromDecimal(v.src)
		if err != nil {
			return nil, err
		}
		*v.dst = number.ExpFromMantissa(mantissa)
	}

	var err error
	if m.TotalSupply, err = number.IntFromDecimal(r.TotalSupply); err != nil {
		return nil, err
	}
	if m.TotalBorrows, err = number.IntFromDecimal(r.TotalBorrows); err != nil {
		return nil, err
	}
	if m.TotalReserves, err = number.IntFromDecimal(r.TotalReserves); err != nil {
		return nil, err
	}
	if m.Cash, err = number.IntFromDecimal(r.Cash); err != nil {
		return nil, err
	}

	if err := r.RateModel.Unmarshal(&m.RateModelParams); err != nil {
		return nil, err
	}

	model, err := icompound.NewRateModel(m.RateModelParams)
	if err != nil {
		return nil, err
	}
	m.RateModel = model

	return m, nil
}

func (s *marketStore) Save(ctx context.Context, tx *db.DB, markets []*core.Market) error {
	for _, m := range markets {
		r, err := toRecord(m)
		if err != nil {
			return err
		}

		if err := tx.Update().Save(r).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *marketStore) Find(ctx context.Context, id string) (*core.Market, error) {
	var r market
	if err := s.db.View().Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}

	return fromRecord(&r)
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	var records []*market
	if err := s.db.View().Order("id").Find(&records).Error; err != nil {
		return nil, err
	}

	markets := make([]*core.Market, 0, len(records))
	for _, r := range records {
		m, err := fromRecord(r)
		if err != nil {
			return nil, err
		}

		markets = append(markets, m)
	}

	return markets, nil
}
