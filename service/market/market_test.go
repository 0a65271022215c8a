package market

import (
	"context"
	"errors"
	"testing"

	"lender/core"
	"lender/pkg/number"
	"lender/service/token"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = "admin"

type fixedRateModel struct {
	rate number.Exp
	err  error
}

func (m fixedRateModel) BorrowRate(_, _, _ uint256.Int) (number.Exp, error) {
	return m.rate, m.err
}

func (m fixedRateModel) SupplyRate(_, _, _ uint256.Int, _ number.Exp) (number.Exp, error) {
	return m.rate, m.err
}

func (m fixedRateModel) Params() core.RateModelParams {
	return core.RateModelParams{Kind: "fixed"}
}

// allowAll approves every action
type allowAll struct {
	notified []core.EventAction
}

func (c *allowAll) MintAllowed(context.Context, *core.Tx, string, string, uint256.Int) error {
	return nil
}

func (c *allowAll) RedeemAllowed(context.Context, *core.Tx, string, string, uint256.Int) error {
	return nil
}

func (c *allowAll) RedeemVerify(string, string, uint256.Int, uint256.Int) error {
	return nil
}

func (c *allowAll) BorrowAllowed(context.Context, *core.Tx, string, string, uint256.Int) error {
	return nil
}

func (c *allowAll) RepayBorrowAllowed(context.Context, *core.Tx, string, string, string, uint256.Int) error {
	return nil
}

func (c *allowAll) LiquidateBorrowAllowed(context.Context, *core.Tx, string, string, string, string, uint256.Int) error {
	return nil
}

func (c *allowAll) SeizeAllowed(context.Context, *core.Tx, string, string, string, string, uint256.Int) error {
	return nil
}

func (c *allowAll) TransferAllowed(context.Context, *core.Tx, string, string, string, uint256.Int) error {
	return nil
}

func (c *allowAll) LiquidateCalculateSeizeTokens(_ context.Context, _ *core.Tx, _, _ string, repay uint256.Int) (uint256.Int, error) {
	return repay, nil
}

func (c *allowAll) Notify(_ context.Context, _ *core.Tx, action core.EventAction, _ string, _ ...string) error {
	c.notified = append(c.notified, action)
	return nil
}

type brokenTokens struct {
	core.TokenService
}

func (brokenTokens) TransferIn(context.Context, string, string, uint256.Int) error {
	return errors.New("transfer rejected")
}

func newLedger(rate string) *core.Ledger {
	l := core.NewLedger(admin)
	l.Markets["cUSDC"] = &core.Market{
		ID:                  "cUSDC",
		AssetID:             "usdc",
		BorrowIndex:         number.OneExp(),
		AccrualPeriod:       1,
		ReserveFactor:       number.MustParseExp("0.1"),
		InitialExchangeRate: number.MustParseExp("0.02"),
		RateModel:           fixedRateModel{rate: number.MustParseExp(rate)},
	}
	return l
}

func n(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

func TestAccrueInterest(t *testing.T) {
	ctx := context.Background()
	l := newLedger("0.000001")
	m := l.Markets["cUSDC"]
	m.TotalBorrows = number.MustParseInt("10000000000000000000000")
	m.Cash = number.MustParseInt("10000000000000000000000")

	s := New(&allowAll{}, token.New())

	tx := l.Begin(2)
	require.Nil(t, s.AccrueInterest(ctx, tx, "cUSDC"))
	require.Nil(t, s.AccrueInterest(ctx, tx, "cUSDC"))
	assert.Len(t, tx.Events(), 1)
	tx.Commit()

	m = l.Markets["cUSDC"]
	assert.Equal(t, "1000001000000000000", m.BorrowIndex.Mantissa.Dec())
	assert.Equal(t, "10000010000000000000000", m.TotalBorrows.Dec())
	assert.Equal(t, "1000000000000000", m.TotalReserves.Dec())
	assert.Equal(t, int64(2), m.AccrualPeriod)

	t.Run("rate too high", func(t *testing.T) {
		l := newLedger("0.000005000000000001")
		err := New(&allowAll{}, token.New()).AccrueInterest(ctx, l.Begin(2), "cUSDC")
		assert.Equal(t, core.ErrBorrowRateTooHigh, core.CodeOf(err))
	})

	t.Run("rate model error", func(t *testing.T) {
		l := newLedger("0")
		l.Markets["cUSDC"].RateModel = fixedRateModel{err: errors.New("boom")}
		err := New(&allowAll{}, token.New()).AccrueInterest(ctx, l.Begin(2), "cUSDC")
		assert.Equal(t, core.ErrInterestRateModel, core.CodeOf(err))
	})

	t.Run("not found", func(t *testing.T) {
		err := s.AccrueInterest(ctx, l.Begin(3), "cETH")
		assert.Equal(t, core.ErrMarketNotFound, core.CodeOf(err))
	})
}

func TestMintRedeem(t *testing.T) {
	ctx := context.Background()
	l := newLedger("0")
	bank := token.New()
	require.Nil(t, bank.Credit("usdc", "alice", n(1000)))
	require.Nil(t, bank.Credit("usdc", "bob", n(1000)))

	controller := &allowAll{}
	s := New(controller, bank)

	tx := l.Begin(1)
	shares, err := s.Mint(ctx, tx, "cUSDC", "alice", n(1000))
	require.Nil(t, err)
	assert.Equal(t, uint64(50000), shares.Uint64())

	shares, err = s.Mint(ctx, tx, "cUSDC", "bob", n(500))
	require.Nil(t, err)
	assert.Equal(t, uint64(25000), shares.Uint64())

	amount, err := s.Redeem(ctx, tx, "cUSDC", "alice", n(25000))
	require.Nil(t, err)
	assert.Equal(t, uint64(500), amount.Uint64())

	shares, err = s.RedeemUnderlying(ctx, tx, "cUSDC", "bob", n(100))
	require.Nil(t, err)
	assert.Equal(t, uint64(5000), shares.Uint64())

	_, err = s.Redeem(ctx, tx, "cUSDC", "bob", n(20001))
	assert.Equal(t, core.ErrInsufficientBalance, core.CodeOf(err))

	_, err = s.Mint(ctx, tx, "cUSDC", "bob", uint256.Int{})
	assert.Equal(t, core.ErrInvalidAmount, core.CodeOf(err))
	tx.Commit()

	m := l.Markets["cUSDC"]
	var sum uint256.Int
	for _, p := range l.Positions {
		sum.Add(&sum, &p.Shares)
	}
	assert.Equal(t, m.TotalSupply, sum)
	assert.Equal(t, uint64(45000), m.TotalSupply.Uint64())
	assert.Equal(t, uint64(900), m.Cash.Uint64())

	vault, _ := bank.BalanceOf(ctx, "usdc", token.Vault)
	assert.Equal(t, m.Cash, vault)
	assert.Contains(t, controller.notified, core.EventMint)
	assert.Contains(t, controller.notified, core.EventRedeem)
}

func TestBorrowRepay(t *testing.T) {
	ctx := context.Background()
	l := newLedger("0.000001")
	bank := token.New()
	require.Nil(t, bank.Credit("usdc", "alice", n(10000)))
	s := New(&allowAll{}, bank)

	tx := l.Begin(1)
	_, err := s.Mint(ctx, tx, "cUSDC", "alice", n(10000))
	require.Nil(t, err)

	err = s.Borrow(ctx, tx, "cUSDC", "bob", n(10001))
	assert.Equal(t, core.ErrInsufficientCash, core.CodeOf(err))
	require.Nil(t, s.Borrow(ctx, tx, "cUSDC", "bob", n(1000)))
	tx.Commit()

	balance, _ := bank.BalanceOf(ctx, "usdc", "bob")
	assert.Equal(t, uint64(1000), balance.Uint64())
	require.Nil(t, bank.Credit("usdc", "bob", n(1000)))

	// 100000 periods at 1e-6 per period
	tx = l.Begin(100001)
	owed, err := s.BorrowBalanceStored(tx, "cUSDC", "bob")
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), owed.Uint64())

	require.Nil(t, s.AccrueInterest(ctx, tx, "cUSDC"))
	owed, err = s.BorrowBalanceStored(tx, "cUSDC", "bob")
	require.Nil(t, err)
	assert.Equal(t, uint64(1100), owed.Uint64())

	_, err = s.RepayBorrow(ctx, tx, "cUSDC", "bob", "bob", n(1101))
	assert.Equal(t, core.ErrTooMuchRepay, core.CodeOf(err))

	repaid, err := s.RepayBorrow(ctx, tx, "cUSDC", "bob", "bob", core.RepayAll())
	require.Nil(t, err)
	assert.Equal(t, uint64(1100), repaid.Uint64())
	tx.Commit()

	m := l.Markets["cUSDC"]
	assert.True(t, m.TotalBorrows.IsZero())
	assert.Equal(t, uint64(10100), m.Cash.Uint64())
	assert.Equal(t, uint64(10), m.TotalReserves.Uint64())
}

func TestTransferFailure(t *testing.T) {
	ctx := context.Background()
	l := newLedger("0")
	s := New(&allowAll{}, brokenTokens{})

	tx := l.Begin(1)
	_, err := s.Mint(ctx, tx, "cUSDC", "alice", n(1000))
	require.NotNil(t, err)
	assert.Equal(t, core.ErrTransferFailed, core.CodeOf(err))
	assert.True(t, core.IsFatal(err))

	m := l.Markets["cUSDC"]
	assert.True(t, m.TotalSupply.IsZero())
	assert.True(t, m.Cash.IsZero())
	assert.Empty(t, l.Positions)
}

func TestTransferShares(t *testing.T) {
	ctx := context.Background()
	l := newLedger("0")
	bank := token.New()
	require.Nil(t, bank.Credit("usdc", "alice", n(100)))
	s := New(&allowAll{}, bank)

	tx := l.Begin(1)
	_, err := s.Mint(ctx, tx, "cUSDC", "alice", n(100))
	require.Nil(t, err)

	assert.Equal(t, core.ErrInvalidInput, core.CodeOf(s.Transfer(ctx, tx, "cUSDC", "alice", "alice", n(1))))
	assert.Equal(t, core.ErrInsufficientBalance, core.CodeOf(s.Transfer(ctx, tx, "cUSDC", "alice", "bob", n(5001))))
	require.Nil(t, s.Transfer(ctx, tx, "cUSDC", "alice", "bob", n(2000)))

	assert.Equal(t, uint64(3000), tx.Position("cUSDC", "alice").Shares.Uint64())
	assert.Equal(t, uint64(2000), tx.Position("cUSDC", "bob").Shares.Uint64())
}

func TestReserves(t *testing.T) {
	ctx := context.Background()
	l := newLedger("0")
	bank := token.New()
	require.Nil(t, bank.Credit("usdc", "alice", n(100)))
	s := New(&allowAll{}, bank)

	tx := l.Begin(1)
	assert.Equal(t, core.ErrInvalidAmount, core.CodeOf(s.AddReserves(ctx, tx, "cUSDC", "alice", uint256.Int{})))
	assert.Empty(t, tx.Events())
	require.Nil(t, s.AddReserves(ctx, tx, "cUSDC", "alice", n(100)))

	assert.Equal(t, core.ErrUnauthorized, core.CodeOf(s.ReduceReserves(ctx, tx, "alice", "cUSDC", n(10))))
	assert.Equal(t, core.ErrInsufficientCash, core.CodeOf(s.ReduceReserves(ctx, tx, admin, "cUSDC", n(101))))
	require.Nil(t, s.ReduceReserves(ctx, tx, admin, "cUSDC", n(40)))

	m, _ := tx.Market("cUSDC")
	assert.Equal(t, uint64(60), m.TotalReserves.Uint64())
	assert.Equal(t, uint64(60), m.Cash.Uint64())

	err := s.SetReserveFactor(ctx, tx, admin, "cUSDC", number.MustParseExp("1.01"))
	assert.Equal(t, core.ErrInvalidReserveFactor, core.CodeOf(err))
}

func TestRedeemUnderlyingKeepsExchangeRate(t *testing.T) {
	ctx := context.Background()
	l := newLedger("0")
	bank := token.New()
	require.Nil(t, bank.Credit("usdc", "alice", n(1000)))
	s := New(&allowAll{}, bank)

	tx := l.Begin(1)
	_, err := s.Mint(ctx, tx, "cUSDC", "alice", n(1000))
	require.Nil(t, err)
	tx.Commit()

	// 50000 shares backed by 1100 cash, rate 0.022
	m := l.Markets["cUSDC"]
	m.Cash = n(1100)
	require.Nil(t, bank.Credit("usdc", token.Vault, n(100)))

	rate := func() number.Exp {
		tx := l.Begin(1)
		r, err := s.ExchangeRateStored(tx, "cUSDC")
		require.Nil(t, err)
		return r
	}

	start := rate()
	assert.Equal(t, "0.022", start.String())

	prev := start
	for i := 0; i < 50; i++ {
		tx := l.Begin(1)
		shares, err := s.RedeemUnderlying(ctx, tx, "cUSDC", "alice", n(1))
		require.Nil(t, err)
		// 1 / 0.022 rounds up
		assert.Equal(t, uint64(46), shares.Uint64())
		tx.Commit()

		r := rate()
		assert.False(t, r.LessThan(prev), "rate dropped at redeem %d", i)
		prev = r
	}

	assert.Equal(t, uint64(50000-50*46), l.Markets["cUSDC"].TotalSupply.Uint64())
	assert.Equal(t, uint64(1050), l.Markets["cUSDC"].Cash.Uint64())
}

func TestExchangeRateNonDecreasing(t *testing.T) {
	ctx := context.Background()
	l := newLedger("0.000004")
	bank := token.New()
	require.Nil(t, bank.Credit("usdc", "alice", n(1000000)))
	s := New(&allowAll{}, bank)

	tx := l.Begin(1)
	_, err := s.Mint(ctx, tx, "cUSDC", "alice", n(1000000))
	require.Nil(t, err)
	require.Nil(t, s.Borrow(ctx, tx, "cUSDC", "bob", n(500000)))
	tx.Commit()

	prevRate, err := s.ExchangeRateStored(l.Begin(1), "cUSDC")
	require.Nil(t, err)
	prevOwed, err := s.BorrowBalanceStored(l.Begin(1), "cUSDC", "bob")
	require.Nil(t, err)

	for period := int64(2); period <= 200; period += 11 {
		tx := l.Begin(period)
		require.Nil(t, s.AccrueInterest(ctx, tx, "cUSDC"))
		tx.Commit()

		rate, err := s.ExchangeRateStored(l.Begin(period), "cUSDC")
		require.Nil(t, err)
		assert.False(t, rate.LessThan(prevRate), "exchange rate dropped at period %d", period)
		prevRate = rate

		owed, err := s.BorrowBalanceStored(l.Begin(period), "cUSDC", "bob")
		require.Nil(t, err)
		assert.False(t, owed.Lt(&prevOwed), "borrow balance dropped at period %d", period)
		prevOwed = owed
	}

	assert.True(t, prevOwed.Gt(uint256.NewInt(500000)))

	// a repayment lowers the balance and it never goes below zero
	require.Nil(t, bank.Credit("usdc", "bob", n(1000000)))
	tx = l.Begin(200)
	_, err = s.RepayBorrow(ctx, tx, "cUSDC", "bob", "bob", n(100000))
	require.Nil(t, err)
	tx.Commit()

	owed, err := s.BorrowBalanceStored(l.Begin(200), "cUSDC", "bob")
	require.Nil(t, err)
	assert.True(t, owed.Lt(&prevOwed))

	tx = l.Begin(200)
	_, err = s.RepayBorrow(ctx, tx, "cUSDC", "bob", "bob", core.RepayAll())
	require.Nil(t, err)
	tx.Commit()

	owed, err = s.BorrowBalanceStored(l.Begin(200), "cUSDC", "bob")
	require.Nil(t, err)
	assert.True(t, owed.IsZero())
}
