package controller

import (
	"context"
	"testing"

	"lender/core"
	icompound "lender/internal/compound"
	"lender/pkg/compound"
	"lender/pkg/number"
	"lender/service/market"
	"lender/service/token"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin    = "admin"
	guardian = "guardian"
	alice    = "alice"
	bob      = "bob"
	carol    = "carol"

	cUSDC = "cUSDC"
	cETH  = "cETH"
)

type testEnv struct {
	t          *testing.T
	ctx        context.Context
	period     int64
	ledger     *core.Ledger
	bank       *token.Bank
	oracle     *icompound.SimplePriceOracle
	controller core.IController
	markets    core.IMarketService
}

func amount(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

func newTestEnv(t *testing.T) *testEnv {
	e := &testEnv{
		t:      t,
		ctx:    context.Background(),
		period: 1,
		ledger: core.NewLedger(admin),
		bank:   token.New(),
		oracle: icompound.NewSimplePriceOracle(),
	}
	e.controller = New(e.oracle, e.bank)
	e.markets = market.New(e.controller, e.bank)

	e.ledger.Risk.ProtocolSeizeShare = number.MustParseExp("0.028")
	e.oracle.SetUnderlyingPrice("usdc", number.OneExp())
	e.oracle.SetUnderlyingPrice("eth", number.OneExp())

	model, err := icompound.NewRateModel(core.RateModelParams{
		BaseRate:       "0.02",
		Multiplier:     "0.1",
		JumpMultiplier: "1",
		Kink:           "0.8",
	})
	require.Nil(t, err)

	for _, m := range []*core.Market{
		{ID: cUSDC, AssetID: "usdc", Symbol: "cUSDC"},
		{ID: cETH, AssetID: "eth", Symbol: "cETH"},
	} {
		m.InitialExchangeRate = number.OneExp()
		m.ReserveFactor = number.MustParseExp("0.1")
		m.RateModel = model

		e.must(func(tx *core.Tx) error {
			if err := e.markets.CreateMarket(e.ctx, tx, admin, m); err != nil {
				return err
			}

			if err := e.controller.SupportMarket(e.ctx, tx, admin, m.ID); err != nil {
				return err
			}

			return e.controller.SetCollateralFactor(e.ctx, tx, admin, m.ID, number.MustParseExp("0.5"))
		})
	}

	e.must(func(tx *core.Tx) error {
		if err := e.controller.SetCloseFactor(e.ctx, tx, admin, number.MustParseExp("0.5")); err != nil {
			return err
		}

		if err := e.controller.SetLiquidationIncentive(e.ctx, tx, admin, number.MustParseExp("1.08")); err != nil {
			return err
		}

		return e.controller.SetPauseGuardian(e.ctx, tx, admin, guardian)
	})

	return e
}

func (e *testEnv) do(fn func(tx *core.Tx) error) error {
	savepoint := e.bank.Savepoint()
	tx := e.ledger.Begin(e.period)
	if err := fn(tx); err != nil {
		e.bank.RollbackTo(savepoint)
		return err
	}

	tx.Commit()
	return nil
}

func (e *testEnv) must(fn func(tx *core.Tx) error) {
	require.Nil(e.t, e.do(fn))
}

func (e *testEnv) supply(account, id, asset string, v uint64) {
	require.Nil(e.t, e.bank.Credit(asset, account, amount(v)))
	e.must(func(tx *core.Tx) error {
		_, err := e.markets.Mint(e.ctx, tx, id, account, amount(v))
		return err
	})
}

func (e *testEnv) enter(account string, markets ...string) {
	e.must(func(tx *core.Tx) error {
		for _, err := range e.controller.EnterMarkets(e.ctx, tx, account, markets) {
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *testEnv) borrow(account, id string, v uint64) error {
	return e.do(func(tx *core.Tx) error {
		return e.markets.Borrow(e.ctx, tx, id, account, amount(v))
	})
}

func (e *testEnv) liquidity(account string) core.Liquidity {
	var l core.Liquidity
	e.must(func(tx *core.Tx) (err error) {
		l, err = e.controller.GetAccountLiquidity(e.ctx, tx, account)
		return
	})
	return l
}

func (e *testEnv) shares(id, account string) uint64 {
	p, ok := e.ledger.Positions[core.PositionKey{Market: id, Account: account}]
	if !ok {
		return 0
	}
	return p.Shares.Uint64()
}

func TestAccountLiquidity(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000000)
	e.enter(alice, cUSDC)

	l := e.liquidity(alice)
	assert.Equal(t, uint64(500000), l.Liquidity.Uint64())
	assert.True(t, l.Shortfall.IsZero())

	e.must(func(tx *core.Tx) error {
		hypo, err := e.controller.GetHypotheticalAccountLiquidity(e.ctx, tx, alice, cUSDC, uint256.Int{}, amount(1000000))
		if err != nil {
			return err
		}

		assert.True(t, hypo.Liquidity.IsZero())
		assert.Equal(t, uint64(500000), hypo.Shortfall.Uint64())

		same, err := e.controller.GetHypotheticalAccountLiquidity(e.ctx, tx, alice, cUSDC, uint256.Int{}, uint256.Int{})
		if err != nil {
			return err
		}

		assert.Equal(t, l, same)
		return nil
	})

	t.Run("empty membership", func(t *testing.T) {
		e.must(func(tx *core.Tx) error {
			hypo, err := e.controller.GetHypotheticalAccountLiquidity(e.ctx, tx, bob, cUSDC, amount(10), amount(10))
			assert.Nil(t, err)
			assert.True(t, hypo.Liquidity.IsZero())
			assert.True(t, hypo.Shortfall.IsZero())
			return nil
		})
	})

	t.Run("missing price", func(t *testing.T) {
		e.oracle.SetUnderlyingPrice("usdc", number.Exp{})
		defer e.oracle.SetUnderlyingPrice("usdc", number.OneExp())

		err := e.do(func(tx *core.Tx) error {
			_, err := e.controller.GetAccountLiquidity(e.ctx, tx, alice)
			return err
		})
		assert.Equal(t, core.ErrPriceUnavailable, core.CodeOf(err))
	})
}

func TestEnterMarkets(t *testing.T) {
	e := newTestEnv(t)

	e.must(func(tx *core.Tx) error {
		errs := e.controller.EnterMarkets(e.ctx, tx, alice, []string{cUSDC, cUSDC, "cDOGE", cETH})
		require.Len(t, errs, 4)
		assert.Nil(t, errs[0])
		assert.Nil(t, errs[1])
		assert.Equal(t, core.ErrMarketNotListed, core.CodeOf(errs[2]))
		assert.Nil(t, errs[3])
		return nil
	})
	e.enter(alice, cUSDC)

	assert.Equal(t, []string{cUSDC, cETH}, e.ledger.Memberships[alice].Markets)
}

func TestExitMarket(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000)
	e.supply(bob, cETH, "eth", 1000)
	e.enter(alice, cUSDC)
	require.Nil(t, e.borrow(alice, cETH, 100))

	assert.Equal(t, []string{cUSDC, cETH}, e.ledger.Memberships[alice].Markets)

	exit := func(account, id string) error {
		return e.do(func(tx *core.Tx) error {
			return e.controller.ExitMarket(e.ctx, tx, account, id)
		})
	}

	assert.Equal(t, core.ErrNonzeroBorrowBalance, core.CodeOf(exit(alice, cETH)))
	assert.Equal(t, core.ErrInsufficientLiquidity, core.CodeOf(exit(alice, cUSDC)))
	assert.Nil(t, exit(bob, cETH))

	e.must(func(tx *core.Tx) error {
		_, err := e.markets.RepayBorrow(e.ctx, tx, cETH, alice, alice, core.RepayAll())
		return err
	})
	assert.Nil(t, exit(alice, cUSDC))
	assert.Equal(t, []string{cETH}, e.ledger.Memberships[alice].Markets)
}

func TestPausedBorrow(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000)
	e.supply(bob, cETH, "eth", 1000)
	e.enter(alice, cUSDC)

	setPaused := func(caller string, paused bool) error {
		return e.do(func(tx *core.Tx) error {
			return e.controller.SetBorrowPaused(e.ctx, tx, caller, cETH, paused)
		})
	}

	assert.Equal(t, core.ErrUnauthorized, core.CodeOf(setPaused(alice, true)))
	require.Nil(t, setPaused(guardian, true))

	err := e.borrow(alice, cETH, 1)
	assert.Equal(t, core.ErrActionPaused, core.CodeOf(err))
	assert.Equal(t, core.KindMarketState, core.CodeOf(err).Kind())

	assert.Equal(t, core.ErrUnauthorized, core.CodeOf(setPaused(guardian, false)))
	require.Nil(t, setPaused(admin, false))
	assert.Nil(t, e.borrow(alice, cETH, 1))
}

func TestBorrowCap(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000)
	e.supply(bob, cETH, "eth", 1000)
	e.enter(alice, cUSDC)

	e.must(func(tx *core.Tx) error {
		return e.controller.SetMarketBorrowCaps(e.ctx, tx, admin, []string{cETH}, []uint256.Int{amount(100)})
	})

	assert.Equal(t, core.ErrBorrowCapReached, core.CodeOf(e.borrow(alice, cETH, 100)))
	assert.Nil(t, e.borrow(alice, cETH, 99))
}

func TestLiquidateBorrow(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000)
	e.supply(bob, cETH, "eth", 1000)
	e.enter(alice, cUSDC)
	require.Nil(t, e.borrow(alice, cETH, 400))
	require.Nil(t, e.bank.Credit("eth", carol, amount(1000)))

	liquidate := func(liquidator string, repay uint64) (uint256.Int, error) {
		var seized uint256.Int
		err := e.do(func(tx *core.Tx) (err error) {
			seized, err = e.markets.LiquidateBorrow(e.ctx, tx, cETH, liquidator, alice, amount(repay), cUSDC)
			return
		})
		return seized, err
	}

	_, err := liquidate(carol, 100)
	assert.Equal(t, core.ErrInsufficientShortfall, core.CodeOf(err))

	e.oracle.SetUnderlyingPrice("usdc", number.MustParseExp("0.5"))
	l := e.liquidity(alice)
	assert.Equal(t, uint64(150), l.Shortfall.Uint64())

	_, err = liquidate(carol, 201)
	assert.Equal(t, core.ErrTooMuchRepay, core.CodeOf(err))

	_, err = liquidate(alice, 100)
	assert.Equal(t, core.ErrInvalidAccountPair, core.CodeOf(err))

	_, err = liquidate(carol, 0)
	assert.Equal(t, core.ErrInvalidCloseAmount, core.CodeOf(err))

	seized, err := liquidate(carol, 200)
	require.Nil(t, err)
	assert.Equal(t, uint64(432), seized.Uint64())

	assert.Equal(t, uint64(568), e.shares(cUSDC, alice))
	assert.Equal(t, uint64(420), e.shares(cUSDC, carol))

	usdc := e.ledger.Markets[cUSDC]
	assert.Equal(t, uint64(988), usdc.TotalSupply.Uint64())
	assert.Equal(t, uint64(12), usdc.TotalReserves.Uint64())

	eth := e.ledger.Markets[cETH]
	assert.Equal(t, uint64(200), eth.TotalBorrows.Uint64())
	assert.Equal(t, uint64(800), eth.Cash.Uint64())

	balance, _ := e.bank.BalanceOf(e.ctx, "eth", carol)
	assert.Equal(t, uint64(800), balance.Uint64())
}

func TestLiquidateDeprecatedMarket(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000)
	e.supply(bob, cETH, "eth", 1000)
	e.enter(alice, cUSDC)
	require.Nil(t, e.borrow(alice, cETH, 100))
	require.Nil(t, e.bank.Credit("eth", carol, amount(1000)))

	before := e.liquidity(alice)
	assert.True(t, before.Shortfall.IsZero())

	e.must(func(tx *core.Tx) error {
		if err := e.controller.SetCollateralFactor(e.ctx, tx, admin, cETH, number.Exp{}); err != nil {
			return err
		}

		if err := e.controller.SetBorrowPaused(e.ctx, tx, admin, cETH, true); err != nil {
			return err
		}

		return e.markets.SetReserveFactor(e.ctx, tx, admin, cETH, number.OneExp())
	})

	var seized uint256.Int
	err := e.do(func(tx *core.Tx) (err error) {
		seized, err = e.markets.LiquidateBorrow(e.ctx, tx, cETH, carol, alice, amount(100), cUSDC)
		return
	})
	require.Nil(t, err)
	assert.Equal(t, uint64(108), seized.Uint64())
	assert.True(t, e.ledger.Markets[cETH].TotalBorrows.IsZero())
}

func TestSeizePaused(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000)
	e.supply(bob, cETH, "eth", 1000)
	e.enter(alice, cUSDC)
	require.Nil(t, e.borrow(alice, cETH, 400))
	require.Nil(t, e.bank.Credit("eth", carol, amount(1000)))

	e.oracle.SetUnderlyingPrice("usdc", number.MustParseExp("0.5"))
	e.must(func(tx *core.Tx) error {
		return e.controller.SetSeizePaused(e.ctx, tx, guardian, true)
	})

	err := e.do(func(tx *core.Tx) error {
		_, err := e.markets.LiquidateBorrow(e.ctx, tx, cETH, carol, alice, amount(200), cUSDC)
		return err
	})
	assert.Equal(t, core.ErrActionPaused, core.CodeOf(err))

	assert.Equal(t, uint64(1000), e.shares(cUSDC, alice))
	assert.Equal(t, uint64(0), e.shares(cUSDC, carol))
	assert.Equal(t, uint64(400), e.ledger.Markets[cETH].TotalBorrows.Uint64())

	balance, _ := e.bank.BalanceOf(e.ctx, "eth", carol)
	assert.Equal(t, uint64(1000), balance.Uint64())
}

func TestTransferPaused(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000)

	transfer := func() error {
		return e.do(func(tx *core.Tx) error {
			return e.markets.Transfer(e.ctx, tx, cUSDC, alice, bob, amount(100))
		})
	}

	e.must(func(tx *core.Tx) error {
		return e.controller.SetTransferPaused(e.ctx, tx, guardian, true)
	})
	assert.Equal(t, core.ErrActionPaused, core.CodeOf(transfer()))
	assert.Equal(t, uint64(1000), e.shares(cUSDC, alice))
	assert.Equal(t, uint64(0), e.shares(cUSDC, bob))

	e.must(func(tx *core.Tx) error {
		return e.controller.SetTransferPaused(e.ctx, tx, admin, false)
	})
	require.Nil(t, transfer())
	assert.Equal(t, uint64(900), e.shares(cUSDC, alice))
	assert.Equal(t, uint64(100), e.shares(cUSDC, bob))
}

func TestHypotheticalLiquidityAcrossMarkets(t *testing.T) {
	e := newTestEnv(t)
	e.supply(alice, cUSDC, "usdc", 1000)
	e.supply(alice, cETH, "eth", 200)
	e.supply(bob, cETH, "eth", 1000)
	e.enter(alice, cUSDC, cETH)
	require.Nil(t, e.borrow(alice, cETH, 100))

	l := e.liquidity(alice)
	assert.Equal(t, uint64(500), l.Liquidity.Uint64())
	assert.True(t, l.Shortfall.IsZero())

	e.must(func(tx *core.Tx) error {
		for _, id := range []string{cUSDC, cETH} {
			same, err := e.controller.GetHypotheticalAccountLiquidity(e.ctx, tx, alice, id, uint256.Int{}, uint256.Int{})
			if err != nil {
				return err
			}
			assert.Equal(t, l, same, id)
		}

		hypo, err := e.controller.GetHypotheticalAccountLiquidity(e.ctx, tx, alice, cETH, amount(200), uint256.Int{})
		if err != nil {
			return err
		}
		assert.Equal(t, uint64(400), hypo.Liquidity.Uint64())
		return nil
	})
}

func TestCollateralFactorBounds(t *testing.T) {
	e := newTestEnv(t)

	err := e.do(func(tx *core.Tx) error {
		return e.controller.SetCollateralFactor(e.ctx, tx, admin, cUSDC, number.MustParseExp("0.91"))
	})
	assert.Equal(t, core.ErrInvalidCollateralFactor, core.CodeOf(err))

	e.oracle.SetUnderlyingPrice("usdc", number.Exp{})
	err = e.do(func(tx *core.Tx) error {
		return e.controller.SetCollateralFactor(e.ctx, tx, admin, cUSDC, number.MustParseExp("0.6"))
	})
	assert.Equal(t, core.ErrPriceUnavailable, core.CodeOf(err))

	err = e.do(func(tx *core.Tx) error {
		return e.controller.SetCollateralFactor(e.ctx, tx, alice, cUSDC, number.MustParseExp("0.6"))
	})
	assert.Equal(t, core.ErrUnauthorized, core.CodeOf(err))
	assert.Equal(t, core.KindAuthorization, core.CodeOf(err).Kind())
}

func TestAdminHandover(t *testing.T) {
	e := newTestEnv(t)

	err := e.do(func(tx *core.Tx) error {
		return e.controller.SetPendingAdmin(e.ctx, tx, bob, bob)
	})
	assert.Equal(t, core.ErrUnauthorized, core.CodeOf(err))

	e.must(func(tx *core.Tx) error {
		return e.controller.SetPendingAdmin(e.ctx, tx, admin, bob)
	})

	err = e.do(func(tx *core.Tx) error {
		return e.controller.AcceptAdmin(e.ctx, tx, carol)
	})
	assert.Equal(t, core.ErrUnauthorized, core.CodeOf(err))

	e.must(func(tx *core.Tx) error {
		return e.controller.AcceptAdmin(e.ctx, tx, bob)
	})
	assert.Equal(t, bob, e.ledger.Risk.Admin)
	assert.Empty(t, e.ledger.Risk.PendingAdmin)
}

func TestRewards(t *testing.T) {
	e := newTestEnv(t)
	e.ledger.Risk.RewardAsset = "gov"
	require.Nil(t, e.bank.Credit("gov", admin, amount(1000)))

	e.must(func(tx *core.Tx) error {
		if err := e.controller.FundRewards(e.ctx, tx, admin, amount(1000)); err != nil {
			return err
		}

		return e.controller.SetRewardSpeeds(e.ctx, tx, admin, []string{cUSDC}, []uint256.Int{amount(10)}, []uint256.Int{{}})
	})
	e.supply(alice, cUSDC, "usdc", 1000)

	claim := func() {
		e.must(func(tx *core.Tx) error {
			return e.controller.ClaimReward(e.ctx, tx, []string{alice}, []string{cUSDC}, true, true)
		})
	}

	e.period = 11
	e.ledger.Risk.ClaimThreshold = amount(1000)
	claim()

	assert.Equal(t, uint64(100), e.ledger.RewardAccounts[alice].Accrued.Uint64())
	balance, _ := e.bank.BalanceOf(e.ctx, "gov", alice)
	assert.True(t, balance.IsZero())

	e.period = 21
	e.ledger.Risk.ClaimThreshold = uint256.Int{}
	claim()

	balance, _ = e.bank.BalanceOf(e.ctx, "gov", alice)
	assert.Equal(t, uint64(200), balance.Uint64())
	assert.True(t, e.ledger.RewardAccounts[alice].Accrued.IsZero())
	assert.Equal(t, uint64(800), e.ledger.Risk.RewardFloat.Uint64())

	err := e.do(func(tx *core.Tx) error {
		return e.controller.GrantReward(e.ctx, tx, admin, bob, amount(801))
	})
	assert.Equal(t, core.ErrInsufficientRewards, core.CodeOf(err))

	e.must(func(tx *core.Tx) error {
		return e.controller.GrantReward(e.ctx, tx, admin, bob, amount(800))
	})
	balance, _ = e.bank.BalanceOf(e.ctx, "gov", bob)
	assert.Equal(t, uint64(800), balance.Uint64())
}

func TestBorrowerRewards(t *testing.T) {
	e := newTestEnv(t)

	e.must(func(tx *core.Tx) error {
		return e.controller.SetRewardSpeeds(e.ctx, tx, admin,
			[]string{cUSDC, cETH},
			[]uint256.Int{amount(7), {}},
			[]uint256.Int{{}, amount(10)},
		)
	})

	e.supply(alice, cUSDC, "usdc", 1000)
	e.supply(bob, cETH, "eth", 1000)
	e.enter(alice, cUSDC)
	require.Nil(t, e.borrow(alice, cETH, 100))

	e.period = 11
	e.ledger.Risk.ClaimThreshold = amount(1000)
	e.must(func(tx *core.Tx) error {
		return e.controller.ClaimReward(e.ctx, tx, []string{alice, bob}, nil, true, true)
	})

	// 10 periods * (10 borrow + 7 supply), alice is the only borrower and supplier
	assert.Equal(t, uint64(170), e.ledger.RewardAccounts[alice].Accrued.Uint64())
	if r, ok := e.ledger.RewardAccounts[bob]; ok {
		assert.True(t, r.Accrued.IsZero())
	}

	borrowIndex := e.ledger.RewardMarkets[cETH].Borrow.Index
	assert.Equal(t, 1, borrowIndex.Cmp(compound.RewardInitialIndex))
}

func TestRewardIndexWithoutParticipants(t *testing.T) {
	e := newTestEnv(t)

	e.must(func(tx *core.Tx) error {
		return e.controller.SetRewardSpeeds(e.ctx, tx, admin, []string{cETH}, []uint256.Int{amount(10)}, []uint256.Int{amount(10)})
	})

	claim := func(holder string) {
		e.must(func(tx *core.Tx) error {
			return e.controller.ClaimReward(e.ctx, tx, []string{holder}, []string{cETH}, true, true)
		})
	}

	e.period = 11
	claim(alice)

	r := e.ledger.RewardMarkets[cETH]
	assert.Equal(t, compound.RewardInitialIndex, r.Supply.Index)
	assert.Equal(t, compound.RewardInitialIndex, r.Borrow.Index)
	assert.Equal(t, int64(11), r.Supply.Period)
	assert.Equal(t, int64(11), r.Borrow.Period)

	// nothing owed for the empty stretch
	e.supply(bob, cETH, "eth", 1000)
	e.period = 21
	e.ledger.Risk.ClaimThreshold = amount(1000)
	claim(bob)

	assert.Equal(t, uint64(100), e.ledger.RewardAccounts[bob].Accrued.Uint64())
}

func TestContributorRewards(t *testing.T) {
	e := newTestEnv(t)

	e.must(func(tx *core.Tx) error {
		return e.controller.SetContributorRewardSpeed(e.ctx, tx, admin, bob, amount(5))
	})

	e.period = 5
	e.must(func(tx *core.Tx) error {
		return e.controller.UpdateContributorRewards(e.ctx, tx, bob)
	})

	assert.Equal(t, uint64(20), e.ledger.RewardAccounts[bob].Accrued.Uint64())
}
