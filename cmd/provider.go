package cmd

import (
	"context"
	"fmt"
	"time"

	"lender/core"
	"lender/pkg/metrics"
	"lender/pkg/number"
	"lender/pkg/sysversion"
	"lender/service/block"
	"lender/service/controller"
	"lender/service/lender"
	marketservice "lender/service/market"
	"lender/service/oracle"
	"lender/service/token"
	"lender/store/event"
	"lender/store/ledger"
	"lender/store/market"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideMarketStore(db *db.DB) core.IMarketStore {
	return market.Cache(market.New(db), time.Minute)
}

func provideEventStore(db *db.DB) core.EventStore {
	return event.New(db)
}

func provideLedgerStore(db *db.DB, markets core.IMarketStore, events core.EventStore) core.ILedgerStore {
	return ledger.New(db, markets, events)
}

// ------------------service------------------------------------

func provideBlockService() core.IBlockService {
	return block.New(provideConfig())
}

func provideOracle() *oracle.Oracle {
	o, err := oracle.New(cfg.PriceOracle)
	if err != nil {
		panic(err)
	}

	return o
}

// provideBank the token ledger, seeded with the configured balances
func provideBank() *token.Bank {
	bank := token.New()
	for _, b := range cfg.Balances {
		amount, err := number.ParseInt(b.Amount)
		if err != nil {
			panic(fmt.Errorf("balance of %s: %w", b.Account, err))
		}

		if err := bank.Credit(b.AssetID, b.Account, amount); err != nil {
			panic(err)
		}
	}

	return bank
}

func provideMetrics() *metrics.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// provideEngine loads the persisted ledger, or bootstraps a new one from config
func provideEngine(ctx context.Context, database *db.DB, events core.EventStore) (*lender.Engine, error) {
	if err := sysversion.Check(ctx, providePropertyStore(database)); err != nil {
		return nil, err
	}

	store := provideLedgerStore(database, provideMarketStore(database), events)
	l, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if l == nil {
		logger.FromContext(ctx).Infoln("empty database, bootstrap ledger from config")
		l = core.NewLedger(cfg.App.Admin)
	}

	bank := provideBank()
	engine := lender.New(
		l,
		provideBlockService(),
		controller.New(provideOracle(), bank),
		func(c core.IRiskController) core.IMarketService { return marketservice.New(c, bank) },
		bank,
		store,
		provideMetrics(),
	)

	if err := engine.Bootstrap(ctx, provideConfig()); err != nil {
		return nil, err
	}

	return engine, nil
}
