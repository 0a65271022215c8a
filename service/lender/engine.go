package lender

import (
	"context"
	"sync"

	"lender/core"
	"lender/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/yiplee/structs"
)

// Engine the single entry point to the ledger. Operations run one at a time,
// each either commits in full or leaves no trace.
type Engine struct {
	mu sync.Mutex

	ledger     *core.Ledger
	blocks     core.IBlockService
	controller *unitroller
	markets    core.IMarketService
	tokens     core.TokenService
	store      core.ILedgerStore
	metrics    *metrics.Metrics
}

// New new engine. store and m are optional.
func New(
	ledger *core.Ledger,
	blocks core.IBlockService,
	controller core.IController,
	marketsFactory func(core.IRiskController) core.IMarketService,
	tokens core.TokenService,
	store core.ILedgerStore,
	m *metrics.Metrics,
) *Engine {
	proxy := &unitroller{IController: controller}

	return &Engine{
		ledger:     ledger,
		blocks:     blocks,
		controller: proxy,
		markets:    marketsFactory(proxy),
		tokens:     tokens,
		store:      store,
		metrics:    m,
	}
}

type operation func(ctx context.Context, tx *core.Tx) error

// run executes op inside a new Tx at the current period
func (e *Engine) run(ctx context.Context, name string, op operation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.runLocked(ctx, name, op)
	e.metrics.ObserveOperation(name, err)
	return err
}

func (e *Engine) runLocked(ctx context.Context, name string, op operation) error {
	log := logger.FromContext(ctx).WithField("op", name)

	period, err := e.blocks.CurrentBlock(ctx)
	if err != nil {
		log.WithError(err).Errorln("blocks.CurrentBlock")
		return core.WrapError(core.ErrUnknown, "engine/current-period", err)
	}

	tx := e.ledger.Begin(period)
	log = log.WithFields(logrus.Fields{
		"tx":     tx.ID,
		"period": period,
	})
	ctx = logger.WithContext(ctx, log)

	journal, _ := e.tokens.(core.TokenJournal)
	var savepoint int
	if journal != nil {
		savepoint = journal.Savepoint()
	}

	if err := op(ctx, tx); err != nil {
		if journal != nil {
			journal.RollbackTo(savepoint)
		}

		if core.IsFatal(err) {
			log.WithError(err).Errorln("operation failed")
		} else {
			log.WithError(err).Infoln("operation rejected")
		}

		return err
	}

	changes := tx.Changes()
	if e.store != nil {
		if err := e.store.Save(ctx, changes); err != nil {
			if journal != nil {
				journal.RollbackTo(savepoint)
			}

			log.WithError(err).Errorln("store.Save")
			return core.WrapError(core.ErrUnknown, "engine/persist", err)
		}
	}

	tx.Apply(changes)
	if journal != nil {
		journal.Compact()
	}

	for _, event := range changes.Events {
		log.WithFields(structs.Map(event)).Debugln("event")
	}

	e.metrics.ObserveCommit(changes, len(e.ledger.Markets))
	return nil
}

// view runs fn against a Tx that is always discarded
func (e *Engine) view(ctx context.Context, fn operation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	period, err := e.blocks.CurrentBlock(ctx)
	if err != nil {
		return core.WrapError(core.ErrUnknown, "engine/current-period", err)
	}

	return fn(ctx, e.ledger.Begin(period))
}

// Period current period
func (e *Engine) Period(ctx context.Context) (int64, error) {
	return e.blocks.CurrentBlock(ctx)
}

// Export runs fn with exclusive access to the ledger
func (e *Engine) Export(fn func(l *core.Ledger) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fn(e.ledger)
}
