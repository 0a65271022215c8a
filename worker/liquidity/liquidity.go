package liquidity

import (
	"context"

	"lender/pkg/number"
	"lender/service/lender"
	"lender/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Scanner finds borrowers in shortfall
type Scanner interface {
	ScanShortfall(ctx context.Context) ([]lender.Shortfall, error)
}

// Worker reports liquidatable accounts
type Worker struct {
	*worker.BaseJob
	scanner Scanner
}

// New new liquidity worker
func New(location string, scanner Scanner) (*Worker, error) {
	w := &Worker{scanner: scanner}

	job, err := worker.NewBaseJob("liquidity", "@every 10s", location, w.onWork)
	if err != nil {
		return nil, err
	}
	w.BaseJob = job

	return w, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	_, err := w.scan(ctx)
	return err
}

func (w *Worker) scan(ctx context.Context) ([]lender.Shortfall, error) {
	log := logger.FromContext(ctx)

	shortfalls, err := w.scanner.ScanShortfall(ctx)
	if err != nil {
		log.WithError(err).Errorln("ScanShortfall")
		return nil, err
	}

	for _, s := range shortfalls {
		log.WithFields(logrus.Fields{
			"account":   s.Account,
			"shortfall": number.IntToDecimal(s.Shortfall).String(),
		}).Infoln("account in shortfall")
	}

	return shortfalls, nil
}
