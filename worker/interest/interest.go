package interest

import (
	"context"

	"lender/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
)

const checkpointKey = "interest_accrued_period"

// Accruer brings every market up to the current period
type Accruer interface {
	Period(ctx context.Context) (int64, error)
	AccrueAll(ctx context.Context) error
}

// Worker accrues all markets once per new period
type Worker struct {
	*worker.BaseJob
	accruer  Accruer
	property property.Store
}

// New new interest worker
func New(location string, accruer Accruer, property property.Store) (*Worker, error) {
	w := &Worker{
		accruer:  accruer,
		property: property,
	}

	job, err := worker.NewBaseJob("interest", "@every 1s", location, w.onWork)
	if err != nil {
		return nil, err
	}
	w.BaseJob = job

	return w, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	period, err := w.accruer.Period(ctx)
	if err != nil {
		log.WithError(err).Errorln("Period")
		return err
	}

	v, err := w.property.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("property.Get", checkpointKey)
		return err
	}

	if period <= v.Int64() {
		return nil
	}

	if err := w.accruer.AccrueAll(ctx); err != nil {
		log.WithError(err).Errorln("AccrueAll")
		return err
	}

	if err := w.property.Save(ctx, checkpointKey, period); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
		return err
	}

	log.Debugln("accrued to period", period)
	return nil
}
