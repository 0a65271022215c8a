package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker a long running background job
type Worker interface {
	Run(ctx context.Context) error
}

// OnWork one tick of a job
type OnWork func(ctx context.Context) error

// BaseJob runs OnWork on a cron schedule. A tick that fires while the
// previous one is still running is skipped.
type BaseJob struct {
	Name   string
	Cron   *cron.Cron
	OnWork OnWork

	running int32
}

// NewBaseJob schedules work on a cron schedule, e.g. "@every 1s"
func NewBaseJob(name, schedule, location string, work OnWork) (*BaseJob, error) {
	loc, err := time.LoadLocation(location)
	if err != nil {
		return nil, err
	}

	job := &BaseJob{
		Name:   name,
		Cron:   cron.New(cron.WithLocation(loc)),
		OnWork: work,
	}

	if _, err := job.Cron.AddFunc(schedule, job.tick); err != nil {
		return nil, err
	}

	return job, nil
}

func (job *BaseJob) tick() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	ctx := logger.WithContext(context.Background(), logger.FromContext(context.Background()).WithField("worker", job.Name))
	if err := job.OnWork(ctx); err != nil {
		logger.FromContext(ctx).WithError(err).Warnln("work failed")
	}
}

// Run starts the schedule and blocks until ctx is done, then waits for the
// running tick to finish
func (job *BaseJob) Run(ctx context.Context) error {
	job.Cron.Start()
	<-ctx.Done()
	<-job.Cron.Stop().Done()
	return nil
}
