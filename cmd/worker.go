package cmd

import (
	"context"

	"lender/service/lender"
	"lender/worker"
	"lender/worker/interest"
	"lender/worker/liquidity"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run the interest and liquidity workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		engine, err := provideEngine(ctx, database, provideEventStore(database))
		if err != nil {
			return err
		}

		workers, err := provideWorkers(engine, providePropertyStore(database))
		if err != nil {
			return err
		}

		ctx = withSignal(ctx)
		return runWorkers(ctx, workers)
	},
}

func provideWorkers(engine *lender.Engine, properties property.Store) ([]worker.Worker, error) {
	interestWorker, err := interest.New(cfg.App.Location, engine, properties)
	if err != nil {
		return nil, err
	}

	liquidityWorker, err := liquidity.New(cfg.App.Location, engine)
	if err != nil {
		return nil, err
	}

	return []worker.Worker{interestWorker, liquidityWorker}, nil
}

func runWorkers(ctx context.Context, workers []worker.Worker) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	return g.Wait()
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
