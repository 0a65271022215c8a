package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lender/handler"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run the lender api server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		events := provideEventStore(database)
		engine, err := provideEngine(ctx, database, events)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: handler.New(engine, events, prometheus.DefaultGatherer, rootCmd.Version).Handler(),
		}

		ctx = withSignal(ctx)
		g, ctx := errgroup.WithContext(ctx)

		if withWorkers, _ := cmd.Flags().GetBool("workers"); withWorkers {
			workers, err := provideWorkers(engine, providePropertyStore(database))
			if err != nil {
				return err
			}

			g.Go(func() error {
				return runWorkers(ctx, workers)
			})
		}

		g.Go(func() error {
			<-ctx.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			return nil
		})

		g.Go(func() error {
			logrus.Infoln("serve at", addr)
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}

			return nil
		})

		return g.Wait()
	},
}

// withSignal ctx cancelled on SIGINT or SIGTERM
func withSignal(ctx context.Context) context.Context {
	ctx, quit := context.WithCancel(ctx)
	signal.WithContextFunc(ctx, quit)
	return ctx
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
	serverCmd.Flags().Bool("workers", true, "run the workers inside the server process")
}
