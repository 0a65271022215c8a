package cmd

import (
	"lender/core"

	"github.com/spf13/cobra"
)

var marketsCmd = &cobra.Command{
	Use:   "markets [id]",
	Short: "list persisted markets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		markets := provideMarketStore(database)

		var list []*core.Market
		if len(args) == 1 {
			m, err := markets.Find(ctx, args[0])
			if err != nil {
				return err
			}
			list = append(list, m)
		} else {
			all, err := markets.All(ctx)
			if err != nil {
				return err
			}
			list = all
		}

		for _, m := range list {
			cmd.Printf("%-8s asset=%s supply=%s borrows=%s reserves=%s cash=%s index=%s period=%d\n",
				m.ID,
				m.AssetID,
				m.TotalSupply.Dec(),
				m.TotalBorrows.Dec(),
				m.TotalReserves.Dec(),
				m.Cash.Dec(),
				m.BorrowIndex,
				m.AccrualPeriod,
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(marketsCmd)
}
