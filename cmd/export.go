package cmd

import (
	"errors"
	"os"

	"lender/core"
	"lender/pkg/snapshot"
	"lender/pkg/sysversion"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "write the persisted ledger into a msgpack snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		store := provideLedgerStore(database, provideMarketStore(database), provideEventStore(database))
		l, err := store.Load(ctx)
		if err != nil {
			return err
		}

		if l == nil {
			return errors.New("ledger is empty")
		}

		period, err := provideBlockService().CurrentBlock(ctx)
		if err != nil {
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if err := snapshot.Encode(f, snapshot.Capture(l, period)); err != nil {
			return err
		}

		cmd.Println("exported", len(l.Markets), "markets and", len(l.Positions), "positions at period", period)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "load a msgpack snapshot into an empty database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		if err := sysversion.Check(ctx, providePropertyStore(database)); err != nil {
			return err
		}

		store := provideLedgerStore(database, provideMarketStore(database), provideEventStore(database))
		if existing, err := store.Load(ctx); err != nil {
			return err
		} else if existing != nil {
			return errors.New("database already holds a ledger")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		s, err := snapshot.Decode(f)
		if err != nil {
			return err
		}

		l, err := s.Ledger()
		if err != nil {
			return err
		}

		if err := store.Save(ctx, changeSetOf(l, s.Period)); err != nil {
			return err
		}

		cmd.Println("imported", len(l.Markets), "markets at period", s.Period)
		return nil
	},
}

// changeSetOf every record of l as one change set
func changeSetOf(l *core.Ledger, period int64) *core.ChangeSet {
	cs := &core.ChangeSet{Period: period, Risk: l.Risk}
	for _, m := range l.Markets {
		cs.Markets = append(cs.Markets, m)
	}
	for _, p := range l.Positions {
		cs.Positions = append(cs.Positions, p)
	}
	for _, m := range l.Memberships {
		cs.Memberships = append(cs.Memberships, m)
	}
	for _, r := range l.RewardMarkets {
		cs.RewardMarkets = append(cs.RewardMarkets, r)
	}
	for _, r := range l.RewardAccounts {
		cs.RewardAccounts = append(cs.RewardAccounts, r)
	}
	for _, c := range l.Checkpoints {
		cs.Checkpoints = append(cs.Checkpoints, c)
	}

	return cs
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
