package snapshot

import (
	"fmt"
	"io"
	"sort"

	"lender/core"
	icompound "lender/internal/compound"

	"github.com/fox-one/msgpack"
)

// Version format version written into every snapshot
const Version = 1

// Snapshot a point in time copy of the ledger. Maps are flattened into
// sorted slices so two captures of the same ledger encode identically.
type Snapshot struct {
	Version        int                      `msgpack:"version"`
	Period         int64                    `msgpack:"period"`
	Risk           *core.RiskState          `msgpack:"risk"`
	Markets        []*core.Market           `msgpack:"markets"`
	Positions      []*core.Position         `msgpack:"positions"`
	Memberships    []*core.Membership       `msgpack:"memberships"`
	RewardMarkets  []*core.RewardMarket     `msgpack:"reward_markets"`
	RewardAccounts []*core.RewardAccount    `msgpack:"reward_accounts"`
	Checkpoints    []*core.RewardCheckpoint `msgpack:"checkpoints"`
}

// Capture copies l, the ledger must not change while it runs
func Capture(l *core.Ledger, period int64) *Snapshot {
	s := &Snapshot{
		Version: Version,
		Period:  period,
		Risk:    l.Risk.Clone(),
	}

	for _, id := range l.MarketIDs() {
		s.Markets = append(s.Markets, l.Markets[id].Clone())
	}

	for _, p := range l.Positions {
		s.Positions = append(s.Positions, p.Clone())
	}
	sort.Slice(s.Positions, func(i, j int) bool {
		return lessKey(s.Positions[i].Key(), s.Positions[j].Key())
	})

	for _, m := range l.Memberships {
		s.Memberships = append(s.Memberships, m.Clone())
	}
	sort.Slice(s.Memberships, func(i, j int) bool {
		return s.Memberships[i].Account < s.Memberships[j].Account
	})

	for _, r := range l.RewardMarkets {
		s.RewardMarkets = append(s.RewardMarkets, r.Clone())
	}
	sort.Slice(s.RewardMarkets, func(i, j int) bool {
		return s.RewardMarkets[i].Market < s.RewardMarkets[j].Market
	})

	for _, r := range l.RewardAccounts {
		s.RewardAccounts = append(s.RewardAccounts, r.Clone())
	}
	sort.Slice(s.RewardAccounts, func(i, j int) bool {
		return s.RewardAccounts[i].Account < s.RewardAccounts[j].Account
	})

	for _, c := range l.Checkpoints {
		s.Checkpoints = append(s.Checkpoints, c.Clone())
	}
	sort.Slice(s.Checkpoints, func(i, j int) bool {
		a := core.PositionKey{Market: s.Checkpoints[i].Market, Account: s.Checkpoints[i].Account}
		b := core.PositionKey{Market: s.Checkpoints[j].Market, Account: s.Checkpoints[j].Account}
		return lessKey(a, b)
	})

	return s
}

func lessKey(a, b core.PositionKey) bool {
	if a.Market != b.Market {
		return a.Market < b.Market
	}

	return a.Account < b.Account
}

// Ledger rebuilds a ledger from the snapshot, rate models included
func (s *Snapshot) Ledger() (*core.Ledger, error) {
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}

	if s.Risk == nil {
		return nil, fmt.Errorf("snapshot: missing risk state")
	}

	l := core.NewLedger("")
	l.Risk = s.Risk.Clone()

	for _, m := range s.Markets {
		l.Markets[m.ID] = m.Clone()
	}

	if err := icompound.BindRateModels(l.Markets); err != nil {
		return nil, err
	}

	for _, p := range s.Positions {
		l.Positions[p.Key()] = p.Clone()
	}

	for _, m := range s.Memberships {
		l.Memberships[m.Account] = m.Clone()
	}

	for _, r := range s.RewardMarkets {
		l.RewardMarkets[r.Market] = r.Clone()
	}

	for _, r := range s.RewardAccounts {
		l.RewardAccounts[r.Account] = r.Clone()
	}

	for _, c := range s.Checkpoints {
		l.Checkpoints[core.PositionKey{Market: c.Market, Account: c.Account}] = c.Clone()
	}

	return l, nil
}

// Encode writes s as msgpack
func Encode(w io.Writer, s *Snapshot) error {
	return msgpack.NewEncoder(w).Encode(s)
}

// Decode reads a snapshot written by Encode
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}

	return &s, nil
}
