package core

import (
	"context"
	"sort"
	"time"

	"lender/pkg/id"
)

// Ledger the whole protocol state. Mutations go through a Tx, callers
// serialize access to the ledger itself.
type Ledger struct {
	Risk           *RiskState
	Markets        map[string]*Market
	Positions      map[PositionKey]*Position
	Memberships    map[string]*Membership
	RewardMarkets  map[string]*RewardMarket
	RewardAccounts map[string]*RewardAccount
	Checkpoints    map[PositionKey]*RewardCheckpoint
}

// NewLedger empty ledger administered by admin
func NewLedger(admin string) *Ledger {
	return &Ledger{
		Risk:           NewRiskState(admin),
		Markets:        map[string]*Market{},
		Positions:      map[PositionKey]*Position{},
		Memberships:    map[string]*Membership{},
		RewardMarkets:  map[string]*RewardMarket{},
		RewardAccounts: map[string]*RewardAccount{},
		Checkpoints:    map[PositionKey]*RewardCheckpoint{},
	}
}

// Begin opens a transaction at period. Nothing touches the ledger until Commit.
func (l *Ledger) Begin(period int64) *Tx {
	return &Tx{
		ID:             id.New(),
		Period:         period,
		ledger:         l,
		markets:        map[string]*Market{},
		positions:      map[PositionKey]*Position{},
		memberships:    map[string]*Membership{},
		rewardMarkets:  map[string]*RewardMarket{},
		rewardAccounts: map[string]*RewardAccount{},
		checkpoints:    map[PositionKey]*RewardCheckpoint{},
	}
}

// MarketIDs sorted market ids
func (l *Ledger) MarketIDs() []string {
	ids := make([]string, 0, len(l.Markets))
	for k := range l.Markets {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

// Borrowers accounts holding a borrow in any market, sorted
func (l *Ledger) Borrowers() []string {
	seen := map[string]bool{}
	for _, p := range l.Positions {
		if !p.Borrow.Principal.IsZero() {
			seen[p.Account] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for a := range seen {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)
	return accounts
}

// AccountPositions positions of account, sorted by market
func (l *Ledger) AccountPositions(account string) []*Position {
	var positions []*Position
	for _, p := range l.Positions {
		if p.Account == account {
			positions = append(positions, p.Clone())
		}
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Market < positions[j].Market
	})
	return positions
}

// ChangeSet everything a committed Tx staged
type ChangeSet struct {
	Period         int64
	Risk           *RiskState
	Markets        []*Market
	Positions      []*Position
	Memberships    []*Membership
	RewardMarkets  []*RewardMarket
	RewardAccounts []*RewardAccount
	Checkpoints    []*RewardCheckpoint
	Events         []*Event
}

// ILedgerStore persists the ledger
type ILedgerStore interface {
	Load(ctx context.Context) (*Ledger, error)
	Save(ctx context.Context, changes *ChangeSet) error
}

// Tx copy on write view of a Ledger. Every accessor returns a staged copy
// that can be mutated freely, Commit writes the copies back.
type Tx struct {
	ID     string
	Period int64

	ledger         *Ledger
	risk           *RiskState
	markets        map[string]*Market
	positions      map[PositionKey]*Position
	memberships    map[string]*Membership
	rewardMarkets  map[string]*RewardMarket
	rewardAccounts map[string]*RewardAccount
	checkpoints    map[PositionKey]*RewardCheckpoint
	events         []*Event
	// changes outside the ledger, run once the Tx is applied
	hooks []func()
}

// Risk staged controller state
func (tx *Tx) Risk() *RiskState {
	if tx.risk == nil {
		tx.risk = tx.ledger.Risk.Clone()
	}

	return tx.risk
}

// Market staged market
func (tx *Tx) Market(id string) (*Market, bool) {
	if m, ok := tx.markets[id]; ok {
		return m, true
	}

	m, ok := tx.ledger.Markets[id]
	if !ok {
		return nil, false
	}

	c := m.Clone()
	tx.markets[id] = c
	return c, true
}

// PutMarket stages a new market
func (tx *Tx) PutMarket(m *Market) {
	tx.markets[m.ID] = m
}

// Position staged position, zero valued when the account never touched market
func (tx *Tx) Position(market, account string) *Position {
	key := PositionKey{Market: market, Account: account}
	if p, ok := tx.positions[key]; ok {
		return p
	}

	var p *Position
	if v, ok := tx.ledger.Positions[key]; ok {
		p = v.Clone()
	} else {
		p = &Position{Market: market, Account: account}
	}

	tx.positions[key] = p
	return p
}

// Membership staged membership of account
func (tx *Tx) Membership(account string) *Membership {
	if m, ok := tx.memberships[account]; ok {
		return m
	}

	var m *Membership
	if v, ok := tx.ledger.Memberships[account]; ok {
		m = v.Clone()
	} else {
		m = &Membership{Account: account}
	}

	tx.memberships[account] = m
	return m
}

// RewardMarket staged distributor state of market
func (tx *Tx) RewardMarket(market string) (*RewardMarket, bool) {
	if r, ok := tx.rewardMarkets[market]; ok {
		return r, true
	}

	r, ok := tx.ledger.RewardMarkets[market]
	if !ok {
		return nil, false
	}

	c := r.Clone()
	tx.rewardMarkets[market] = c
	return c, true
}

// PutRewardMarket stages distributor state for a new market
func (tx *Tx) PutRewardMarket(r *RewardMarket) {
	tx.rewardMarkets[r.Market] = r
}

// RewardAccount staged reward balance of account
func (tx *Tx) RewardAccount(account string) *RewardAccount {
	if r, ok := tx.rewardAccounts[account]; ok {
		return r
	}

	var r *RewardAccount
	if v, ok := tx.ledger.RewardAccounts[account]; ok {
		r = v.Clone()
	} else {
		r = &RewardAccount{Account: account}
	}

	tx.rewardAccounts[account] = r
	return r
}

// Checkpoint staged reward checkpoint of account in market
func (tx *Tx) Checkpoint(market, account string) *RewardCheckpoint {
	key := PositionKey{Market: market, Account: account}
	if c, ok := tx.checkpoints[key]; ok {
		return c
	}

	var c *RewardCheckpoint
	if v, ok := tx.ledger.Checkpoints[key]; ok {
		c = v.Clone()
	} else {
		c = &RewardCheckpoint{Market: market, Account: account}
	}

	tx.checkpoints[key] = c
	return c
}

// Emit records an event, published only if the Tx commits
func (tx *Tx) Emit(action EventAction, market, account string, data EventData) {
	if data == nil {
		data = NewEventData()
	}

	tx.events = append(tx.events, &Event{
		TraceID:   id.Event(tx.ID, string(action), len(tx.events)),
		Action:    action,
		Period:    tx.Period,
		Market:    market,
		Account:   account,
		Data:      data.Format(),
		CreatedAt: time.Now(),
	})
}

// OnCommit defers fn until the Tx is applied. A discarded Tx never runs it.
func (tx *Tx) OnCommit(fn func()) {
	tx.hooks = append(tx.hooks, fn)
}

// Events events emitted so far
func (tx *Tx) Events() []*Event {
	return tx.events
}

// Changes everything the Tx staged, without touching the ledger. Positions
// and checkpoints that were created empty and stayed empty are dropped.
func (tx *Tx) Changes() *ChangeSet {
	l := tx.ledger
	cs := &ChangeSet{Period: tx.Period, Risk: tx.risk, Events: tx.events}

	for _, m := range tx.markets {
		cs.Markets = append(cs.Markets, m)
	}

	for key, p := range tx.positions {
		if _, ok := l.Positions[key]; !ok && p.IsEmpty() {
			continue
		}

		cs.Positions = append(cs.Positions, p)
	}

	for account, m := range tx.memberships {
		if _, ok := l.Memberships[account]; !ok && len(m.Markets) == 0 {
			continue
		}

		cs.Memberships = append(cs.Memberships, m)
	}

	for _, r := range tx.rewardMarkets {
		cs.RewardMarkets = append(cs.RewardMarkets, r)
	}

	for account, r := range tx.rewardAccounts {
		if _, ok := l.RewardAccounts[account]; !ok && r.Accrued.IsZero() && r.ContributorSpeed.IsZero() {
			continue
		}

		cs.RewardAccounts = append(cs.RewardAccounts, r)
	}

	for key, c := range tx.checkpoints {
		if _, ok := l.Checkpoints[key]; !ok && c.SupplierIndex.IsZero() && c.BorrowerIndex.IsZero() {
			continue
		}

		cs.Checkpoints = append(cs.Checkpoints, c)
	}

	return cs
}

// Commit applies the staged changes to the ledger and returns them. The Tx
// must not be used afterwards.
func (tx *Tx) Commit() *ChangeSet {
	cs := tx.Changes()
	tx.Apply(cs)
	return cs
}

// Apply writes cs, taken from tx.Changes, into the ledger and runs the
// OnCommit hooks. The Tx must not be used afterwards.
func (tx *Tx) Apply(cs *ChangeSet) {
	tx.ledger.Apply(cs)
	tx.ledger = nil

	for _, fn := range tx.hooks {
		fn()
	}
	tx.hooks = nil
}

// Apply writes a change set into the ledger
func (l *Ledger) Apply(cs *ChangeSet) {
	if cs.Risk != nil {
		l.Risk = cs.Risk
	}

	for _, m := range cs.Markets {
		l.Markets[m.ID] = m
	}

	for _, p := range cs.Positions {
		l.Positions[p.Key()] = p
	}

	for _, m := range cs.Memberships {
		l.Memberships[m.Account] = m
	}

	for _, r := range cs.RewardMarkets {
		l.RewardMarkets[r.Market] = r
	}

	for _, r := range cs.RewardAccounts {
		l.RewardAccounts[r.Account] = r
	}

	for _, c := range cs.Checkpoints {
		l.Checkpoints[PositionKey{Market: c.Market, Account: c.Account}] = c
	}
}
