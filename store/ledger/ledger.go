package ledger

import (
	"context"
	"encoding/json"

	"lender/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

const riskStateID = 1

type ledgerStore struct {
	db      *db.DB
	markets core.IMarketStore
	events  core.EventStore
}

// New ledger store, markets and events are written through their own stores
// inside the same db transaction
func New(db *db.DB, markets core.IMarketStore, events core.EventStore) core.ILedgerStore {
	return &ledgerStore{
		db:      db,
		markets: markets,
		events:  events,
	}
}

func (s *ledgerStore) Save(ctx context.Context, cs *core.ChangeSet) error {
	return s.db.Tx(func(tx *db.DB) error {
		if cs.Risk != nil {
			data, err := json.Marshal(cs.Risk)
			if err != nil {
				return err
			}

			if err := tx.Update().Save(&riskState{ID: riskStateID, Data: data}).Error; err != nil {
				return err
			}
		}

		if err := s.markets.Save(ctx, tx, cs.Markets); err != nil {
			return err
		}

		for _, p := range cs.Positions {
			if err := tx.Update().Save(toPosition(p)).Error; err != nil {
				return err
			}
		}

		for _, m := range cs.Memberships {
			r, err := toMembership(m)
			if err != nil {
				return err
			}

			if err := tx.Update().Save(r).Error; err != nil {
				return err
			}
		}

		for _, m := range cs.RewardMarkets {
			if err := tx.Update().Save(toRewardMarket(m)).Error; err != nil {
				return err
			}
		}

		for _, a := range cs.RewardAccounts {
			if err := tx.Update().Save(toRewardAccount(a)).Error; err != nil {
				return err
			}
		}

		for _, c := range cs.Checkpoints {
			if err := tx.Update().Save(toCheckpoint(c)).Error; err != nil {
				return err
			}
		}

		return s.events.Create(ctx, tx, cs.Events)
	})
}

// Load rebuilds the whole ledger, nil when nothing was ever saved
func (s *ledgerStore) Load(ctx context.Context) (*core.Ledger, error) {
	var risk riskState
	if err := s.db.View().Where("id = ?", riskStateID).First(&risk).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}

		return nil, err
	}

	l := core.NewLedger("")
	if err := risk.Data.Unmarshal(l.Risk); err != nil {
		return nil, err
	}

	if l.Risk.Markets == nil {
		l.Risk.Markets = map[string]*core.MarketConfig{}
	}

	markets, err := s.markets.All(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range markets {
		l.Markets[m.ID] = m
	}

	var positions []*position
	if err := s.db.View().Find(&positions).Error; err != nil {
		return nil, err
	}

	for _, r := range positions {
		p, err := r.model()
		if err != nil {
			return nil, err
		}

		l.Positions[p.Key()] = p
	}

	var memberships []*membership
	if err := s.db.View().Find(&memberships).Error; err != nil {
		return nil, err
	}

	for _, r := range memberships {
		m, err := r.model()
		if err != nil {
			return nil, err
		}

		l.Memberships[m.Account] = m
	}

	var rewardMarkets []*rewardMarket
	if err := s.db.View().Find(&rewardMarkets).Error; err != nil {
		return nil, err
	}

	for _, r := range rewardMarkets {
		m, err := r.model()
		if err != nil {
			return nil, err
		}

		l.RewardMarkets[m.Market] = m
	}

	var rewardAccounts []*rewardAccount
	if err := s.db.View().Find(&rewardAccounts).Error; err != nil {
		return nil, err
	}

	for _, r := range rewardAccounts {
		a, err := r.model()
		if err != nil {
			return nil, err
		}

		l.RewardAccounts[a.Account] = a
	}

	var checkpoints []*checkpoint
	if err := s.db.View().Find(&checkpoints).Error; err != nil {
		return nil, err
	}

	for _, r := range checkpoints {
		c, err := r.model()
		if err != nil {
			return nil, err
		}

		l.Checkpoints[core.PositionKey{Market: c.Market, Account: c.Account}] = c
	}

	return l, nil
}
