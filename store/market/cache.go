package market

import (
	"context"
	"time"

	"lender/core"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"
)

// Cache wraps store with a read through LRU cache. Save refreshes the
// cached copies.
func Cache(store core.IMarketStore, exp time.Duration) core.IMarketStore {
	b := gcache.New(256).LRU()
	if exp > 0 {
		b = b.Expiration(exp)
	}

	return &cacheMarketStore{
		IMarketStore: store,
		cache:        b.Build(),
		sf:           &singleflight.Group{},
	}
}

type cacheMarketStore struct {
	core.IMarketStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheMarketStore) Save(ctx context.Context, tx *db.DB, markets []*core.Market) error {
	if err := s.IMarketStore.Save(ctx, tx, markets); err != nil {
		return err
	}

	for _, m := range markets {
		s.cache.Remove(m.ID)
	}

	return nil
}

func (s *cacheMarketStore) Find(ctx context.Context, id string) (*core.Market, error) {
	if v, err := s.cache.Get(id); err == nil {
		if m, ok := v.(*core.Market); ok {
			return m.Clone(), nil
		}
	}

	v, err, _ := s.sf.Do(id, func() (interface{}, error) {
		m, err := s.IMarketStore.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		_ = s.cache.Set(id, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Market).Clone(), nil
}
