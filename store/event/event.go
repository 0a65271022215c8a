package event

import (
	"context"
	"time"

	"lender/core"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.EventStore {
	return &eventStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})
		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Create events are keyed by trace id, creating one twice is a no-op
func (s *eventStore) Create(ctx context.Context, tx *db.DB, events []*core.Event) error {
	for _, event := range events {
		if err := tx.Update().Where("trace_id = ?", event.TraceID).FirstOrCreate(event).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *eventStore) List(ctx context.Context, offset time.Time, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if limit <= 0 {
		limit = 500
	}

	if err := s.db.View().Where("created_at >= ?", offset).Order("created_at ASC, id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByAccount(ctx context.Context, account string, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if limit <= 0 {
		limit = 100
	}

	if err := s.db.View().Where("account = ?", account).Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
