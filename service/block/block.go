package block

import (
	"context"
	"sync/atomic"
	"time"

	"lender/core"
	"lender/pkg/compound"
)

type service struct {
	genesis         int64
	secondsPerBlock int64
}

// New new block service, one period every secondsPerBlock since genesis
func New(cfg *core.Config) core.IBlockService {
	seconds := cfg.App.SecondsPerBlock
	if seconds <= 0 {
		seconds = 15
	}

	return &service{
		genesis:         cfg.App.Genesis,
		secondsPerBlock: seconds,
	}
}

//CurrentBlock current block
func (s *service) CurrentBlock(ctx context.Context) (int64, error) {
	return s.GetBlock(ctx, time.Now())
}

// GetBlock get block by time
func (s *service) GetBlock(_ context.Context, t time.Time) (int64, error) {
	return compound.GetBlockByTime(t, s.genesis, s.secondsPerBlock)
}

// Manual block service advanced by hand
type Manual struct {
	current int64
}

// NewManual new manual block service starting at block
func NewManual(block int64) *Manual {
	return &Manual{current: block}
}

// Advance moves the clock n blocks forward
func (m *Manual) Advance(n int64) int64 {
	return atomic.AddInt64(&m.current, n)
}

// Set set current block
func (m *Manual) Set(block int64) {
	atomic.StoreInt64(&m.current, block)
}

func (m *Manual) CurrentBlock(_ context.Context) (int64, error) {
	return atomic.LoadInt64(&m.current), nil
}

func (m *Manual) GetBlock(ctx context.Context, _ time.Time) (int64, error) {
	return m.CurrentBlock(ctx)
}
