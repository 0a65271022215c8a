package liquidity

import (
	"context"
	"errors"
	"testing"

	"lender/pkg/number"
	"lender/service/lender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scannerFunc func(ctx context.Context) ([]lender.Shortfall, error)

func (f scannerFunc) ScanShortfall(ctx context.Context) ([]lender.Shortfall, error) {
	return f(ctx)
}

func TestScan(t *testing.T) {
	ctx := context.Background()

	w, err := New("UTC", scannerFunc(func(ctx context.Context) ([]lender.Shortfall, error) {
		return []lender.Shortfall{{Account: "bob", Shortfall: number.NewInt(150)}}, nil
	}))
	require.Nil(t, err)

	shortfalls, err := w.scan(ctx)
	require.Nil(t, err)
	assert.Len(t, shortfalls, 1)
	assert.Equal(t, "bob", shortfalls[0].Account)

	failed, err := New("UTC", scannerFunc(func(ctx context.Context) ([]lender.Shortfall, error) {
		return nil, errors.New("down")
	}))
	require.Nil(t, err)
	assert.NotNil(t, failed.onWork(ctx))
}
