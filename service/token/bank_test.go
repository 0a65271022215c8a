package token

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceOf(t *testing.T, b *Bank, asset, account string) uint64 {
	v, err := b.BalanceOf(context.Background(), asset, account)
	require.Nil(t, err)
	return v.Uint64()
}

func TestBank(t *testing.T) {
	ctx := context.Background()
	b := New()
	require.Nil(t, b.Credit("usdc", "alice", *uint256.NewInt(100)))

	require.Nil(t, b.TransferIn(ctx, "usdc", "alice", *uint256.NewInt(60)))
	assert.Equal(t, uint64(40), balanceOf(t, b, "usdc", "alice"))
	assert.Equal(t, uint64(60), balanceOf(t, b, "usdc", Vault))

	err := b.TransferIn(ctx, "usdc", "alice", *uint256.NewInt(41))
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, uint64(40), balanceOf(t, b, "usdc", "alice"))

	sp := b.Savepoint()
	require.Nil(t, b.TransferOut(ctx, "usdc", "bob", *uint256.NewInt(10)))
	require.Nil(t, b.TransferOut(ctx, "usdc", "alice", *uint256.NewInt(5)))
	assert.Equal(t, uint64(45), balanceOf(t, b, "usdc", Vault))

	b.RollbackTo(sp)
	assert.Equal(t, uint64(60), balanceOf(t, b, "usdc", Vault))
	assert.Equal(t, uint64(0), balanceOf(t, b, "usdc", "bob"))
	assert.Equal(t, uint64(40), balanceOf(t, b, "usdc", "alice"))

	holdings := b.Holdings()
	require.Len(t, holdings, 2)
	assert.Equal(t, "alice", holdings[0].Account)
	assert.Equal(t, Vault, holdings[1].Account)
}
