package core

import (
	"context"

	"github.com/holiman/uint256"
)

// TokenService moves underlying tokens between accounts and the protocol.
// Implementations must be all or nothing per call.
type TokenService interface {
	TransferIn(ctx context.Context, assetID, from string, amount uint256.Int) error
	TransferOut(ctx context.Context, assetID, to string, amount uint256.Int) error
	BalanceOf(ctx context.Context, assetID, account string) (uint256.Int, error)
}

// TokenJournal token services able to undo the transfers made since a savepoint
type TokenJournal interface {
	Savepoint() int
	RollbackTo(savepoint int)
	// Compact forgets movements that can no longer be rolled back
	Compact()
}
