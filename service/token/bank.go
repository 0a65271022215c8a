package token

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"lender/core"
	"lender/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// Vault the account holding every token the protocol controls
const Vault = "lender-vault"

// ErrInsufficientFunds the sender does not hold the amount
var ErrInsufficientFunds = errors.New("insufficient funds")

type key struct {
	asset   string
	account string
}

type movement struct {
	key    key
	amount uint256.Int
	credit bool
}

// Bank in memory token ledger. Every transfer is journaled so a failed
// operation can undo the movements it already made.
type Bank struct {
	mu       sync.Mutex
	balances map[key]uint256.Int
	journal  []movement
}

// New new bank
func New() *Bank {
	return &Bank{balances: map[key]uint256.Int{}}
}

var (
	_ core.TokenService = (*Bank)(nil)
	_ core.TokenJournal = (*Bank)(nil)
)

// Credit mints amount of asset to account out of thin air
func (b *Bank) Credit(assetID, account string, amount uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.credit(key{assetID, account}, amount)
}

func (b *Bank) credit(k key, amount uint256.Int) error {
	balance, err := number.Add(b.balances[k], amount)
	if err != nil {
		return err
	}

	b.balances[k] = balance
	b.journal = append(b.journal, movement{key: k, amount: amount, credit: true})
	return nil
}

func (b *Bank) debit(k key, amount uint256.Int) error {
	balance := b.balances[k]
	if balance.Lt(&amount) {
		return fmt.Errorf("debit %s of %s: %w", amount.Dec(), k.account, ErrInsufficientFunds)
	}

	balance.Sub(&balance, &amount)
	b.balances[k] = balance
	b.journal = append(b.journal, movement{key: k, amount: amount})
	return nil
}

func (b *Bank) move(ctx context.Context, assetID, from, to string, amount uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.debit(key{assetID, from}, amount); err != nil {
		logger.FromContext(ctx).WithError(err).Debugln("bank: debit")
		return err
	}

	if err := b.credit(key{assetID, to}, amount); err != nil {
		b.rollbackTo(len(b.journal) - 1)
		return err
	}

	return nil
}

// TransferIn moves amount from the account into the vault
func (b *Bank) TransferIn(ctx context.Context, assetID, from string, amount uint256.Int) error {
	return b.move(ctx, assetID, from, Vault, amount)
}

// TransferOut moves amount from the vault to the account
func (b *Bank) TransferOut(ctx context.Context, assetID, to string, amount uint256.Int) error {
	return b.move(ctx, assetID, Vault, to, amount)
}

func (b *Bank) BalanceOf(_ context.Context, assetID, account string) (uint256.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.balances[key{assetID, account}], nil
}

// Savepoint current journal position
func (b *Bank) Savepoint() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.journal)
}

// RollbackTo undoes every movement made after savepoint
func (b *Bank) RollbackTo(savepoint int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollbackTo(savepoint)
}

func (b *Bank) rollbackTo(savepoint int) {
	if savepoint < 0 {
		savepoint = 0
	}

	for i := len(b.journal) - 1; i >= savepoint; i-- {
		m := b.journal[i]
		balance := b.balances[m.key]
		if m.credit {
			balance.Sub(&balance, &m.amount)
		} else {
			balance.Add(&balance, &m.amount)
		}
		b.balances[m.key] = balance
	}

	b.journal = b.journal[:savepoint]
}

// Compact drops the journal, movements before this point can no longer be undone
func (b *Bank) Compact() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.journal = nil
}

// Holding balance of one account in one asset
type Holding struct {
	AssetID string      `json:"asset_id"`
	Account string      `json:"account"`
	Amount  uint256.Int `json:"amount"`
}

// Holdings every non zero balance, sorted
func (b *Bank) Holdings() []Holding {
	b.mu.Lock()
	defer b.mu.Unlock()

	holdings := make([]Holding, 0, len(b.balances))
	for k, v := range b.balances {
		if v.IsZero() {
			continue
		}

		holdings = append(holdings, Holding{AssetID: k.asset, Account: k.account, Amount: v})
	}

	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].AssetID != holdings[j].AssetID {
			return holdings[i].AssetID < holdings[j].AssetID
		}
		return holdings[i].Account < holdings[j].Account
	})
	return holdings
}
