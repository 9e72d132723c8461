// Package funds provides an in-memory value-transfer channel: a balances
// ledger the auction engine pays sellers and refunded bidders through. A
// recipient can be marked as refusing payments, which surfaces the payout
// failure mode the engine's rollback paths exist for.
package funds

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/cloudx-io/openlot/core"
)

// ErrPaymentRefused reports that the recipient declined to receive value.
var ErrPaymentRefused = errors.New("funds: recipient refuses payment")

// Bank holds per-identity balances. Safe for concurrent use.
type Bank struct {
	mu       sync.Mutex
	balances map[core.Identity]decimal.Decimal
	refusing map[core.Identity]bool
}

func NewBank() *Bank {
	return &Bank{
		balances: make(map[core.Identity]decimal.Decimal),
		refusing: make(map[core.Identity]bool),
	}
}

// Pay credits amount to the recipient. Fails distinctly when the recipient is
// refusing payments; nothing moves on failure.
func (b *Bank) Pay(to core.Identity, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refusing[to] {
		return fmt.Errorf("%w: %q", ErrPaymentRefused, to)
	}
	b.balances[to] = b.balances[to].Add(amount)
	return nil
}

// Deposit credits amount to an account directly, bypassing refusal. Used to
// seed balances.
func (b *Bank) Deposit(id core.Identity, amount decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[id] = b.balances[id].Add(amount)
}

// BalanceOf returns the account's balance, zero for unknown accounts.
func (b *Bank) BalanceOf(id core.Identity) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[id]
}

// SetRefusing toggles payment refusal for one recipient.
func (b *Bank) SetRefusing(id core.Identity, refusing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refusing[id] = refusing
}

var _ core.PaymentChannel = (*Bank)(nil)
