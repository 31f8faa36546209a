package ledger

import (
	"context"
	"math"
	"sync"

	"tier0-lending/internal/domain/asset"
)

// Memory is an in-process ERC-20 style ledger. It backs tests and single node
// development setups.
type Memory struct {
	mu         sync.Mutex
	balances   map[string]uint64
	allowances map[string]map[string]uint64

	// OnTransfer, when set, is invoked after every successful move with the
	// caller's context. Tests use it to simulate a recipient calling back.
	OnTransfer func(ctx context.Context, from, to string, amount uint64)
}

var (
	_ asset.Ledger = (*Memory)(nil)
	_ asset.Minter = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		balances:   map[string]uint64{},
		allowances: map[string]map[string]uint64{},
	}
}

func (m *Memory) Mint(_ context.Context, to string, amount uint64) error {
	if to == "" {
		return asset.ErrInvalidAccount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[to] > math.MaxUint64-amount {
		return asset.ErrInvalidAmount
	}
	m.balances[to] += amount
	return nil
}

func (m *Memory) Transfer(ctx context.Context, from, to string, amount uint64) error {
	m.mu.Lock()
	err := m.move(from, to, amount)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify(ctx, from, to, amount)
	return nil
}

func (m *Memory) TransferFrom(ctx context.Context, spender, from, to string, amount uint64) error {
	m.mu.Lock()
	allowed := m.allowances[from][spender]
	if allowed < amount {
		m.mu.Unlock()
		return asset.ErrInsufficientAllowance
	}
	if err := m.move(from, to, amount); err != nil {
		m.mu.Unlock()
		return err
	}
	m.allowances[from][spender] = allowed - amount
	m.mu.Unlock()
	m.notify(ctx, from, to, amount)
	return nil
}

func (m *Memory) BalanceOf(_ context.Context, account string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}

func (m *Memory) Approve(_ context.Context, owner, spender string, amount uint64) error {
	if owner == "" || spender == "" {
		return asset.ErrInvalidAccount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allowances[owner] == nil {
		m.allowances[owner] = map[string]uint64{}
	}
	m.allowances[owner][spender] = amount
	return nil
}

func (m *Memory) Allowance(_ context.Context, owner, spender string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowances[owner][spender], nil
}

// move must be called with mu held.
func (m *Memory) move(from, to string, amount uint64) error {
	if from == "" || to == "" {
		return asset.ErrInvalidAccount
	}
	if m.balances[from] < amount {
		return asset.ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	if m.balances[to] > math.MaxUint64-amount {
		return asset.ErrInvalidAmount
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}

func (m *Memory) notify(ctx context.Context, from, to string, amount uint64) {
	if m.OnTransfer != nil {
		m.OnTransfer(ctx, from, to, amount)
	}
}
