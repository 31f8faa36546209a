package asset

import (
	"context"
	"errors"
)

var (
	ErrInsufficientFunds     = errors.New("ledger: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")
	ErrInvalidAmount         = errors.New("ledger: invalid amount")
	ErrInvalidAccount        = errors.New("ledger: invalid account")
)

// Ledger is the value-transfer asset the pool holds custody in, modelled on
// ERC-20. Any non-nil error means nothing moved.
type Ledger interface {
	// Transfer moves amount from the caller's own account.
	Transfer(ctx context.Context, from, to string, amount uint64) error
	// TransferFrom moves amount out of from, spending spender's allowance.
	TransferFrom(ctx context.Context, spender, from, to string, amount uint64) error
	BalanceOf(ctx context.Context, account string) (uint64, error)
	Approve(ctx context.Context, owner, spender string, amount uint64) error
	Allowance(ctx context.Context, owner, spender string) (uint64, error)
}

// Minter is implemented by the local development ledgers.
type Minter interface {
	Mint(ctx context.Context, to string, amount uint64) error
}
