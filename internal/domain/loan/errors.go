package loan

import "errors"

var (
	ErrUnauthorized          = errors.New("caller is not the pool operator")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrAmountOutOfRange      = errors.New("amount out of range")
	ErrAmountOverflow        = errors.New("amount overflows pool accounting")
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrBlacklisted           = errors.New("borrower blacklisted")
	ErrActiveLoanExists      = errors.New("already has active loan")
	ErrNotFound              = errors.New("loan not found")
	ErrNotBorrower           = errors.New("not your loan")
	ErrAlreadyRepaid         = errors.New("already repaid")
	ErrAlreadyDefaulted      = errors.New("already defaulted")
	ErrNotPastDue            = errors.New("not past due date")
	ErrTransferFailed        = errors.New("asset transfer failed")
	ErrReentrantCall         = errors.New("reentrant call into loan pool")
	ErrInvalidAddress        = errors.New("invalid address")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrUnauthorized, "unauthorized"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrAmountOutOfRange, "amount_out_of_range"},
	{ErrAmountOverflow, "amount_overflow"},
	{ErrInsufficientLiquidity, "insufficient_liquidity"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrBlacklisted, "blacklisted"},
	{ErrActiveLoanExists, "active_loan_exists"},
	{ErrNotFound, "not_found"},
	{ErrNotBorrower, "not_borrower"},
	{ErrAlreadyRepaid, "already_repaid"},
	{ErrAlreadyDefaulted, "already_defaulted"},
	{ErrNotPastDue, "not_past_due"},
	{ErrTransferFailed, "transfer_failed"},
	{ErrReentrantCall, "reentrant_call"},
	{ErrInvalidAddress, "invalid_address"},
}

// Reason returns a stable snake_case label for err, "internal" when err is
// not one of the pool's rejections.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal"
}
