package loan

import (
	"time"

	"github.com/holiman/uint256"
)

const BasisPoints = 10_000

// Params are fixed when the pool is constructed. Amounts are in the asset's
// smallest unit (6 decimals for USDC).
type Params struct {
	MinLoan         uint64
	MaxLoan         uint64
	Term            time.Duration
	InterestRateBps uint64
}

// DefaultParams: 0.1-1.0 unit loans, 7 day term, 10% flat interest.
func DefaultParams() Params {
	return Params{
		MinLoan:         100_000,
		MaxLoan:         1_000_000,
		Term:            7 * 24 * time.Hour,
		InterestRateBps: 1000,
	}
}

func (p Params) InRange(amount uint64) bool {
	return amount >= p.MinLoan && amount <= p.MaxLoan
}

// Interest is principal * rate / 10000, truncated.
func (p Params) Interest(principal uint64) (uint64, error) {
	v, overflow := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(principal),
		uint256.NewInt(p.InterestRateBps),
		uint256.NewInt(BasisPoints),
	)
	if overflow || !v.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return v.Uint64(), nil
}

// AmountDue returns the interest and the total (principal + interest) owed
// to close a loan of the given principal.
func (p Params) AmountDue(principal uint64) (interest, total uint64, err error) {
	interest, err = p.Interest(principal)
	if err != nil {
		return 0, 0, err
	}
	sum, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(principal), uint256.NewInt(interest))
	if overflow || !sum.IsUint64() {
		return 0, 0, ErrAmountOverflow
	}
	return interest, sum.Uint64(), nil
}
