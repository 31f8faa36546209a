package lending

import (
	"context"
	"errors"

	"tier0-lending/internal/domain/borrower"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/domain/pool"
	"tier0-lending/pkg/address"

	"gorm.io/gorm"
)

func (u *Usecase) Params() ParamsDTO {
	return ParamsDTO{
		MinLoan:         u.params.MinLoan,
		MaxLoan:         u.params.MaxLoan,
		TermSeconds:     int64(u.params.Term.Seconds()),
		InterestRateBps: u.params.InterestRateBps,
		Pool:            u.pool,
		Operator:        u.operator,
	}
}

// GetStats reads the aggregate; an uninitialized pool reports all zeros.
func (u *Usecase) GetStats(ctx context.Context) (*StatsDTO, error) {
	st, err := u.repos.Pool.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return statsDTO(&pool.Stats{}), nil
	}
	if err != nil {
		return nil, err
	}
	return statsDTO(st), nil
}

func (u *Usecase) GetLoan(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.repos.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	return u.loanDTO(l), nil
}

// AmountDue quotes principal plus interest for an outstanding loan.
func (u *Usecase) AmountDue(ctx context.Context, loanID uint64) (uint64, error) {
	l, err := u.repos.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, loan.ErrNotFound
		}
		return 0, err
	}
	if l.Repaid {
		return 0, loan.ErrAlreadyRepaid
	}
	if l.Defaulted {
		return 0, loan.ErrAlreadyDefaulted
	}
	_, due, err := u.params.AmountDue(l.Principal)
	return due, err
}

// GetBorrowerLoans lists every loan id issued to who, oldest first. Unknown
// borrowers get an empty list.
func (u *Usecase) GetBorrowerLoans(ctx context.Context, who string) ([]uint64, error) {
	addr, err := address.Normalize(who)
	if err != nil {
		return nil, loan.ErrInvalidAddress
	}
	return u.repos.Loans.ListLoanIDsByBorrower(ctx, addr)
}

func (u *Usecase) borrower(ctx context.Context, who string) (*borrower.Borrower, error) {
	addr, err := address.Normalize(who)
	if err != nil {
		return nil, loan.ErrInvalidAddress
	}
	b, err := u.repos.Borrowers.GetByAddress(ctx, addr)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &borrower.Borrower{Address: addr}, nil
	}
	return b, err
}

func (u *Usecase) IsEligible(ctx context.Context, who string) (bool, error) {
	b, err := u.borrower(ctx, who)
	if err != nil {
		return false, err
	}
	return b.Eligible(), nil
}

func (u *Usecase) IsBlacklisted(ctx context.Context, who string) (bool, error) {
	b, err := u.borrower(ctx, who)
	if err != nil {
		return false, err
	}
	return b.Blacklisted, nil
}

func (u *Usecase) GetBorrower(ctx context.Context, who string) (*BorrowerDTO, error) {
	b, err := u.borrower(ctx, who)
	if err != nil {
		return nil, err
	}
	return &BorrowerDTO{
		Address:      b.Address,
		Eligible:     b.Eligible(),
		Blacklisted:  b.Blacklisted,
		ActiveLoanID: b.ActiveLoanID,
	}, nil
}

// ListOverdue returns outstanding loans past their due date with ids from
// `from` on, oldest first. Pass the last seen id + 1 to fetch the next page.
func (u *Usecase) ListOverdue(ctx context.Context, from uint64, limit int) ([]LoanDTO, error) {
	loans, err := u.repos.Loans.ListOverdue(ctx, u.now(), from, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *u.loanDTO(&loans[i]))
	}
	return out, nil
}
