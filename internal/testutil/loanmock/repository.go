package loanmock

import (
	"context"
	"time"

	domain "tier0-lending/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled so a test notices the missing stub.
type Repo struct {
	CreateFn                func(ctx context.Context, l *domain.Loan) error
	SaveFn                  func(ctx context.Context, l *domain.Loan) error
	DeleteFn                func(ctx context.Context, loanID uint64) error
	GetByLoanIDFn           func(ctx context.Context, loanID uint64) (*domain.Loan, error)
	GetByLoanIDForUpdateFn  func(ctx context.Context, loanID uint64) (*domain.Loan, error)
	ListLoanIDsByBorrowerFn func(ctx context.Context, borrower string) ([]uint64, error)
	ListOverdueFn           func(ctx context.Context, now time.Time, from uint64, limit int) ([]domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, loanID uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, loanID)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID uint64) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID uint64) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListLoanIDsByBorrower(ctx context.Context, borrower string) ([]uint64, error) {
	if m.ListLoanIDsByBorrowerFn != nil {
		return m.ListLoanIDsByBorrowerFn(ctx, borrower)
	}
	return []uint64{}, nil
}

func (m *Repo) ListOverdue(ctx context.Context, now time.Time, from uint64, limit int) ([]domain.Loan, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, now, from, limit)
	}
	return nil, nil
}
