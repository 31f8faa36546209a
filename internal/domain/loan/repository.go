package loan

import (
	"context"
	"time"
)

// Repository reports a missing loan as gorm.ErrRecordNotFound.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	// Delete removes an issuance whose outbound transfer never happened.
	Delete(ctx context.Context, loanID uint64) error
	GetByLoanID(ctx context.Context, loanID uint64) (*Loan, error)
	// row lock for the duration of the surrounding transaction
	GetByLoanIDForUpdate(ctx context.Context, loanID uint64) (*Loan, error)
	// ordered by LoanID ascending
	ListLoanIDsByBorrower(ctx context.Context, borrower string) ([]uint64, error)
	// outstanding loans with DueAt before now and LoanID >= from, by LoanID
	// ascending. The term is fixed, so that is also due-date order.
	ListOverdue(ctx context.Context, now time.Time, from uint64, limit int) ([]Loan, error)
}
