package gormstore

import (
	"context"
	"time"

	loanDomain "tier0-lending/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) Delete(ctx context.Context, loanID uint64) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&loanDomain.Loan{}).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// GetByLoanIDForUpdate takes a row lock; sqlite ignores the locking clause.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListLoanIDsByBorrower(ctx context.Context, borrower string) ([]uint64, error) {
	ids := []uint64{}
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("borrower = ?", borrower).
		Order("loan_id ASC").
		Pluck("loan_id", &ids)
	return ids, res.Error
}

func (r *LoanRepository) ListOverdue(ctx context.Context, now time.Time, from uint64, limit int) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	q := r.db.WithContext(ctx).
		Where("repaid = ? AND defaulted = ? AND due_at < ? AND loan_id >= ?", false, false, now, from).
		Order("loan_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	res := q.Find(&out)
	return out, res.Error
}
