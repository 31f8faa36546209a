package gormstore

import (
	"context"

	borrowerDomain "tier0-lending/internal/domain/borrower"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BorrowerRepository struct{ db *gorm.DB }

func NewBorrowerRepository(db *gorm.DB) *BorrowerRepository { return &BorrowerRepository{db: db} }

func (r *BorrowerRepository) GetByAddress(ctx context.Context, address string) (*borrowerDomain.Borrower, error) {
	var out borrowerDomain.Borrower
	res := r.db.WithContext(ctx).Where("address = ?", address).First(&out)
	return &out, res.Error
}

func (r *BorrowerRepository) GetByAddressForUpdate(ctx context.Context, address string) (*borrowerDomain.Borrower, error) {
	var out borrowerDomain.Borrower
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", address).
		First(&out)
	return &out, res.Error
}

// Save upserts on the address primary key. A nil ActiveLoanID is written as
// NULL so a cleared active loan is persisted.
func (r *BorrowerRepository) Save(ctx context.Context, b *borrowerDomain.Borrower) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"active_loan_id", "blacklisted", "blacklisted_at", "updated_at"}),
		}).
		Create(b).Error
}
