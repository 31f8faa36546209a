package gormstore

import (
	"tier0-lending/internal/domain/borrower"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/domain/pool"

	"gorm.io/gorm"
)

// Migrate creates or updates the loans, borrowers and pool_stats tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&loan.Loan{}, &borrower.Borrower{}, &pool.Stats{})
}
