package borrower

import "context"

type Repository interface {
	// returns gorm.ErrRecordNotFound for an address that never borrowed
	GetByAddress(ctx context.Context, address string) (*Borrower, error)
	GetByAddressForUpdate(ctx context.Context, address string) (*Borrower, error)

	// Save inserts or updates by address.
	Save(ctx context.Context, b *Borrower) error
}
