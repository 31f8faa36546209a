package borrowermock

import (
	"context"

	domain "tier0-lending/internal/domain/borrower"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository. Unset
// lookups behave like an address that never borrowed.
type Repo struct {
	GetByAddressFn          func(ctx context.Context, address string) (*domain.Borrower, error)
	GetByAddressForUpdateFn func(ctx context.Context, address string) (*domain.Borrower, error)
	SaveFn                  func(ctx context.Context, b *domain.Borrower) error
}

func (m *Repo) GetByAddress(ctx context.Context, address string) (*domain.Borrower, error) {
	if m.GetByAddressFn != nil {
		return m.GetByAddressFn(ctx, address)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByAddressForUpdate(ctx context.Context, address string) (*domain.Borrower, error) {
	if m.GetByAddressForUpdateFn != nil {
		return m.GetByAddressForUpdateFn(ctx, address)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) Save(ctx context.Context, b *domain.Borrower) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, b)
	}
	return nil
}
