package uowmock

import (
	"context"
	"errors"

	"tier0-lending/internal/domain/pool"
	"tier0-lending/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinPoolTxFn func(ctx context.Context, fn func(r uow.Repos, s *pool.Stats) error) error
}

// Passthrough returns a UoW that runs every callback directly against repos,
// handing WithinPoolTx callbacks the row from repos.Pool.GetForUpdate.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinPoolTxFn: func(ctx context.Context, fn func(uow.Repos, *pool.Stats) error) error {
			s, err := repos.Pool.GetForUpdate(ctx)
			if err != nil {
				return err
			}
			return fn(repos, s)
		},
	}
}

func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinPoolTx(fn func(context.Context, func(uow.Repos, *pool.Stats) error) error) *UoW {
	m.WithinPoolTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinPoolTx(ctx context.Context, fn func(r uow.Repos, s *pool.Stats) error) error {
	if m.WithinPoolTxFn != nil {
		return m.WithinPoolTxFn(ctx, fn)
	}
	return errUnimplemented
}
