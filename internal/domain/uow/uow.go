package uow

import (
	"context"

	"tier0-lending/internal/domain/borrower"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/domain/pool"
)

// Repos are bound to the transaction they were handed out with.
type Repos struct {
	Loans     loan.Repository
	Borrowers borrower.Repository
	Pool      pool.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the pool statistics row first, then pass it in
	WithinPoolTx(ctx context.Context, fn func(r Repos, s *pool.Stats) error) error
}
