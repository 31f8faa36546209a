package gormstore

import (
	"context"

	"tier0-lending/internal/domain/pool"
	"tier0-lending/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:     &LoanRepository{db: tx},
		Borrowers: &BorrowerRepository{db: tx},
		Pool:      &PoolRepository{db: tx},
	}
}

// Repos returns repositories bound to the base connection, for reads.
func (u *GormUoW) Repos() uow.Repos { return repos(u.db) }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinPoolTx(ctx context.Context, fn func(r uow.Repos, s *pool.Stats) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// the stats row is the pool-wide serialization point across replicas
		s, err := r.Pool.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		return fn(r, s)
	})
}
