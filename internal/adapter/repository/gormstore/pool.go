package gormstore

import (
	"context"

	poolDomain "tier0-lending/internal/domain/pool"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PoolRepository struct{ db *gorm.DB }

func NewPoolRepository(db *gorm.DB) *PoolRepository { return &PoolRepository{db: db} }

func (r *PoolRepository) Init(ctx context.Context) (*poolDomain.Stats, error) {
	out := poolDomain.Stats{ID: poolDomain.StatsRowID}
	res := r.db.WithContext(ctx).
		Where(poolDomain.Stats{ID: poolDomain.StatsRowID}).
		FirstOrCreate(&out)
	return &out, res.Error
}

func (r *PoolRepository) Get(ctx context.Context) (*poolDomain.Stats, error) {
	var out poolDomain.Stats
	res := r.db.WithContext(ctx).Where("id = ?", poolDomain.StatsRowID).First(&out)
	return &out, res.Error
}

func (r *PoolRepository) GetForUpdate(ctx context.Context) (*poolDomain.Stats, error) {
	var out poolDomain.Stats
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", poolDomain.StatsRowID).
		First(&out)
	return &out, res.Error
}

func (r *PoolRepository) Save(ctx context.Context, s *poolDomain.Stats) error {
	s.ID = poolDomain.StatsRowID
	return r.db.WithContext(ctx).Save(s).Error
}
