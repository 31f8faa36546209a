package poolmock

import (
	"context"

	domain "tier0-lending/internal/domain/pool"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository. Unset
// reads return an empty statistics row.
type Repo struct {
	InitFn         func(ctx context.Context) (*domain.Stats, error)
	GetFn          func(ctx context.Context) (*domain.Stats, error)
	GetForUpdateFn func(ctx context.Context) (*domain.Stats, error)
	SaveFn         func(ctx context.Context, s *domain.Stats) error
}

func (m *Repo) Init(ctx context.Context) (*domain.Stats, error) {
	if m.InitFn != nil {
		return m.InitFn(ctx)
	}
	return &domain.Stats{ID: domain.StatsRowID}, nil
}

func (m *Repo) Get(ctx context.Context) (*domain.Stats, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx)
	}
	return &domain.Stats{ID: domain.StatsRowID}, nil
}

func (m *Repo) GetForUpdate(ctx context.Context) (*domain.Stats, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx)
	}
	return &domain.Stats{ID: domain.StatsRowID}, nil
}

func (m *Repo) Save(ctx context.Context, s *domain.Stats) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, s)
	}
	return nil
}
