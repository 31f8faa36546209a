package pool

import "context"

type Repository interface {
	// Init creates the statistics row when it does not exist yet and returns it.
	Init(ctx context.Context) (*Stats, error)
	Get(ctx context.Context) (*Stats, error)
	// Locks the statistics row; every pool mutation takes this lock first.
	GetForUpdate(ctx context.Context) (*Stats, error)
	Save(ctx context.Context, s *Stats) error
}
