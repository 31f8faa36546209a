// Package sweeper marks overdue loans defaulted on a cron schedule. It only
// automates the permissionless MarkDefault call; the pool itself never acts
// on elapsed time.
package sweeper

import (
	"context"
	"errors"
	"time"

	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/observability/metrics"
	"tier0-lending/internal/usecase/lending"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Pool is the part of the loan pool the sweeper drives.
type Pool interface {
	ListOverdue(ctx context.Context, from uint64, limit int) ([]lending.LoanDTO, error)
	MarkDefault(ctx context.Context, caller string, loanID uint64) (*lending.LoanDTO, error)
}

type Sweeper struct {
	pool    Pool
	caller  string
	batch   int
	timeout time.Duration
	log     logrus.FieldLogger
	metrics *metrics.PoolMetrics

	cron *cron.Cron
}

// New returns a sweeper that calls MarkDefault as caller, listing batch loans
// per page.
func New(p Pool, caller string, batch int, log logrus.FieldLogger, m *metrics.PoolMetrics) *Sweeper {
	if batch <= 0 {
		batch = 100
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sweeper{
		pool:    p,
		caller:  caller,
		batch:   batch,
		timeout: time.Minute,
		log:     log.WithField("component", "sweeper"),
		metrics: m,
	}
}

// RunOnce defaults every overdue loan it can see and returns how many it
// marked. Losing a race to another caller is not an error. A loan that keeps
// failing is logged and stepped over so it cannot hold back later ones.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	var (
		from   uint64
		marked int
		failed int
	)
	for {
		due, err := s.pool.ListOverdue(ctx, from, s.batch)
		if err != nil {
			s.metrics.ObserveSwept(marked)
			return marked, err
		}
		for _, l := range due {
			from = l.LoanID + 1
			_, err := s.pool.MarkDefault(ctx, s.caller, l.LoanID)
			switch {
			case err == nil:
				marked++
			case errors.Is(err, loan.ErrAlreadyDefaulted), errors.Is(err, loan.ErrAlreadyRepaid):
			default:
				failed++
				s.log.WithField("loan_id", l.LoanID).WithError(err).Error("mark default failed")
			}
		}
		if len(due) < s.batch || ctx.Err() != nil {
			break
		}
	}
	s.metrics.ObserveSwept(marked)
	if marked > 0 || failed > 0 {
		s.log.WithFields(logrus.Fields{"count": marked, "failed": failed}).Info("overdue loans defaulted")
	}
	return marked, nil
}

// Start schedules RunOnce with a standard five-field cron spec.
func (s *Sweeper) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	s.log.WithField("schedule", spec).Info("sweeper started")
	return nil
}

func (s *Sweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.WithError(err).Error("sweep failed")
	}
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info("sweeper stopped")
}
