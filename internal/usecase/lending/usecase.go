package lending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tier0-lending/internal/domain/asset"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/domain/pool"
	"tier0-lending/internal/domain/uow"
	"tier0-lending/internal/observability/metrics"
	"tier0-lending/pkg/address"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Config fixes the pool's identities and parameters at construction.
type Config struct {
	Params   loan.Params
	Pool     string // custody account on the asset ledger
	Operator string
}

// Usecase is the loan pool. Every mutation holds mu for its whole duration,
// ledger call included, and stages its bookkeeping in a storage transaction
// that also locks the statistics row, so mutations are totally ordered within
// and across processes. Outbound funds move only after the bookkeeping has
// committed; inbound pulls happen inside the transaction and are refunded if
// it then fails to commit.
type Usecase struct {
	repos  uow.Repos
	uow    uow.UnitOfWork
	ledger asset.Ledger

	params   loan.Params
	pool     string
	operator string

	now     func() time.Time
	log     logrus.FieldLogger
	metrics *metrics.PoolMetrics

	mu sync.Mutex
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func WithLogger(l logrus.FieldLogger) Option { return func(u *Usecase) { u.log = l } }

func WithMetrics(m *metrics.PoolMetrics) Option { return func(u *Usecase) { u.metrics = m } }

// NewUsecase: repos serve reads outside transactions, tx runs mutations.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, ledger asset.Ledger, cfg Config, opts ...Option) (*Usecase, error) {
	poolAddr, err := address.Normalize(cfg.Pool)
	if err != nil {
		return nil, fmt.Errorf("%w: pool %q", loan.ErrInvalidAddress, cfg.Pool)
	}
	operator, err := address.Normalize(cfg.Operator)
	if err != nil {
		return nil, fmt.Errorf("%w: operator %q", loan.ErrInvalidAddress, cfg.Operator)
	}
	if cfg.Params.MinLoan == 0 || cfg.Params.MinLoan > cfg.Params.MaxLoan || cfg.Params.Term <= 0 {
		return nil, errors.New("lending: invalid pool parameters")
	}
	if ledger == nil || tx == nil {
		return nil, errors.New("lending: ledger and unit of work are required")
	}

	u := &Usecase{
		repos:    repos,
		uow:      tx,
		ledger:   ledger,
		params:   cfg.Params,
		pool:     poolAddr,
		operator: operator,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

func (u *Usecase) PoolAddress() string     { return u.pool }
func (u *Usecase) OperatorAddress() string { return u.operator }

// Initialize creates the statistics row if it is missing.
func (u *Usecase) Initialize(ctx context.Context) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		st, err := r.Pool.Init(ctx)
		if err != nil {
			return err
		}
		u.metrics.ObserveStats(st)
		return nil
	})
}

type opKey struct{}

// enter serializes a mutation and marks ctx so that a ledger calling back into
// the pool with it is refused instead of deadlocking on mu.
func (u *Usecase) enter(ctx context.Context) (context.Context, func(), error) {
	if ctx.Value(opKey{}) != nil {
		return ctx, func() {}, loan.ErrReentrantCall
	}
	u.mu.Lock()
	return context.WithValue(ctx, opKey{}, true), u.mu.Unlock, nil
}

// mutate runs fn inside a pool transaction with the statistics row locked.
// A transaction against a pool that was never initialized creates the row
// first.
func (u *Usecase) mutate(ctx context.Context, fn func(r uow.Repos, st *pool.Stats) error) error {
	err := u.uow.WithinPoolTx(ctx, fn)
	if errors.Is(err, gorm.ErrRecordNotFound) && !isDomainErr(err) {
		if ierr := u.Initialize(ctx); ierr != nil {
			return ierr
		}
		err = u.uow.WithinPoolTx(ctx, fn)
	}
	return err
}

func isDomainErr(err error) bool { return loan.Reason(err) != "internal" }

func transferFailed(err error) error {
	return fmt.Errorf("%w: %w", loan.ErrTransferFailed, err)
}

// revert undoes bookkeeping committed for an outbound transfer that then
// failed, and returns cause. A revert that cannot commit leaves the books
// ahead of the ledger; it is logged for reconciliation and joined to cause.
func (u *Usecase) revert(ctx context.Context, op string, cause error, fn func(ctx context.Context, r uow.Repos, st *pool.Stats) error) error {
	ctx = context.WithoutCancel(ctx)
	err := u.uow.WithinPoolTx(ctx, func(r uow.Repos, st *pool.Stats) error {
		return fn(ctx, r, st)
	})
	if err != nil {
		u.log.WithField("op", op).WithError(err).Error("revert after failed transfer did not commit, pool needs reconciling")
		return fmt.Errorf("%w; revert: %w", cause, err)
	}
	return cause
}

// refund returns funds pulled by a transaction that then failed to commit,
// and returns cause. The spent allowance is not restored.
func (u *Usecase) refund(ctx context.Context, op, to string, amount uint64, cause error) error {
	ctx = context.WithoutCancel(ctx)
	fields := logrus.Fields{"op": op, "to": to, "amount": amount}
	if err := u.ledger.Transfer(ctx, u.pool, to, amount); err != nil {
		u.log.WithFields(fields).WithError(err).Error("refund after failed commit did not go through, pool needs reconciling")
		return fmt.Errorf("%w; refund: %w", cause, err)
	}
	u.log.WithFields(fields).WithError(cause).Warn("commit failed, pulled funds refunded")
	return cause
}

func (u *Usecase) observe(op string, err error, st *pool.Stats) {
	if err != nil {
		u.metrics.ObserveOperation(op, loan.Reason(err))
		return
	}
	u.metrics.ObserveOperation(op, "")
	u.metrics.ObserveStats(st)
}
