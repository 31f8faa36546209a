package lending

import (
	"context"
	"errors"
	"testing"

	"tier0-lending/internal/domain/borrower"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/domain/pool"
	"tier0-lending/internal/domain/uow"
	"tier0-lending/internal/infrastructure/ledger"
	"tier0-lending/internal/observability/metrics"
	"tier0-lending/internal/testutil/borrowermock"
	"tier0-lending/internal/testutil/loanmock"
	"tier0-lending/internal/testutil/poolmock"
	"tier0-lending/internal/testutil/uowmock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func emptyRepos() uow.Repos {
	return uow.Repos{Loans: &loanmock.Repo{}, Borrowers: &borrowermock.Repo{}, Pool: &poolmock.Repo{}}
}

// spyLedger counts calls that would move funds.
type spyLedger struct {
	*ledger.Memory
	moves int
}

func (s *spyLedger) Transfer(ctx context.Context, from, to string, amount uint64) error {
	s.moves++
	return s.Memory.Transfer(ctx, from, to, amount)
}

func (s *spyLedger) TransferFrom(ctx context.Context, spender, from, to string, amount uint64) error {
	s.moves++
	return s.Memory.TransferFrom(ctx, spender, from, to, amount)
}

func newMockUsecase(t *testing.T, repos uow.Repos, led *spyLedger, opts ...Option) *Usecase {
	t.Helper()
	uc, err := NewUsecase(repos, uowmock.Passthrough(repos), led, Config{
		Params:   loan.DefaultParams(),
		Pool:     poolAddr,
		Operator: operator,
	}, opts...)
	require.NoError(t, err)
	return uc
}

func TestRequestLoan_StatsSaveErrorSkipsTransfer(t *testing.T) {
	boom := errors.New("disk full")
	repos := emptyRepos()
	repos.Pool = &poolmock.Repo{
		GetForUpdateFn: func(context.Context) (*pool.Stats, error) {
			return &pool.Stats{ID: pool.StatsRowID, LiquidityBalance: 10 * unit}, nil
		},
		SaveFn: func(context.Context, *pool.Stats) error { return boom },
	}
	led := &spyLedger{Memory: ledger.NewMemory()}
	uc := newMockUsecase(t, repos, led)

	_, err := uc.RequestLoan(context.Background(), alice, 500_000)
	require.ErrorIs(t, err, boom)
	require.Zero(t, led.moves)
}

func TestRequestLoan_BorrowerLookupError(t *testing.T) {
	boom := errors.New("connection reset")
	repos := emptyRepos()
	repos.Borrowers = &borrowermock.Repo{
		GetByAddressForUpdateFn: func(context.Context, string) (*borrower.Borrower, error) { return nil, boom },
	}
	led := &spyLedger{Memory: ledger.NewMemory()}
	uc := newMockUsecase(t, repos, led)

	_, err := uc.RequestLoan(context.Background(), alice, 500_000)
	require.ErrorIs(t, err, boom)
	require.Zero(t, led.moves)
}

func TestRequestLoan_BlacklistReportedOverActiveLoan(t *testing.T) {
	active := uint64(3)
	repos := emptyRepos()
	repos.Borrowers = &borrowermock.Repo{
		GetByAddressForUpdateFn: func(_ context.Context, a string) (*borrower.Borrower, error) {
			return &borrower.Borrower{Address: a, Blacklisted: true, ActiveLoanID: &active}, nil
		},
	}
	uc := newMockUsecase(t, repos, &spyLedger{Memory: ledger.NewMemory()})

	_, err := uc.RequestLoan(context.Background(), alice, 500_000)
	require.ErrorIs(t, err, loan.ErrBlacklisted)
}

func TestMutation_InitializesMissingStatsRow(t *testing.T) {
	initialized := false
	repos := emptyRepos()
	repos.Pool = &poolmock.Repo{
		InitFn: func(context.Context) (*pool.Stats, error) {
			initialized = true
			return &pool.Stats{ID: pool.StatsRowID}, nil
		},
		GetForUpdateFn: func(context.Context) (*pool.Stats, error) {
			if !initialized {
				return nil, gorm.ErrRecordNotFound
			}
			return &pool.Stats{ID: pool.StatsRowID}, nil
		},
	}
	mem := ledger.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Mint(ctx, operator, unit))
	require.NoError(t, mem.Approve(ctx, operator, poolAddr, unit))
	uc := newMockUsecase(t, repos, &spyLedger{Memory: mem})

	got, err := uc.DepositLiquidity(ctx, operator, unit)
	require.NoError(t, err)
	require.True(t, initialized)
	require.Equal(t, uint64(unit), got.LiquidityBalance)
}

func TestGetStats_Uninitialized(t *testing.T) {
	repos := emptyRepos()
	repos.Pool = &poolmock.Repo{
		GetFn: func(context.Context) (*pool.Stats, error) { return nil, gorm.ErrRecordNotFound },
	}
	uc := newMockUsecase(t, repos, &spyLedger{Memory: ledger.NewMemory()})

	st, err := uc.GetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, &StatsDTO{}, st)
}

func TestRepayLoan_OverflowGuard(t *testing.T) {
	repos := emptyRepos()
	repos.Loans = &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(context.Context, uint64) (*loan.Loan, error) {
			return &loan.Loan{LoanID: 0, Borrower: alice, Principal: 500_000}, nil
		},
	}
	repos.Pool = &poolmock.Repo{
		GetForUpdateFn: func(context.Context) (*pool.Stats, error) {
			return &pool.Stats{ID: pool.StatsRowID, LiquidityBalance: ^uint64(0) - 10}, nil
		},
	}
	led := &spyLedger{Memory: ledger.NewMemory()}
	uc := newMockUsecase(t, repos, led)

	_, err := uc.RepayLoan(context.Background(), alice, 0)
	require.ErrorIs(t, err, loan.ErrAmountOverflow)
	require.Zero(t, led.moves)
}

func TestRequestLoan_LogsAndMetrics(t *testing.T) {
	ctx := context.Background()
	logger, hook := logtest.NewNullLogger()
	reg := prometheus.NewRegistry()
	f := newFixture(t, 10*unit, nil, WithLogger(logger), WithMetrics(metrics.NewPool(reg)))

	issued, err := f.uc.RequestLoan(ctx, alice, 500_000)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.InfoLevel, entry.Level)
	require.Equal(t, "loan issued", entry.Message)
	require.Equal(t, issued.LoanID, entry.Data["loan_id"])
	require.Equal(t, alice, entry.Data["borrower"])

	_, err = f.uc.RequestLoan(ctx, alice, 500_000)
	require.ErrorIs(t, err, loan.ErrActiveLoanExists)

	require.Equal(t, 9_500_000.0, gaugeValue(t, reg, "loanpool_liquidity_balance"))
	require.Equal(t, 500_000.0, gaugeValue(t, reg, "loanpool_outstanding_principal"))
	require.Equal(t, 1.0, counterValue(t, reg, "loanpool_operations_total", "request_loan", "ok"))
	require.Equal(t, 1.0, counterValue(t, reg, "loanpool_operations_total", "request_loan", "active_loan_exists"))
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, op, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["operation"] == op && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s{%s,%s} not found", name, op, outcome)
	return 0
}
