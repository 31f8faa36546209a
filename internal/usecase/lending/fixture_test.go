package lending

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"tier0-lending/internal/adapter/repository/gormstore"
	"tier0-lending/internal/domain/asset"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/infrastructure/ledger"
	"tier0-lending/internal/testutil/dbtest"

	"github.com/stretchr/testify/require"
)

const (
	operator = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	poolAddr = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	alice    = "0x52908400098527886E0F7030069857D2E4169EE7"
	bob      = "0xde709f2102306220921060314715629080e2fb77"
	carol    = "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"

	unit = 1_000_000 // 6 decimals
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	uc    *Usecase
	mem   *ledger.Memory
	clock *fakeClock
}

// newFixture builds a pool on a fresh sqlite database and seeds it with
// seed units of operator liquidity. wrap, when set, decorates the ledger the
// pool talks to.
func newFixture(t *testing.T, seed uint64, wrap func(*ledger.Memory) asset.Ledger, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()

	store := gormstore.NewGormUoW(dbtest.OpenSQLite(t))
	mem := ledger.NewMemory()
	var led asset.Ledger = mem
	if wrap != nil {
		led = wrap(mem)
	}
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	opts = append([]Option{WithClock(clock.Now)}, opts...)
	uc, err := NewUsecase(store.Repos(), store, led, Config{
		Params:   loan.DefaultParams(),
		Pool:     poolAddr,
		Operator: operator,
	}, opts...)
	require.NoError(t, err)
	require.NoError(t, uc.Initialize(ctx))

	if seed > 0 {
		require.NoError(t, mem.Mint(ctx, operator, seed))
		require.NoError(t, mem.Approve(ctx, operator, poolAddr, seed))
		_, err := uc.DepositLiquidity(ctx, operator, seed)
		require.NoError(t, err)
	}
	return &fixture{uc: uc, mem: mem, clock: clock}
}

// fund mints extra to who and lets the pool pull anything it holds.
func (f *fixture) fund(t *testing.T, who string, extra uint64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.mem.Mint(ctx, who, extra))
	require.NoError(t, f.mem.Approve(ctx, who, poolAddr, math.MaxUint64))
}

func (f *fixture) stats(t *testing.T) *StatsDTO {
	t.Helper()
	s, err := f.uc.GetStats(context.Background())
	require.NoError(t, err)
	return s
}

func (f *fixture) balance(t *testing.T, who string) uint64 {
	t.Helper()
	b, err := f.mem.BalanceOf(context.Background(), who)
	require.NoError(t, err)
	return b
}
