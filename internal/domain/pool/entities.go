package pool

import (
	"time"

	"github.com/holiman/uint256"
)

// StatsRowID is the primary key of the single statistics row.
const StatsRowID = 1

// Stats is the pool aggregate. Everything except LiquidityBalance only grows.
// LiquidityBalance is uncommitted cash; principal that went out and never came
// back is TotalDeployed - TotalRepaid - TotalDefaulted.
type Stats struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement:false"`
	LiquidityBalance uint64    `gorm:"column:liquidity_balance;not null;default:0"`
	TotalLoansIssued uint64    `gorm:"column:total_loans_issued;not null;default:0"`
	TotalDeployed    uint64    `gorm:"column:total_deployed;not null;default:0"`
	TotalRepaid      uint64    `gorm:"column:total_repaid;not null;default:0"`
	TotalDefaulted   uint64    `gorm:"column:total_defaulted;not null;default:0"`
	InterestEarned   uint64    `gorm:"column:interest_earned;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Stats) TableName() string { return "pool_stats" }

// DefaultRateBps = TotalDefaulted * 10000 / TotalDeployed, 0 before the
// first issuance.
func (s *Stats) DefaultRateBps() uint64 {
	if s.TotalDeployed == 0 {
		return 0
	}
	rate := new(uint256.Int).Mul(uint256.NewInt(s.TotalDefaulted), uint256.NewInt(10_000))
	rate.Div(rate, uint256.NewInt(s.TotalDeployed))
	return rate.Uint64()
}

func (s *Stats) Outstanding() uint64 {
	closed := s.TotalRepaid + s.TotalDefaulted
	if closed > s.TotalDeployed {
		return 0
	}
	return s.TotalDeployed - closed
}

// Add returns a+b, reporting false when the sum does not fit in uint64.
func Add(a, b uint64) (uint64, bool) {
	sum, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow || !sum.IsUint64() {
		return 0, false
	}
	return sum.Uint64(), true
}
