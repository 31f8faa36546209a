package lending

import (
	"time"

	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/domain/pool"
)

type LoanDTO struct {
	LoanID       uint64     `json:"loan_id"`
	Borrower     string     `json:"borrower"`
	Principal    uint64     `json:"principal"`
	Status       string     `json:"status"`
	IssuedAt     time.Time  `json:"issued_at"`
	DueAt        time.Time  `json:"due_at"`
	Repaid       bool       `json:"repaid"`
	Defaulted    bool       `json:"defaulted"`
	AmountRepaid uint64     `json:"amount_repaid,omitempty"`
	AmountDue    uint64     `json:"amount_due,omitempty"` // only while outstanding
	RepaidAt     *time.Time `json:"repaid_at,omitempty"`
	DefaultedAt  *time.Time `json:"defaulted_at,omitempty"`
}

type StatsDTO struct {
	LiquidityBalance uint64 `json:"liquidity_balance"`
	TotalLoansIssued uint64 `json:"total_loans_issued"`
	TotalDeployed    uint64 `json:"total_deployed"`
	TotalRepaid      uint64 `json:"total_repaid"`
	TotalDefaulted   uint64 `json:"total_defaulted"`
	Outstanding      uint64 `json:"outstanding"`
	InterestEarned   uint64 `json:"interest_earned"`
	DefaultRateBps   uint64 `json:"default_rate_bps"`
}

type ParamsDTO struct {
	MinLoan         uint64 `json:"min_loan"`
	MaxLoan         uint64 `json:"max_loan"`
	TermSeconds     int64  `json:"loan_term_seconds"`
	InterestRateBps uint64 `json:"interest_rate_bps"`
	Pool            string `json:"pool"`
	Operator        string `json:"operator"`
}

type BorrowerDTO struct {
	Address      string  `json:"address"`
	Eligible     bool    `json:"eligible"`
	Blacklisted  bool    `json:"blacklisted"`
	ActiveLoanID *uint64 `json:"active_loan_id,omitempty"`
}

func (u *Usecase) loanDTO(l *loan.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:       l.LoanID,
		Borrower:     l.Borrower,
		Principal:    l.Principal,
		Status:       string(l.Status()),
		IssuedAt:     l.IssuedAt,
		DueAt:        l.DueAt,
		Repaid:       l.Repaid,
		Defaulted:    l.Defaulted,
		AmountRepaid: l.AmountRepaid,
		RepaidAt:     l.RepaidAt,
		DefaultedAt:  l.DefaultedAt,
	}
	if l.Outstanding() {
		if _, due, err := u.params.AmountDue(l.Principal); err == nil {
			dto.AmountDue = due
		}
	}
	return dto
}

func statsDTO(s *pool.Stats) *StatsDTO {
	return &StatsDTO{
		LiquidityBalance: s.LiquidityBalance,
		TotalLoansIssued: s.TotalLoansIssued,
		TotalDeployed:    s.TotalDeployed,
		TotalRepaid:      s.TotalRepaid,
		TotalDefaulted:   s.TotalDefaulted,
		Outstanding:      s.Outstanding(),
		InterestEarned:   s.InterestEarned,
		DefaultRateBps:   s.DefaultRateBps(),
	}
}
