package loan

import (
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

// Loan is one issuance. Principal, Borrower and the dates never change after
// creation; Repaid and Defaulted each flip false -> true at most once and are
// never both set.
type Loan struct {
	ID           uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanID       uint64     `gorm:"column:loan_id;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	Borrower     string     `gorm:"column:borrower;size:42;not null;index:idx_loans_borrower" json:"borrower"`
	Principal    uint64     `gorm:"column:principal;not null" json:"principal"`
	AmountRepaid uint64     `gorm:"column:amount_repaid;not null;default:0" json:"amount_repaid"`
	IssuedAt     time.Time  `gorm:"column:issued_at;not null" json:"issued_at"`
	DueAt        time.Time  `gorm:"column:due_at;not null;index:idx_loans_due" json:"due_at"`
	Repaid       bool       `gorm:"column:repaid;not null;default:false" json:"repaid"`
	Defaulted    bool       `gorm:"column:defaulted;not null;default:false" json:"defaulted"`
	RepaidAt     *time.Time `gorm:"column:repaid_at" json:"repaid_at,omitempty"`
	DefaultedAt  *time.Time `gorm:"column:defaulted_at" json:"defaulted_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Outstanding reports whether the loan is neither repaid nor defaulted.
func (l *Loan) Outstanding() bool { return !l.Repaid && !l.Defaulted }

func (l *Loan) Status() Status {
	switch {
	case l.Repaid:
		return StatusRepaid
	case l.Defaulted:
		return StatusDefaulted
	default:
		return StatusActive
	}
}

// PastDue is strict: a loan is only past due once now is after DueAt.
func (l *Loan) PastDue(now time.Time) bool { return now.After(l.DueAt) }
