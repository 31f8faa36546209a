package borrower

import (
	"time"
)

// Borrower is created lazily on the first loan and never deleted. Blacklisted
// is sticky: once set it is never cleared.
type Borrower struct {
	Address       string     `gorm:"column:address;primaryKey;size:42" json:"address"`
	ActiveLoanID  *uint64    `gorm:"column:active_loan_id" json:"active_loan_id,omitempty"`
	Blacklisted   bool       `gorm:"column:blacklisted;not null;default:false" json:"blacklisted"`
	BlacklistedAt *time.Time `gorm:"column:blacklisted_at" json:"blacklisted_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Borrower) TableName() string { return "borrowers" }

func (b *Borrower) HasActiveLoan() bool { return b.ActiveLoanID != nil }

// Eligible: not blacklisted and nothing outstanding.
func (b *Borrower) Eligible() bool { return !b.Blacklisted && !b.HasActiveLoan() }

func (b *Borrower) Activate(loanID uint64) {
	id := loanID
	b.ActiveLoanID = &id
}

func (b *Borrower) ClearActive() { b.ActiveLoanID = nil }

func (b *Borrower) Blacklist(at time.Time) {
	if b.Blacklisted {
		return
	}
	b.Blacklisted = true
	b.BlacklistedAt = &at
}
