package lending

import (
	"context"
	"errors"

	"tier0-lending/internal/domain/borrower"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/domain/pool"
	"tier0-lending/internal/domain/uow"
	"tier0-lending/pkg/address"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RequestLoan issues a loan of amount to caller and returns its id.
func (u *Usecase) RequestLoan(ctx context.Context, caller string, amount uint64) (*LoanDTO, error) {
	ctx, leave, err := u.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	var (
		issued *loan.Loan
		out    *pool.Stats
	)
	err = func() error {
		who, err := address.Normalize(caller)
		if err != nil {
			return loan.ErrInvalidAddress
		}
		if !u.params.InRange(amount) {
			return loan.ErrAmountOutOfRange
		}
		err = u.mutate(ctx, func(r uow.Repos, st *pool.Stats) error {
			b, err := r.Borrowers.GetByAddressForUpdate(ctx, who)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				b = &borrower.Borrower{Address: who}
			case err != nil:
				return err
			}
			// blacklist first: it is the more specific reason when both hold
			if b.Blacklisted {
				return loan.ErrBlacklisted
			}
			if b.HasActiveLoan() {
				return loan.ErrActiveLoanExists
			}
			if amount > st.LiquidityBalance {
				return loan.ErrInsufficientLiquidity
			}
			deployed, ok := pool.Add(st.TotalDeployed, amount)
			if !ok {
				return loan.ErrAmountOverflow
			}

			now := u.now()
			l := &loan.Loan{
				LoanID:    st.TotalLoansIssued,
				Borrower:  who,
				Principal: amount,
				IssuedAt:  now,
				DueAt:     now.Add(u.params.Term),
			}
			if err := r.Loans.Create(ctx, l); err != nil {
				return err
			}
			b.Activate(l.LoanID)
			if err := r.Borrowers.Save(ctx, b); err != nil {
				return err
			}
			st.LiquidityBalance -= amount
			st.TotalDeployed = deployed
			st.TotalLoansIssued++
			if err := r.Pool.Save(ctx, st); err != nil {
				return err
			}
			issued, out = l, st
			return nil
		})
		if err != nil {
			return err
		}

		// funds leave only once the issuance is committed
		if err := u.ledger.Transfer(ctx, u.pool, who, amount); err != nil {
			l := issued
			issued, out = nil, nil
			return u.revert(ctx, "request_loan", transferFailed(err), func(ctx context.Context, r uow.Repos, st *pool.Stats) error {
				return u.unissue(ctx, r, st, l)
			})
		}
		return nil
	}()
	u.observe("request_loan", err, out)
	if err != nil {
		u.log.WithFields(logrus.Fields{"borrower": caller, "amount": amount}).WithError(err).Debug("loan request rejected")
		return nil, err
	}
	u.log.WithFields(logrus.Fields{
		"loan_id":  issued.LoanID,
		"borrower": issued.Borrower,
		"amount":   issued.Principal,
		"due_at":   issued.DueAt,
	}).Info("loan issued")
	return u.loanDTO(issued), nil
}

// RepayLoan pulls principal plus interest from caller and closes the loan.
func (u *Usecase) RepayLoan(ctx context.Context, caller string, loanID uint64) (*LoanDTO, error) {
	ctx, leave, err := u.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	var (
		closed *loan.Loan
		out    *pool.Stats
		pulled uint64
	)
	err = u.mutate(ctx, func(r uow.Repos, st *pool.Stats) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loan.ErrNotFound
			}
			return err
		}
		if !address.Equal(caller, l.Borrower) {
			return loan.ErrNotBorrower
		}
		if l.Repaid {
			return loan.ErrAlreadyRepaid
		}
		if l.Defaulted {
			return loan.ErrAlreadyDefaulted
		}

		interest, due, err := u.params.AmountDue(l.Principal)
		if err != nil {
			return err
		}
		liquidity, ok := pool.Add(st.LiquidityBalance, due)
		if !ok {
			return loan.ErrAmountOverflow
		}
		repaid, ok := pool.Add(st.TotalRepaid, l.Principal)
		if !ok {
			return loan.ErrAmountOverflow
		}
		earned, ok := pool.Add(st.InterestEarned, interest)
		if !ok {
			return loan.ErrAmountOverflow
		}

		now := u.now()
		l.Repaid = true
		l.RepaidAt = &now
		l.AmountRepaid = due
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := u.clearActive(ctx, r, l, nil); err != nil {
			return err
		}
		st.LiquidityBalance = liquidity
		st.TotalRepaid = repaid
		st.InterestEarned = earned
		if err := r.Pool.Save(ctx, st); err != nil {
			return err
		}

		if err := u.ledger.TransferFrom(ctx, u.pool, l.Borrower, u.pool, due); err != nil {
			return transferFailed(err)
		}
		closed, out, pulled = l, st, due
		return nil
	})
	if err != nil && closed != nil {
		err = u.refund(ctx, "repay_loan", closed.Borrower, pulled, err)
		closed, out = nil, nil
	}
	u.observe("repay_loan", err, out)
	if err != nil {
		u.log.WithFields(logrus.Fields{"loan_id": loanID, "borrower": caller}).WithError(err).Debug("repayment rejected")
		return nil, err
	}
	u.log.WithFields(logrus.Fields{
		"loan_id":  closed.LoanID,
		"borrower": closed.Borrower,
		"amount":   closed.AmountRepaid,
	}).Info("loan repaid")
	return u.loanDTO(closed), nil
}

// MarkDefault closes a loan whose due date has passed and blacklists its
// borrower. Anyone may call it.
func (u *Usecase) MarkDefault(ctx context.Context, caller string, loanID uint64) (*LoanDTO, error) {
	ctx, leave, err := u.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	var (
		closed *loan.Loan
		out    *pool.Stats
	)
	err = u.mutate(ctx, func(r uow.Repos, st *pool.Stats) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loan.ErrNotFound
			}
			return err
		}
		now := u.now()
		if !l.PastDue(now) {
			return loan.ErrNotPastDue
		}
		if l.Defaulted {
			return loan.ErrAlreadyDefaulted
		}
		if l.Repaid {
			return loan.ErrAlreadyRepaid
		}
		defaulted, ok := pool.Add(st.TotalDefaulted, l.Principal)
		if !ok {
			return loan.ErrAmountOverflow
		}

		l.Defaulted = true
		l.DefaultedAt = &now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := u.clearActive(ctx, r, l, func(b *borrower.Borrower) { b.Blacklist(now) }); err != nil {
			return err
		}
		// liquidity stays: the principal already left the pool at issuance
		st.TotalDefaulted = defaulted
		if err := r.Pool.Save(ctx, st); err != nil {
			return err
		}
		closed, out = l, st
		return nil
	})
	u.observe("mark_default", err, out)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{
		"loan_id":  closed.LoanID,
		"borrower": closed.Borrower,
		"amount":   closed.Principal,
		"caller":   caller,
	}).Warn("loan defaulted, borrower blacklisted")
	return u.loanDTO(closed), nil
}

// unissue backs out a committed issuance whose outbound transfer failed.
func (u *Usecase) unissue(ctx context.Context, r uow.Repos, st *pool.Stats, l *loan.Loan) error {
	if err := r.Loans.Delete(ctx, l.LoanID); err != nil {
		return err
	}
	if err := u.clearActive(ctx, r, l, nil); err != nil {
		return err
	}
	liquidity, ok := pool.Add(st.LiquidityBalance, l.Principal)
	if !ok {
		return loan.ErrAmountOverflow
	}
	st.LiquidityBalance = liquidity
	if st.TotalDeployed >= l.Principal {
		st.TotalDeployed -= l.Principal
	}
	// the id is handed out again unless a later issuance already took the next one
	if st.TotalLoansIssued == l.LoanID+1 {
		st.TotalLoansIssued--
	}
	return r.Pool.Save(ctx, st)
}

// clearActive drops the borrower's active loan reference and applies the
// optional extra mutation in the same save.
func (u *Usecase) clearActive(ctx context.Context, r uow.Repos, l *loan.Loan, also func(*borrower.Borrower)) error {
	b, err := r.Borrowers.GetByAddressForUpdate(ctx, l.Borrower)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		b = &borrower.Borrower{Address: l.Borrower}
	case err != nil:
		return err
	}
	b.ClearActive()
	if also != nil {
		also(b)
	}
	return r.Borrowers.Save(ctx, b)
}
