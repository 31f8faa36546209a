package lending

import (
	"context"

	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/domain/pool"
	"tier0-lending/internal/domain/uow"
	"tier0-lending/pkg/address"

	"github.com/sirupsen/logrus"
)

func (u *Usecase) authorizeOperator(caller string) error {
	if !address.Equal(caller, u.operator) {
		return loan.ErrUnauthorized
	}
	return nil
}

// DepositLiquidity pulls amount from the operator into the pool. The
// operator must have approved the pool for at least amount.
func (u *Usecase) DepositLiquidity(ctx context.Context, caller string, amount uint64) (*StatsDTO, error) {
	ctx, leave, err := u.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	var out *pool.Stats
	err = func() error {
		if err := u.authorizeOperator(caller); err != nil {
			return err
		}
		if amount == 0 {
			return loan.ErrInvalidAmount
		}
		pulled := false
		err := u.mutate(ctx, func(r uow.Repos, st *pool.Stats) error {
			next, ok := pool.Add(st.LiquidityBalance, amount)
			if !ok {
				return loan.ErrAmountOverflow
			}
			st.LiquidityBalance = next
			if err := r.Pool.Save(ctx, st); err != nil {
				return err
			}
			if err := u.ledger.TransferFrom(ctx, u.pool, u.operator, u.pool, amount); err != nil {
				return transferFailed(err)
			}
			pulled, out = true, st
			return nil
		})
		if err != nil && pulled {
			return u.refund(ctx, "deposit_liquidity", u.operator, amount, err)
		}
		return err
	}()
	u.observe("deposit_liquidity", err, out)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"amount": amount, "liquidity": out.LiquidityBalance}).Info("liquidity deposited")
	return statsDTO(out), nil
}

// WithdrawLiquidity sends amount of uncommitted liquidity to the operator.
func (u *Usecase) WithdrawLiquidity(ctx context.Context, caller string, amount uint64) (*StatsDTO, error) {
	ctx, leave, err := u.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	var out *pool.Stats
	err = func() error {
		if err := u.authorizeOperator(caller); err != nil {
			return err
		}
		if amount == 0 {
			return loan.ErrInvalidAmount
		}
		err := u.mutate(ctx, func(r uow.Repos, st *pool.Stats) error {
			if amount > st.LiquidityBalance {
				return loan.ErrInsufficientBalance
			}
			st.LiquidityBalance -= amount
			if err := r.Pool.Save(ctx, st); err != nil {
				return err
			}
			out = st
			return nil
		})
		if err != nil {
			return err
		}
		if err := u.ledger.Transfer(ctx, u.pool, u.operator, amount); err != nil {
			out = nil
			return u.revert(ctx, "withdraw_liquidity", transferFailed(err), func(ctx context.Context, r uow.Repos, st *pool.Stats) error {
				next, ok := pool.Add(st.LiquidityBalance, amount)
				if !ok {
					return loan.ErrAmountOverflow
				}
				st.LiquidityBalance = next
				return r.Pool.Save(ctx, st)
			})
		}
		return nil
	}()
	u.observe("withdraw_liquidity", err, out)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"amount": amount, "liquidity": out.LiquidityBalance}).Info("liquidity withdrawn")
	return statsDTO(out), nil
}
