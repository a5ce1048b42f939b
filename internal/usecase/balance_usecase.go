package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
)

// BalanceUseCase computes account balances from the immutable line-item set.
// Everything here is a pure read: re-aggregation is always consistent, so no
// cached balance exists anywhere in the system.
type BalanceUseCase struct {
	accountRepo AccountRepository
	periodRepo  PeriodRepository
	entryRepo   EntryRepository
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(accountRepo AccountRepository, periodRepo PeriodRepository, entryRepo EntryRepository) *BalanceUseCase {
	return &BalanceUseCase{
		accountRepo: accountRepo,
		periodRepo:  periodRepo,
		entryRepo:   entryRepo,
	}
}

// BalanceAsOf returns the nature-signed balance of an account as of cutoff.
// A nil cutoff (a period with no predecessor) yields zero.
//
// The sum is scoped to the period governing the cutoff date: that period's
// opening entry already restates all earlier history, so summing across
// period boundaries would count carried balances twice.
func (uc *BalanceUseCase) BalanceAsOf(ctx context.Context, accountCode string, cutoff *time.Time) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByCode(ctx, accountCode)
	if err != nil {
		return decimal.Zero, err
	}

	if cutoff == nil {
		return decimal.Zero, nil
	}

	var from time.Time

	governing, err := uc.periodRepo.LatestStartingOnOrBefore(ctx, *cutoff)
	switch {
	case err == nil:
		from = governing.Start
	case !errors.Is(err, domain.ErrPeriodNotFound):
		return decimal.Zero, err
	}

	sums, err := uc.entryRepo.SumByAccountRange(ctx, account.ID, from, *cutoff, false)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.RoundAmount(account.Nature.SignedBalance(sums.Debit, sums.Credit)), nil
}

// BalanceForPeriod returns the nature-signed balance restricted to entries
// within the period's date range. excludeSystem drops closing/opening entries
// so pre-closing operating results are not double-counted.
func (uc *BalanceUseCase) BalanceForPeriod(ctx context.Context, accountCode, periodID string, excludeSystem bool) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByCode(ctx, accountCode)
	if err != nil {
		return decimal.Zero, err
	}

	period, err := uc.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return decimal.Zero, err
	}

	sums, err := uc.entryRepo.SumByAccountRange(ctx, account.ID, period.Start, period.End, excludeSystem)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.RoundAmount(account.Nature.SignedBalance(sums.Debit, sums.Credit)), nil
}
