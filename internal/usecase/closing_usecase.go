package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/metrics"
)

// TransferAccounts designates the two equity accounts the closing and
// opening engines move results through.
type TransferAccounts struct {
	// EarningsCode is the current-year earnings account net income is posted
	// to at close. It is reset by every opening entry.
	EarningsCode string
	// RetainedCode is the retained-earnings account prior results accumulate
	// in across periods.
	RetainedCode string
}

// ClosingUseCase orchestrates period closing and the derivation of the next
// period's opening entry.
type ClosingUseCase struct {
	poster

	txManager  TransactionManager
	periodRepo PeriodRepository
	transfer   TransferAccounts
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClosingUseCase creates a new ClosingUseCase.
func NewClosingUseCase(
	txManager TransactionManager,
	periodRepo PeriodRepository,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	transfer TransferAccounts,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *ClosingUseCase {
	if transfer.EarningsCode == "" {
		transfer.EarningsCode = DefaultEarningsAccountCode
	}

	if transfer.RetainedCode == "" {
		transfer.RetainedCode = DefaultRetainedAccountCode
	}

	return &ClosingUseCase{
		poster: poster{
			accountRepo: accountRepo,
			entryRepo:   entryRepo,
			idGen:       idGen,
		},
		txManager:  txManager,
		periodRepo: periodRepo,
		transfer:   transfer,
		retrier:    retrier,
		metrics:    metrics,
		logger:     logger,
	}
}

var incomeStatementClasses = []domain.Classification{
	domain.ClassRevenue,
	domain.ClassCostOfSales,
	domain.ClassExpense,
}

var balanceSheetClasses = []domain.Classification{
	domain.ClassAsset,
	domain.ClassLiability,
	domain.ClassEquity,
}

// ClosePeriod zeroes out the period's income-statement balances into the
// current-year earnings account, posts the resulting system entry into the
// period, and seals the period. The whole operation is one transaction:
// either all lines post and the period closes, or nothing changes.
func (uc *ClosingUseCase) ClosePeriod(ctx context.Context, actor *domain.User, periodID string) (*domain.JournalEntry, error) {
	if actor != nil && !actor.Role.CanManagePeriods() {
		return nil, domain.ErrInsufficientRole
	}

	start := time.Now()

	createdBy := ""
	if actor != nil {
		createdBy = actor.ID
	}

	var (
		entry     *domain.JournalEntry
		period    *domain.Period
		netIncome decimal.Decimal
	)

	err := withRetry(ctx, uc.retrier, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		// Lock the period so the state re-check holds until the terminal
		// transition commits; a concurrent close fails here.
		period, err = uc.periodRepo.GetByIDForUpdate(ctx, tx, periodID)
		if err != nil {
			return err
		}

		if period.State == domain.PeriodClosed {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyClosed, period.Name)
		}

		earnings, err := uc.accountRepo.GetByCode(ctx, uc.transfer.EarningsCode)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrMissingEarningsAccount, uc.transfer.EarningsCode)
			}

			return err
		}

		if err := earnings.Resolvable(); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrMissingEarningsAccount, uc.transfer.EarningsCode)
		}

		accounts, err := uc.accountRepo.ListPostableByClassification(ctx, incomeStatementClasses)
		if err != nil {
			return err
		}

		// Net income = revenue - cost of sales - expenses, each nature-signed
		// and restricted to the period, excluding earlier system entries so the
		// figure reflects operating activity only.
		netIncome = decimal.Zero

		var lines []domain.LineItem

		for _, account := range accounts {
			sums, err := uc.entryRepo.SumByAccountRangeTx(ctx, tx, account.ID, period.Start, period.End, true)
			if err != nil {
				return err
			}

			signed := account.Nature.SignedBalance(sums.Debit, sums.Credit)
			if account.Classification == domain.ClassRevenue {
				netIncome = netIncome.Add(signed)
			} else {
				netIncome = netIncome.Sub(signed)
			}

			// One offsetting line per account with movement, on the side that
			// brings its raw net to zero.
			rawNet := sums.Debit.Sub(sums.Credit)
			switch {
			case rawNet.IsPositive():
				lines = append(lines, domain.LineItem{AccountID: account.ID, Credit: rawNet})
			case rawNet.IsNegative():
				lines = append(lines, domain.LineItem{AccountID: account.ID, Debit: rawNet.Neg()})
			}
		}

		netIncome = domain.RoundAmount(netIncome)

		switch {
		case netIncome.IsPositive():
			lines = append(lines, domain.LineItem{AccountID: earnings.ID, Credit: netIncome})
		case netIncome.IsNegative():
			lines = append(lines, domain.LineItem{AccountID: earnings.ID, Debit: netIncome.Neg()})
		}

		entry, _, err = uc.post(ctx, tx, period, postSpec{
			date:        period.End,
			description: fmt.Sprintf("Closing entry for period %s", period.Name),
			createdBy:   createdBy,
			system:      true,
			lines:       lines,
		})
		if err != nil {
			// The closing entry balances by construction from balanced source
			// entries; an imbalance here is a logic defect, not bad input.
			if errors.Is(err, domain.ErrUnbalanced) {
				return fmt.Errorf("%w: %v", domain.ErrClosingOutOfBalance, err)
			}

			return err
		}

		if err := uc.periodRepo.Close(ctx, tx, period.ID, entry.ID, time.Now().UTC()); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsClosed.Inc()
		uc.metrics.EntriesSystem.Inc()
		uc.metrics.ClosingLatency.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("period", period.Name).
		Str("closing_entry", entry.ID).
		Str("net_income", netIncome.StringFixed(2)).
		Msg("period closed")

	return entry, nil
}

// GenerateOpeningEntry derives the opening entry for newPeriod from the final
// balance-sheet balances of prior (a closed period ending before newPeriod
// starts), folding current-year earnings into retained earnings. The entry is
// posted system-generated, dated at newPeriod's start.
func (uc *ClosingUseCase) GenerateOpeningEntry(ctx context.Context, actor *domain.User, newPeriodID, priorPeriodID string) (*domain.JournalEntry, []string, error) {
	if actor != nil && !actor.Role.CanManagePeriods() {
		return nil, nil, domain.ErrInsufficientRole
	}

	earnings, err := uc.accountRepo.GetByCode(ctx, uc.transfer.EarningsCode)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrMissingTransferAccounts, uc.transfer.EarningsCode)
	}

	retained, err := uc.accountRepo.GetByCode(ctx, uc.transfer.RetainedCode)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrMissingTransferAccounts, uc.transfer.RetainedCode)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	newPeriod, err := uc.periodRepo.GetByIDForUpdate(ctx, tx, newPeriodID)
	if err != nil {
		return nil, nil, err
	}

	prior, err := uc.periodRepo.GetByID(ctx, priorPeriodID)
	if err != nil {
		return nil, nil, err
	}

	// Only a sealed predecessor can seed an opening entry, and it must lie
	// strictly before the period being opened.
	if prior.State != domain.PeriodClosed {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrPriorNotClosed, prior.Name)
	}

	if !prior.End.Before(newPeriod.Start) {
		return nil, nil, fmt.Errorf("%w: %s ends %s, %s starts %s", domain.ErrPriorNotEarlier,
			prior.Name, prior.End.Format("2006-01-02"), newPeriod.Name, newPeriod.Start.Format("2006-01-02"))
	}

	// Balances are summed over the prior period only. Its own opening entry
	// already restates all earlier history, so widening the window would count
	// every carried balance twice.
	//
	// The carried-forward retained-earnings figure folds the post-closing
	// current-year earnings balance into retained earnings, so the earnings
	// account starts the new period at zero.
	carried, err := uc.signedBalanceForPeriod(ctx, tx, earnings, prior)
	if err != nil {
		return nil, nil, err
	}

	retainedBal, err := uc.signedBalanceForPeriod(ctx, tx, retained, prior)
	if err != nil {
		return nil, nil, err
	}

	carried = carried.Add(retainedBal)

	accounts, err := uc.accountRepo.ListPostableByClassification(ctx, balanceSheetClasses)
	if err != nil {
		return nil, nil, err
	}

	var (
		lines    []domain.LineItem
		warnings []string
	)

	for _, account := range accounts {
		if account.ID == earnings.ID || account.ID == retained.ID {
			continue
		}

		// Never resurrect postings against a deactivated account; the carry
		// is skipped, not failed.
		if !account.Active {
			warnings = append(warnings, fmt.Sprintf("skipping inactive account %s %s", account.Code, account.Name))
			continue
		}

		balance, err := uc.signedBalanceForPeriod(ctx, tx, account, prior)
		if err != nil {
			return nil, nil, err
		}

		if balance.IsZero() {
			continue
		}

		lines = append(lines, naturalLine(account, balance))
	}

	if !carried.IsZero() {
		lines = append(lines, naturalLine(retained, carried))
	}

	createdBy := ""
	if actor != nil {
		createdBy = actor.ID
	}

	// An opening entry must balance by construction from balanced closing
	// data. If it does not, it is persisted anyway so the discrepancy stays
	// visible for audit, and the operation reports failure.
	entry, postWarnings, err := uc.post(ctx, tx, newPeriod, postSpec{
		date:            newPeriod.Start,
		description:     fmt.Sprintf("Opening entry from period %s", prior.Name),
		createdBy:       createdBy,
		system:          true,
		allowUnbalanced: true,
		lines:           lines,
	})
	if err != nil {
		return nil, nil, err
	}

	warnings = append(warnings, postWarnings...)

	if err := uc.periodRepo.RecordOpeningEntry(ctx, tx, prior.ID, entry.ID, time.Now().UTC()); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesSystem.Inc()
	}

	uc.logger.Info().
		Str("period", newPeriod.Name).
		Str("prior_period", prior.Name).
		Str("opening_entry", entry.ID).
		Msg("opening entry generated")

	if !entry.IsBalanced() {
		uc.logger.Error().
			Str("opening_entry", entry.ID).
			Str("debit", entry.TotalDebit().StringFixed(2)).
			Str("credit", entry.TotalCredit().StringFixed(2)).
			Msg("opening entry out of balance, persisted for audit")

		return entry, warnings, fmt.Errorf("%w (debit: %s, credit: %s)", domain.ErrOpeningOutOfBalance,
			entry.TotalDebit().StringFixed(2), entry.TotalCredit().StringFixed(2))
	}

	return entry, warnings, nil
}

func (uc *ClosingUseCase) signedBalanceForPeriod(ctx context.Context, tx Transaction, account *domain.Account, period *domain.Period) (decimal.Decimal, error) {
	sums, err := uc.entryRepo.SumByAccountRangeTx(ctx, tx, account.ID, period.Start, period.End, false)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.RoundAmount(account.Nature.SignedBalance(sums.Debit, sums.Credit)), nil
}

// naturalLine restores a balance on the account's natural side; a balance on
// the wrong side for its nature is still carried, on the opposite line type.
func naturalLine(account *domain.Account, balance decimal.Decimal) domain.LineItem {
	line := domain.LineItem{AccountID: account.ID}

	if account.Nature == domain.NatureDebit {
		if balance.IsPositive() {
			line.Debit = balance
		} else {
			line.Credit = balance.Neg()
		}

		return line
	}

	if balance.IsPositive() {
		line.Credit = balance
	} else {
		line.Debit = balance.Neg()
	}

	return line
}
