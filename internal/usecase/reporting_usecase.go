package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
)

// ReportingUseCase builds the standard financial reports. Reports are pure
// reads over the line-item set; every figure is re-derived on request.
type ReportingUseCase struct {
	accountRepo AccountRepository
	periodRepo  PeriodRepository
	entryRepo   EntryRepository
}

// NewReportingUseCase creates a new ReportingUseCase.
func NewReportingUseCase(accountRepo AccountRepository, periodRepo PeriodRepository, entryRepo EntryRepository) *ReportingUseCase {
	return &ReportingUseCase{
		accountRepo: accountRepo,
		periodRepo:  periodRepo,
		entryRepo:   entryRepo,
	}
}

// TrialBalanceRow is one account's totals in a trial balance.
type TrialBalanceRow struct {
	AccountCode string
	AccountName string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// TrialBalance holds per-account debit/credit totals for a period plus the
// grand totals. For a ledger of balanced entries the totals always match.
type TrialBalance struct {
	PeriodName  string
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// TrialBalanceForPeriod lists raw debit and credit totals per postable account
// with movement in the period, system entries included.
func (uc *ReportingUseCase) TrialBalanceForPeriod(ctx context.Context, periodID string) (*TrialBalance, error) {
	period, err := uc.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.accountRepo.ListPostableByClassification(ctx, allClasses)
	if err != nil {
		return nil, err
	}

	report := &TrialBalance{
		PeriodName:  period.Name,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, account := range accounts {
		sums, err := uc.entryRepo.SumByAccountRange(ctx, account.ID, period.Start, period.End, false)
		if err != nil {
			return nil, err
		}

		if sums.Debit.IsZero() && sums.Credit.IsZero() {
			continue
		}

		report.Rows = append(report.Rows, TrialBalanceRow{
			AccountCode: account.Code,
			AccountName: account.Name,
			Debit:       domain.RoundAmount(sums.Debit),
			Credit:      domain.RoundAmount(sums.Credit),
		})

		report.TotalDebit = report.TotalDebit.Add(sums.Debit)
		report.TotalCredit = report.TotalCredit.Add(sums.Credit)
	}

	report.TotalDebit = domain.RoundAmount(report.TotalDebit)
	report.TotalCredit = domain.RoundAmount(report.TotalCredit)

	return report, nil
}

// ReportLine is one account's nature-signed balance in a sectioned report.
type ReportLine struct {
	AccountCode string
	AccountName string
	Amount      decimal.Decimal
}

// IncomeStatement presents the period's operating result by section.
type IncomeStatement struct {
	PeriodName  string
	Revenue     []ReportLine
	CostOfSales []ReportLine
	Expenses    []ReportLine
	NetIncome   decimal.Decimal
}

// IncomeStatementForPeriod computes revenue less cost of sales less expenses
// for the period, system entries excluded so a closed period reports the same
// result it reported while open.
func (uc *ReportingUseCase) IncomeStatementForPeriod(ctx context.Context, periodID string) (*IncomeStatement, error) {
	period, err := uc.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.accountRepo.ListPostableByClassification(ctx, incomeStatementClasses)
	if err != nil {
		return nil, err
	}

	report := &IncomeStatement{
		PeriodName: period.Name,
		NetIncome:  decimal.Zero,
	}

	for _, account := range accounts {
		sums, err := uc.entryRepo.SumByAccountRange(ctx, account.ID, period.Start, period.End, true)
		if err != nil {
			return nil, err
		}

		signed := domain.RoundAmount(account.Nature.SignedBalance(sums.Debit, sums.Credit))
		if signed.IsZero() {
			continue
		}

		line := ReportLine{
			AccountCode: account.Code,
			AccountName: account.Name,
			Amount:      signed,
		}

		switch account.Classification {
		case domain.ClassRevenue:
			report.Revenue = append(report.Revenue, line)
			report.NetIncome = report.NetIncome.Add(signed)
		case domain.ClassCostOfSales:
			report.CostOfSales = append(report.CostOfSales, line)
			report.NetIncome = report.NetIncome.Sub(signed)
		case domain.ClassExpense:
			report.Expenses = append(report.Expenses, line)
			report.NetIncome = report.NetIncome.Sub(signed)
		}
	}

	report.NetIncome = domain.RoundAmount(report.NetIncome)

	return report, nil
}

// BalanceSheet presents financial position as of a period's end.
type BalanceSheet struct {
	PeriodName       string
	Assets           []ReportLine
	Liabilities      []ReportLine
	Equity           []ReportLine
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
}

// BalanceSheetAsOfPeriodEnd computes nature-signed balances of all
// balance-sheet accounts through the period's end date, system entries
// included so closed-period figures reflect closing and carry-forward. The
// sum covers the period only; its opening entry carries all prior history.
func (uc *ReportingUseCase) BalanceSheetAsOfPeriodEnd(ctx context.Context, periodID string) (*BalanceSheet, error) {
	period, err := uc.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.accountRepo.ListPostableByClassification(ctx, balanceSheetClasses)
	if err != nil {
		return nil, err
	}

	report := &BalanceSheet{
		PeriodName:       period.Name,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	for _, account := range accounts {
		sums, err := uc.entryRepo.SumByAccountRange(ctx, account.ID, period.Start, period.End, false)
		if err != nil {
			return nil, err
		}

		signed := domain.RoundAmount(account.Nature.SignedBalance(sums.Debit, sums.Credit))
		if signed.IsZero() {
			continue
		}

		line := ReportLine{
			AccountCode: account.Code,
			AccountName: account.Name,
			Amount:      signed,
		}

		switch account.Classification {
		case domain.ClassAsset:
			report.Assets = append(report.Assets, line)
			report.TotalAssets = report.TotalAssets.Add(signed)
		case domain.ClassLiability:
			report.Liabilities = append(report.Liabilities, line)
			report.TotalLiabilities = report.TotalLiabilities.Add(signed)
		case domain.ClassEquity:
			report.Equity = append(report.Equity, line)
			report.TotalEquity = report.TotalEquity.Add(signed)
		}
	}

	report.TotalAssets = domain.RoundAmount(report.TotalAssets)
	report.TotalLiabilities = domain.RoundAmount(report.TotalLiabilities)
	report.TotalEquity = domain.RoundAmount(report.TotalEquity)

	return report, nil
}

var allClasses = []domain.Classification{
	domain.ClassAsset,
	domain.ClassLiability,
	domain.ClassEquity,
	domain.ClassRevenue,
	domain.ClassCostOfSales,
	domain.ClassExpense,
	domain.ClassMemoOrder,
}
