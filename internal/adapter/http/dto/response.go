package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ParentID       *string   `json:"parent_id,omitempty"`
	Classification string    `json:"classification"`
	Nature         string    `json:"nature"`
	Postable       bool      `json:"postable"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		ParentID:       a.ParentID,
		Classification: string(a.Classification),
		Nature:         string(a.Nature),
		Postable:       a.Postable,
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// PeriodResponse represents an accounting period in API responses.
type PeriodResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Start          Date      `json:"start"`
	End            Date      `json:"end"`
	State          string    `json:"state"`
	ClosingEntryID *string   `json:"closing_entry_id,omitempty"`
	OpeningEntryID *string   `json:"opening_entry_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PeriodFromDomain converts domain period to response.
func PeriodFromDomain(p *domain.Period) *PeriodResponse {
	return &PeriodResponse{
		ID:             p.ID,
		Name:           p.Name,
		Start:          NewDate(p.Start),
		End:            NewDate(p.End),
		State:          string(p.State),
		ClosingEntryID: p.ClosingEntryID,
		OpeningEntryID: p.OpeningEntryID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// PeriodsFromDomain converts domain periods to responses.
func PeriodsFromDomain(periods []*domain.Period) []*PeriodResponse {
	result := make([]*PeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = PeriodFromDomain(p)
	}
	return result
}

// LineItemResponse represents a journal entry line in API responses.
type LineItemResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID          string             `json:"id"`
	PeriodID    string             `json:"period_id"`
	Sequence    int64              `json:"sequence"`
	Date        Date               `json:"date"`
	Description string             `json:"description"`
	CreatedBy   string             `json:"created_by,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	System      bool               `json:"system"`
	Lines       []LineItemResponse `json:"lines"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.JournalEntry) *EntryResponse {
	lines := make([]LineItemResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = LineItemResponse{
			ID:        l.ID,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
		}
	}

	return &EntryResponse{
		ID:          e.ID,
		PeriodID:    e.PeriodID,
		Sequence:    e.Sequence,
		Date:        NewDate(e.Date),
		Description: e.Description,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		System:      e.System,
		Lines:       lines,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.JournalEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse represents an account balance in API responses.
type BalanceResponse struct {
	AccountCode string          `json:"account_code"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceRowResponse is one row of a trial balance report.
type TrialBalanceRowResponse struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents a trial balance report.
type TrialBalanceResponse struct {
	PeriodName  string                    `json:"period_name"`
	Rows        []TrialBalanceRowResponse `json:"rows"`
	TotalDebit  decimal.Decimal           `json:"total_debit"`
	TotalCredit decimal.Decimal           `json:"total_credit"`
}

// TrialBalanceFromUseCase converts a trial balance report to a response.
func TrialBalanceFromUseCase(tb *usecase.TrialBalance) *TrialBalanceResponse {
	rows := make([]TrialBalanceRowResponse, len(tb.Rows))
	for i, r := range tb.Rows {
		rows[i] = TrialBalanceRowResponse{
			AccountCode: r.AccountCode,
			AccountName: r.AccountName,
			Debit:       r.Debit,
			Credit:      r.Credit,
		}
	}

	return &TrialBalanceResponse{
		PeriodName:  tb.PeriodName,
		Rows:        rows,
		TotalDebit:  tb.TotalDebit,
		TotalCredit: tb.TotalCredit,
	}
}

// ReportLineResponse is one account line of a sectioned report.
type ReportLineResponse struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// IncomeStatementResponse represents an income statement report.
type IncomeStatementResponse struct {
	PeriodName  string               `json:"period_name"`
	Revenue     []ReportLineResponse `json:"revenue"`
	CostOfSales []ReportLineResponse `json:"cost_of_sales"`
	Expenses    []ReportLineResponse `json:"expenses"`
	NetIncome   decimal.Decimal      `json:"net_income"`
}

// IncomeStatementFromUseCase converts an income statement report to a response.
func IncomeStatementFromUseCase(is *usecase.IncomeStatement) *IncomeStatementResponse {
	return &IncomeStatementResponse{
		PeriodName:  is.PeriodName,
		Revenue:     reportLines(is.Revenue),
		CostOfSales: reportLines(is.CostOfSales),
		Expenses:    reportLines(is.Expenses),
		NetIncome:   is.NetIncome,
	}
}

// BalanceSheetResponse represents a balance sheet report.
type BalanceSheetResponse struct {
	PeriodName       string               `json:"period_name"`
	Assets           []ReportLineResponse `json:"assets"`
	Liabilities      []ReportLineResponse `json:"liabilities"`
	Equity           []ReportLineResponse `json:"equity"`
	TotalAssets      decimal.Decimal      `json:"total_assets"`
	TotalLiabilities decimal.Decimal      `json:"total_liabilities"`
	TotalEquity      decimal.Decimal      `json:"total_equity"`
}

// BalanceSheetFromUseCase converts a balance sheet report to a response.
func BalanceSheetFromUseCase(bs *usecase.BalanceSheet) *BalanceSheetResponse {
	return &BalanceSheetResponse{
		PeriodName:       bs.PeriodName,
		Assets:           reportLines(bs.Assets),
		Liabilities:      reportLines(bs.Liabilities),
		Equity:           reportLines(bs.Equity),
		TotalAssets:      bs.TotalAssets,
		TotalLiabilities: bs.TotalLiabilities,
		TotalEquity:      bs.TotalEquity,
	}
}

func reportLines(lines []usecase.ReportLine) []ReportLineResponse {
	result := make([]ReportLineResponse, len(lines))
	for i, l := range lines {
		result[i] = ReportLineResponse{
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Amount:      l.Amount,
		}
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ListPeriodsResponse wraps a period listing.
type ListPeriodsResponse struct {
	Periods []*PeriodResponse `json:"periods"`
	Total   int64             `json:"total"`
}

// ListEntriesResponse wraps a journal listing.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// CreatePeriodResponse pairs a new period with carry-forward warnings.
type CreatePeriodResponse struct {
	Period   *PeriodResponse `json:"period"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
