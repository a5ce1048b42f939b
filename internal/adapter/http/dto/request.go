package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	ParentCode     *string `json:"parent_code,omitempty"`
	Classification string  `json:"classification"`
	Nature         string  `json:"nature"`
	Postable       bool    `json:"postable"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Code:           r.Code,
		Name:           r.Name,
		ParentCode:     r.ParentCode,
		Classification: domain.Classification(r.Classification),
		Nature:         domain.Nature(r.Nature),
		Postable:       r.Postable,
	}
}

// CreatePeriodRequest represents a request to open an accounting period.
type CreatePeriodRequest struct {
	Name  string `json:"name"`
	Start Date   `json:"start"`
	End   Date   `json:"end"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePeriodRequest) ToUseCaseInput() usecase.CreatePeriodInput {
	return usecase.CreatePeriodInput{
		Name:  r.Name,
		Start: r.Start.Time,
		End:   r.End.Time,
	}
}

// EntryLineRequest is a single debit or credit of a new journal entry.
type EntryLineRequest struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// PostEntryRequest represents a request to post a journal entry.
type PostEntryRequest struct {
	PeriodID    string             `json:"period_id"`
	Date        Date               `json:"date"`
	Description string             `json:"description"`
	Lines       []EntryLineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *PostEntryRequest) ToUseCaseInput() usecase.PostEntryInput {
	lines := make([]usecase.PostLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.PostLineInput{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}

	return usecase.PostEntryInput{
		PeriodID:    r.PeriodID,
		Date:        r.Date.Time,
		Description: r.Description,
		Lines:       lines,
	}
}
