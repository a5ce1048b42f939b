package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification groups accounts for financial statements.
type Classification string

const (
	ClassAsset       Classification = "asset"
	ClassLiability   Classification = "liability"
	ClassEquity      Classification = "equity"
	ClassRevenue     Classification = "revenue"
	ClassCostOfSales Classification = "cost_of_sales"
	ClassExpense     Classification = "expense"
	ClassMemoOrder   Classification = "memo_order"
)

var validClassifications = map[Classification]bool{
	ClassAsset:       true,
	ClassLiability:   true,
	ClassEquity:      true,
	ClassRevenue:     true,
	ClassCostOfSales: true,
	ClassExpense:     true,
	ClassMemoOrder:   true,
}

// IsValid checks if the classification is known.
func (c Classification) IsValid() bool {
	return validClassifications[c]
}

// IsIncomeStatement reports whether accounts of this classification are zeroed
// out at period close.
func (c Classification) IsIncomeStatement() bool {
	return c == ClassRevenue || c == ClassCostOfSales || c == ClassExpense
}

// IsBalanceSheet reports whether balances of this classification carry forward
// into the next period.
func (c Classification) IsBalanceSheet() bool {
	return c == ClassAsset || c == ClassLiability || c == ClassEquity
}

// Nature is the normal balance side of an account.
type Nature string

const (
	NatureDebit  Nature = "debit"
	NatureCredit Nature = "credit"
)

// IsValid checks if the nature is known.
func (n Nature) IsValid() bool {
	return n == NatureDebit || n == NatureCredit
}

// SignedBalance applies the account nature to raw debit/credit sums:
// debit-normal accounts carry debit minus credit, credit-normal the inverse.
func (n Nature) SignedBalance(debit, credit decimal.Decimal) decimal.Decimal {
	if n == NatureDebit {
		return debit.Sub(credit)
	}

	return credit.Sub(debit)
}

// Account is one node of the chart of accounts. The chart is a tree linked by
// ParentID; only postable leaf accounts receive line items.
type Account struct {
	ID             string
	Code           string
	Name           string
	ParentID       *string
	Classification Classification
	Nature         Nature
	Postable       bool
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Resolvable checks that the account may receive new line items.
func (a *Account) Resolvable() error {
	if !a.Postable {
		return ErrAccountNotPostable
	}

	if !a.Active {
		return ErrAccountInactive
	}

	return nil
}
