package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single debit or credit against one postable account. Exactly
// one of Debit/Credit is nonzero; amounts are fixed-point with two decimal
// places.
type LineItem struct {
	ID        string
	EntryID   string
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Validate checks the line amounts.
func (l *LineItem) Validate() error {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return ErrNegativeAmount
	}

	if l.Debit.IsPositive() && l.Credit.IsPositive() {
		return ErrDebitAndCredit
	}

	return nil
}

// JournalEntry is an atomic, balanced transaction: a header plus its line
// items. Sequence is 1-based and gapless within the owning period. System
// entries are generated by the closing and opening engines and are immutable.
type JournalEntry struct {
	ID          string
	PeriodID    string
	Sequence    int64
	Date        time.Time
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	System      bool
	Lines       []LineItem
}

// TotalDebit sums the debit side of all lines.
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}

	return total
}

// TotalCredit sums the credit side of all lines.
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}

	return total
}

// IsBalanced reports whether debits equal credits exactly. Amounts are
// fixed-point, so equality carries no epsilon.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit().Equal(e.TotalCredit())
}

// IsEmpty reports whether the entry moves no value at all.
func (e *JournalEntry) IsEmpty() bool {
	return e.TotalDebit().IsZero() && e.TotalCredit().IsZero()
}
