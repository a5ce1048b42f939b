package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestLineItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		debit   string
		credit  string
		wantErr error
	}{
		{name: "debit only", debit: "100.00", credit: "0", wantErr: nil},
		{name: "credit only", debit: "0", credit: "42.50", wantErr: nil},
		{name: "both zero", debit: "0", credit: "0", wantErr: nil},
		{name: "both sides", debit: "10.00", credit: "10.00", wantErr: ErrDebitAndCredit},
		{name: "negative debit", debit: "-5.00", credit: "0", wantErr: ErrNegativeAmount},
		{name: "negative credit", debit: "0", credit: "-0.01", wantErr: ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := &LineItem{Debit: d(tt.debit), Credit: d(tt.credit)}

			err := line.Validate()

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestJournalEntry_IsBalanced(t *testing.T) {
	tests := []struct {
		name  string
		lines []LineItem
		want  bool
	}{
		{
			name: "balanced two lines",
			lines: []LineItem{
				{Debit: d("1000.00")},
				{Credit: d("1000.00")},
			},
			want: true,
		},
		{
			name: "balanced across many lines",
			lines: []LineItem{
				{Debit: d("50000.00")},
				{Debit: d("15000.00")},
				{Credit: d("20000.00")},
				{Credit: d("45000.00")},
			},
			want: true,
		},
		{
			name: "unbalanced",
			lines: []LineItem{
				{Debit: d("50.00")},
				{Credit: d("40.00")},
			},
			want: false,
		},
		{
			name:  "no lines",
			lines: nil,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &JournalEntry{Lines: tt.lines}

			if got := e.IsBalanced(); got != tt.want {
				t.Errorf("IsBalanced() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJournalEntry_IsEmpty(t *testing.T) {
	empty := &JournalEntry{Lines: []LineItem{{Debit: decimal.Zero, Credit: decimal.Zero}}}
	if !empty.IsEmpty() {
		t.Error("expected all-zero entry to be empty")
	}

	nonEmpty := &JournalEntry{Lines: []LineItem{{Debit: d("0.01")}}}
	if nonEmpty.IsEmpty() {
		t.Error("expected entry with value to be non-empty")
	}
}

func TestUnbalancedError_CarriesTotals(t *testing.T) {
	err := &UnbalancedError{Debits: d("50.00"), Credits: d("40.00")}

	if !errors.Is(err, ErrUnbalanced) {
		t.Error("UnbalancedError should match ErrUnbalanced")
	}

	var ub *UnbalancedError
	if !errors.As(err, &ub) {
		t.Fatal("expected errors.As to extract UnbalancedError")
	}

	if !ub.Debits.Equal(d("50.00")) || !ub.Credits.Equal(d("40.00")) {
		t.Errorf("totals not carried: debit %s credit %s", ub.Debits, ub.Credits)
	}
}
