package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Chart of accounts errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateCode      = errors.New("account code already exists")
	ErrInvalidHierarchy   = errors.New("invalid account hierarchy")
	ErrAccountNotPostable = errors.New("account is not postable")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrHasActiveChildren  = errors.New("account has active children")
	ErrNonZeroBalance     = errors.New("account has a non-zero balance")

	// Period errors
	ErrPeriodNotFound         = errors.New("period not found")
	ErrDuplicatePeriodName    = errors.New("period name already exists")
	ErrInvalidDateRange       = errors.New("period start date is after end date")
	ErrOverlappingPeriod      = errors.New("period date range overlaps an existing period")
	ErrPeriodAlreadyOpen      = errors.New("another period is already open")
	ErrAlreadyClosed          = errors.New("period is already closed")
	ErrOpeningAlreadyRecorded = errors.New("opening entry already recorded for period")

	// Posting errors
	ErrEntryNotFound  = errors.New("journal entry not found")
	ErrPeriodIsClosed = errors.New("period is closed")
	ErrDateOutOfRange = errors.New("entry date is outside the period range")
	ErrEmptyEntry     = errors.New("entry has no line items")
	ErrUnbalanced     = errors.New("entry debits do not equal credits")
	ErrNegativeAmount = errors.New("line amounts must not be negative")
	ErrDebitAndCredit = errors.New("line may not carry both a debit and a credit")

	// Closing/opening errors. Missing transfer accounts and out-of-balance
	// system entries indicate chart misconfiguration or a logic defect, not
	// recoverable input.
	ErrMissingEarningsAccount  = errors.New("current-year earnings account is missing or not postable")
	ErrMissingTransferAccounts = errors.New("earnings or retained-earnings transfer account is missing")
	ErrPriorNotClosed          = errors.New("prior period is not closed")
	ErrPriorNotEarlier         = errors.New("prior period does not end before the new period starts")
	ErrClosingOutOfBalance     = errors.New("closing entry does not balance by construction")
	ErrOpeningOutOfBalance     = errors.New("opening entry does not balance by construction")

	// Authentication errors
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

// UnbalancedError carries the computed totals so callers can correct their
// input. It matches ErrUnbalanced under errors.Is.
type UnbalancedError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("entry debits do not equal credits (debit: %s, credit: %s)",
		e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

// Unwrap makes UnbalancedError match the ErrUnbalanced sentinel via errors.Is.
func (e *UnbalancedError) Unwrap() error {
	return ErrUnbalanced
}
