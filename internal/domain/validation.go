package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountCode = errors.New("invalid account code")
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidPeriodName  = errors.New("invalid period name")
	ErrTooManyDecimals    = errors.New("amount carries more than two decimal places")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MaxPeriodNameLength  = 100
	MaxDescriptionLength = 2000

	// CurrencyPlaces is the fixed-point scale for all monetary amounts.
	CurrencyPlaces = 2
)

// Account codes are hierarchical by convention, e.g. "113" or "121.01".
var accountCodeRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// ValidateAccountCode validates the account code format.
func ValidateAccountCode(code string) error {
	code = strings.TrimSpace(code)

	if code == "" || len(code) > 20 {
		return fmt.Errorf("%w: must be 1-20 characters", ErrInvalidAccountCode)
	}

	if !accountCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: %q is not a dotted numeric code", ErrInvalidAccountCode, code)
	}

	return nil
}

// ValidateAccountName validates an account display name.
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidatePeriodName validates a period name.
func ValidatePeriodName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidPeriodName)
	}

	if len(name) > MaxPeriodNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidPeriodName, MaxPeriodNameLength)
	}

	return nil
}

// ValidateAmount checks that an amount is non-negative and representable with
// two decimal places. Amounts are fixed-point decimals, never floats, so that
// aggregation never drifts.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	if amount.Exponent() < -CurrencyPlaces && !amount.Equal(amount.Truncate(CurrencyPlaces)) {
		return fmt.Errorf("%w: %s", ErrTooManyDecimals, amount.String())
	}

	return nil
}

// RoundAmount quantizes a computed amount to currency precision, rounding
// half away from zero.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPlaces)
}
