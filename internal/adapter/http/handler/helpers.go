package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrPeriodNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateCode),
		errors.Is(err, domain.ErrDuplicatePeriodName),
		errors.Is(err, domain.ErrOverlappingPeriod),
		errors.Is(err, domain.ErrPeriodAlreadyOpen),
		errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrOpeningAlreadyRecorded),
		errors.Is(err, domain.ErrPriorNotClosed),
		errors.Is(err, domain.ErrPriorNotEarlier),
		errors.Is(err, domain.ErrHasActiveChildren),
		errors.Is(err, domain.ErrNonZeroBalance):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAccountCode),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidPeriodName),
		errors.Is(err, domain.ErrInvalidHierarchy),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrAccountNotPostable),
		errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrPeriodIsClosed),
		errors.Is(err, domain.ErrDateOutOfRange),
		errors.Is(err, domain.ErrEmptyEntry),
		errors.Is(err, domain.ErrUnbalanced),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrDebitAndCredit),
		errors.Is(err, domain.ErrTooManyDecimals):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingEarningsAccount),
		errors.Is(err, domain.ErrMissingTransferAccounts):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
