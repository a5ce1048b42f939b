package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/adapter/http/middleware"
	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, actor *domain.User, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, code string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	DeactivateAccount(ctx context.Context, actor *domain.User, code string) error
}

// BalanceService defines the balance reads needed by AccountHandler.
type BalanceService interface {
	BalanceAsOf(ctx context.Context, accountCode string, cutoff *time.Time) (decimal.Decimal, error)
	BalanceForPeriod(ctx context.Context, accountCode, periodID string, excludeSystem bool) (decimal.Decimal, error)
}

// AccountHandler handles chart-of-accounts HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	balanceUC BalanceService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, balanceUC BalanceService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, balanceUC: balanceUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor, _ := middleware.GetUserFromContext(r.Context())

	account, err := h.accountUC.CreateAccount(r.Context(), actor, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by code.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), code)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the chart of accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 100)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Deactivate soft-deletes an account.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	actor, _ := middleware.GetUserFromContext(r.Context())

	if err := h.accountUC.DeactivateAccount(r.Context(), actor, code); err != nil {
		writeError(w, mapDomainError(err), "failed to deactivate account", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Balance returns an account's nature-signed balance. With period_id the
// balance is restricted to the period's date range; otherwise as_of gives a
// cumulative cutoff date.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	var (
		balance decimal.Decimal
		err     error
	)

	if periodID := r.URL.Query().Get("period_id"); periodID != "" {
		excludeSystem := r.URL.Query().Get("exclude_system") == "true"
		balance, err = h.balanceUC.BalanceForPeriod(r.Context(), code, periodID, excludeSystem)
	} else {
		cutoff, perr := parseCutoff(r.URL.Query().Get("as_of"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of date", perr.Error())
			return
		}

		balance, err = h.balanceUC.BalanceAsOf(r.Context(), code, cutoff)
	}

	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountCode: code,
		Balance:     balance,
	})
}

// parseCutoff interprets an empty as_of as "now".
func parseCutoff(s string) (*time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return &now, nil
	}

	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
