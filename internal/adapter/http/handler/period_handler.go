package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/adapter/http/middleware"
	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// PeriodService defines the behavior needed by PeriodHandler.
type PeriodService interface {
	CreatePeriod(ctx context.Context, actor *domain.User, input usecase.CreatePeriodInput) (*domain.Period, []string, error)
	ClosePeriod(ctx context.Context, actor *domain.User, periodID string) (*domain.JournalEntry, error)
	GetPeriod(ctx context.Context, id string) (*domain.Period, error)
	OpenPeriod(ctx context.Context) (*domain.Period, error)
	ListPeriods(ctx context.Context, input usecase.ListPeriodsInput) ([]*domain.Period, error)
}

// ReportingService defines the report builds needed by PeriodHandler.
type ReportingService interface {
	TrialBalanceForPeriod(ctx context.Context, periodID string) (*usecase.TrialBalance, error)
	IncomeStatementForPeriod(ctx context.Context, periodID string) (*usecase.IncomeStatement, error)
	BalanceSheetAsOfPeriodEnd(ctx context.Context, periodID string) (*usecase.BalanceSheet, error)
}

// PeriodHandler handles accounting period HTTP requests.
type PeriodHandler struct {
	periodUC    PeriodService
	reportingUC ReportingService
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodUC PeriodService, reportingUC ReportingService) *PeriodHandler {
	return &PeriodHandler{periodUC: periodUC, reportingUC: reportingUC}
}

// Create opens a new accounting period. When the new period follows a closed
// one, its opening entry is generated as part of the same call; a failed
// carry-forward still reports the created period.
func (h *PeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor, _ := middleware.GetUserFromContext(r.Context())

	period, warnings, err := h.periodUC.CreatePeriod(r.Context(), actor, req.ToUseCaseInput())
	if err != nil {
		if period != nil {
			// Period exists but the opening entry failed. 207 keeps the
			// partial result visible instead of hiding it behind an error.
			writeJSON(w, http.StatusMultiStatus, dto.CreatePeriodResponse{
				Period:   dto.PeriodFromDomain(period),
				Warnings: append(warnings, err.Error()),
			})

			return
		}

		writeError(w, mapDomainError(err), "failed to create period", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CreatePeriodResponse{
		Period:   dto.PeriodFromDomain(period),
		Warnings: warnings,
	})
}

// Get retrieves a period by ID.
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing period ID", "")
		return
	}

	period, err := h.periodUC.GetPeriod(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// GetOpen returns the currently open period.
func (h *PeriodHandler) GetOpen(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodUC.OpenPeriod(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrPeriodNotFound) {
			writeError(w, http.StatusNotFound, "no open period", "")
			return
		}

		writeError(w, http.StatusInternalServerError, "failed to get open period", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// List lists periods ordered by start date descending.
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	periods, err := h.periodUC.ListPeriods(r.Context(), usecase.ListPeriodsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list periods", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPeriodsResponse{
		Periods: dto.PeriodsFromDomain(periods),
		Total:   int64(len(periods)),
	})
}

// Close closes a period, returning the generated closing entry.
func (h *PeriodHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing period ID", "")
		return
	}

	actor, _ := middleware.GetUserFromContext(r.Context())

	entry, err := h.periodUC.ClosePeriod(r.Context(), actor, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to close period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// TrialBalance builds the period's trial balance report.
func (h *PeriodHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing period ID", "")
		return
	}

	report, err := h.reportingUC.TrialBalanceForPeriod(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build trial balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromUseCase(report))
}

// IncomeStatement builds the period's income statement report.
func (h *PeriodHandler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing period ID", "")
		return
	}

	report, err := h.reportingUC.IncomeStatementForPeriod(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build income statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IncomeStatementFromUseCase(report))
}

// BalanceSheet builds the balance sheet as of the period's end date.
func (h *PeriodHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing period ID", "")
		return
	}

	report, err := h.reportingUC.BalanceSheetAsOfPeriodEnd(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build balance sheet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceSheetFromUseCase(report))
}
