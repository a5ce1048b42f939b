package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/metrics"
)

// PeriodUseCase handles accounting period lifecycle management.
type PeriodUseCase struct {
	txManager  TransactionManager
	periodRepo PeriodRepository
	closing    *ClosingUseCase
	idGen      IDGenerator
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewPeriodUseCase creates a new PeriodUseCase.
func NewPeriodUseCase(
	txManager TransactionManager,
	periodRepo PeriodRepository,
	closing *ClosingUseCase,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *PeriodUseCase {
	return &PeriodUseCase{
		txManager:  txManager,
		periodRepo: periodRepo,
		closing:    closing,
		idGen:      idGen,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreatePeriodInput represents input for opening a new accounting period.
type CreatePeriodInput struct {
	Name  string
	Start time.Time
	End   time.Time
}

// CreatePeriod opens a new accounting period. At most one period may be open
// at a time and date ranges never overlap. When a closed period ends before
// the new one starts, the opening entry is derived from it immediately, so a
// freshly created period already carries its balances forward.
func (uc *PeriodUseCase) CreatePeriod(ctx context.Context, actor *domain.User, input CreatePeriodInput) (*domain.Period, []string, error) {
	if actor != nil && !actor.Role.CanManagePeriods() {
		return nil, nil, domain.ErrInsufficientRole
	}

	if err := domain.ValidatePeriodName(input.Name); err != nil {
		return nil, nil, err
	}

	if err := domain.ValidateRange(input.Start, input.End); err != nil {
		return nil, nil, err
	}

	if _, err := uc.periodRepo.GetByName(ctx, input.Name); err == nil {
		return nil, nil, domain.ErrDuplicatePeriodName
	} else if !errors.Is(err, domain.ErrPeriodNotFound) {
		return nil, nil, err
	}

	overlaps, err := uc.periodRepo.AnyOverlapping(ctx, input.Start, input.End)
	if err != nil {
		return nil, nil, err
	}

	if overlaps {
		return nil, nil, domain.ErrOverlappingPeriod
	}

	if _, err := uc.periodRepo.OpenPeriod(ctx); err == nil {
		return nil, nil, domain.ErrPeriodAlreadyOpen
	} else if !errors.Is(err, domain.ErrPeriodNotFound) {
		return nil, nil, err
	}

	now := time.Now().UTC()

	period := &domain.Period{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Start:     input.Start,
		End:       input.End,
		State:     domain.PeriodOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.periodRepo.Create(ctx, period); err != nil {
		return nil, nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsCreated.Inc()
	}

	uc.logger.Info().
		Str("period", period.Name).
		Time("start", period.Start).
		Time("end", period.End).
		Msg("period created")

	prior, err := uc.periodRepo.LatestClosedBefore(ctx, input.Start)
	if err != nil {
		if errors.Is(err, domain.ErrPeriodNotFound) {
			// First period in the books, nothing to carry forward.
			return period, nil, nil
		}

		return nil, nil, err
	}

	_, warnings, err := uc.closing.GenerateOpeningEntry(ctx, actor, period.ID, prior.ID)
	if err != nil {
		// The period itself exists; surface the opening failure without
		// hiding what was created.
		return period, warnings, fmt.Errorf("opening entry for %s: %w", period.Name, err)
	}

	return period, warnings, nil
}

// ClosePeriod delegates to the closing engine.
func (uc *PeriodUseCase) ClosePeriod(ctx context.Context, actor *domain.User, periodID string) (*domain.JournalEntry, error) {
	return uc.closing.ClosePeriod(ctx, actor, periodID)
}

// GetPeriod retrieves a period by ID.
func (uc *PeriodUseCase) GetPeriod(ctx context.Context, id string) (*domain.Period, error) {
	return uc.periodRepo.GetByID(ctx, id)
}

// OpenPeriod returns the currently open period, if any.
func (uc *PeriodUseCase) OpenPeriod(ctx context.Context) (*domain.Period, error) {
	return uc.periodRepo.OpenPeriod(ctx)
}

// ListPeriodsInput represents input for listing periods.
type ListPeriodsInput struct {
	Limit  int
	Offset int
}

// ListPeriods lists periods ordered by start date descending.
func (uc *PeriodUseCase) ListPeriods(ctx context.Context, input ListPeriodsInput) ([]*domain.Period, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}

	if input.Limit > 500 {
		input.Limit = 500
	}

	return uc.periodRepo.List(ctx, input.Limit, input.Offset)
}
