package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/metrics"
)

// EntryUseCase handles journal entry posting and browsing.
type EntryUseCase struct {
	poster

	txManager  TransactionManager
	periodRepo PeriodRepository
	retrier    Retrier
	metrics    *metrics.Metrics
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	periodRepo PeriodRepository,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *EntryUseCase {
	return &EntryUseCase{
		poster: poster{
			accountRepo: accountRepo,
			entryRepo:   entryRepo,
			idGen:       idGen,
		},
		txManager:  txManager,
		periodRepo: periodRepo,
		retrier:    retrier,
		metrics:    metrics,
	}
}

// PostLineInput is one debit or credit of a new entry, addressed by account
// code.
type PostLineInput struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// PostEntryInput represents input for posting a journal entry.
type PostEntryInput struct {
	PeriodID    string
	Date        time.Time
	Description string
	Lines       []PostLineInput
}

// PostEntry validates and persists a balanced journal entry with its lines as
// one atomic unit. Returned warnings are non-blocking; on any error nothing
// is written.
func (uc *EntryUseCase) PostEntry(ctx context.Context, actor *domain.User, input PostEntryInput) (*domain.JournalEntry, []string, error) {
	if actor != nil && !actor.Role.CanPostEntries() {
		return nil, nil, domain.ErrInsufficientRole
	}

	if len(input.Lines) == 0 {
		return nil, nil, domain.ErrEmptyEntry
	}

	lines := make([]domain.LineItem, 0, len(input.Lines))
	for _, li := range input.Lines {
		if err := domain.ValidateAmount(li.Debit); err != nil {
			return nil, nil, err
		}

		if err := domain.ValidateAmount(li.Credit); err != nil {
			return nil, nil, err
		}

		account, err := uc.accountRepo.GetByCode(ctx, li.AccountCode)
		if err != nil {
			return nil, nil, err
		}

		lines = append(lines, domain.LineItem{
			AccountID: account.ID,
			Debit:     li.Debit,
			Credit:    li.Credit,
		})
	}

	createdBy := ""
	if actor != nil {
		createdBy = actor.ID
	}

	var (
		entry    *domain.JournalEntry
		warnings []string
	)

	err := withRetry(ctx, uc.retrier, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		// The period lock serializes sequence assignment and keeps the state
		// check valid until commit.
		period, err := uc.periodRepo.GetByIDForUpdate(ctx, tx, input.PeriodID)
		if err != nil {
			return err
		}

		entry, warnings, err = uc.post(ctx, tx, period, postSpec{
			date:        input.Date,
			description: input.Description,
			createdBy:   createdBy,
			lines:       lines,
		})
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.EntryErrors.WithLabelValues(rejectionReason(err)).Inc()
		}

		return nil, nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesPosted.Inc()
		uc.metrics.EntryLineCount.Observe(float64(len(entry.Lines)))
	}

	return entry, warnings, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnbalanced):
		return "unbalanced"
	case errors.Is(err, domain.ErrPeriodIsClosed):
		return "closed_period"
	case errors.Is(err, domain.ErrDateOutOfRange):
		return "date_out_of_range"
	case errors.Is(err, domain.ErrAccountNotPostable), errors.Is(err, domain.ErrAccountInactive):
		return "bad_account"
	case errors.Is(err, domain.ErrNegativeAmount), errors.Is(err, domain.ErrDebitAndCredit):
		return "bad_line"
	default:
		return "other"
	}
}

// GetEntry retrieves a journal entry with its lines.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntriesInput represents input for listing a period's journal.
type ListEntriesInput struct {
	PeriodID string
	Limit    int
	Offset   int
}

// ListEntries lists a period's entries ordered by sequence.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.JournalEntry, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}

	if input.Limit > 500 {
		input.Limit = 500
	}

	return uc.entryRepo.ListByPeriod(ctx, input.PeriodID, input.Limit, input.Offset)
}
