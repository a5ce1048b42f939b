package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
)

// LineSums holds the raw debit/credit totals of a set of line items. Balances
// are always derived from these on read; nothing caches them.
type LineSums struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// AccountRepository defines data access for the chart of accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, code string) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	// ListPostableByClassification returns postable accounts of any of the
	// given classifications, inactive ones included.
	ListPostableByClassification(ctx context.Context, classes []domain.Classification) ([]*domain.Account, error)
	HasActiveChildren(ctx context.Context, id string) (bool, error)
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
}

// PeriodRepository defines data access for accounting periods.
type PeriodRepository interface {
	Create(ctx context.Context, period *domain.Period) error
	GetByID(ctx context.Context, id string) (*domain.Period, error)
	// GetByIDForUpdate locks the period row for the duration of the
	// transaction. Sequence assignment and the close transition both run
	// under this lock.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Period, error)
	GetByName(ctx context.Context, name string) (*domain.Period, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Period, error)
	// OpenPeriod returns the single open period, or domain.ErrPeriodNotFound
	// when every period is closed.
	OpenPeriod(ctx context.Context) (*domain.Period, error)
	AnyOverlapping(ctx context.Context, start, end time.Time) (bool, error)
	// LatestClosedBefore returns the closed period with the greatest end date
	// earlier than start, or domain.ErrPeriodNotFound.
	LatestClosedBefore(ctx context.Context, start time.Time) (*domain.Period, error)
	// LatestStartingOnOrBefore returns the period with the greatest start date
	// not after d, or domain.ErrPeriodNotFound. It is the period whose opening
	// entry governs balances read as of d.
	LatestStartingOnOrBefore(ctx context.Context, d time.Time) (*domain.Period, error)
	Close(ctx context.Context, tx Transaction, id, closingEntryID string, closedAt time.Time) error
	// RecordOpeningEntry attaches the successor period's opening entry to the
	// closed period; fails with domain.ErrOpeningAlreadyRecorded if one is
	// already recorded.
	RecordOpeningEntry(ctx context.Context, tx Transaction, id, openingEntryID string, updatedAt time.Time) error
}

// EntryRepository defines data access for journal entries and their lines.
type EntryRepository interface {
	// Create persists the entry header and all its lines as one atomic unit.
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListByPeriod(ctx context.Context, periodID string, limit, offset int) ([]*domain.JournalEntry, error)
	// NextSequence returns 1 + the highest sequence in the period. Callers
	// must hold the period row lock so concurrent posts cannot observe the
	// same maximum.
	NextSequence(ctx context.Context, tx Transaction, periodID string) (int64, error)
	// SumByAccountRange totals an account's lines over entries dated within
	// [from, to]. Balance reads always scope from a period start: an opening
	// entry restates all earlier history, so an unbounded sum would count
	// carried balances once per opening entry.
	SumByAccountRange(ctx context.Context, accountID string, from, to time.Time, excludeSystem bool) (LineSums, error)
	SumByAccountRangeTx(ctx context.Context, tx Transaction, accountID string, from, to time.Time, excludeSystem bool) (LineSums, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation after transient storage failures, such as a
// deadlock between a concurrent post and close.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// withRetry runs op through r, or directly when no retrier is configured.
func withRetry(ctx context.Context, r Retrier, op func() error) error {
	if r == nil {
		return op()
	}

	return r.Retry(ctx, op)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
