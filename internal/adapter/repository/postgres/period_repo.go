package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

const periodColumns = `id, name, start_date, end_date, state, closing_entry_id, opening_entry_id, created_at, updated_at`

// Create creates a new period.
func (r *PeriodRepository) Create(ctx context.Context, period *domain.Period) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO periods (`+periodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		period.ID, period.Name, period.Start, period.End, string(period.State),
		period.ClosingEntryID, period.OpeningEntryID, period.CreatedAt, period.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicatePeriodName
		}

		return err
	}

	return nil
}

// GetByID retrieves a period by ID.
func (r *PeriodRepository) GetByID(ctx context.Context, id string) (*domain.Period, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM periods WHERE id = $1`, id)

	return scanPeriod(row)
}

// GetByIDForUpdate retrieves a period by ID with a FOR UPDATE lock. Sequence
// assignment and the close transition both run under this lock.
func (r *PeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Period, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM periods WHERE id = $1 FOR UPDATE`, id)

	return scanPeriod(row)
}

// GetByName retrieves a period by name.
func (r *PeriodRepository) GetByName(ctx context.Context, name string) (*domain.Period, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM periods WHERE name = $1`, name)

	return scanPeriod(row)
}

// List lists periods ordered by start date descending.
func (r *PeriodRepository) List(ctx context.Context, limit, offset int) ([]*domain.Period, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+periodColumns+` FROM periods
		ORDER BY start_date DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []*domain.Period

	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}

		periods = append(periods, period)
	}

	return periods, rows.Err()
}

// OpenPeriod returns the single open period, or domain.ErrPeriodNotFound when
// every period is closed.
func (r *PeriodRepository) OpenPeriod(ctx context.Context) (*domain.Period, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM periods WHERE state = 'open'`)

	return scanPeriod(row)
}

// AnyOverlapping reports whether any period's date range intersects
// [start, end].
func (r *PeriodRepository) AnyOverlapping(ctx context.Context, start, end time.Time) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM periods WHERE start_date <= $2 AND end_date >= $1
		)`, start, end).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// LatestClosedBefore returns the closed period with the greatest end date
// earlier than start, or domain.ErrPeriodNotFound.
func (r *PeriodRepository) LatestClosedBefore(ctx context.Context, start time.Time) (*domain.Period, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM periods
		WHERE state = 'closed' AND end_date < $1
		ORDER BY end_date DESC
		LIMIT 1`, start)

	return scanPeriod(row)
}

// LatestStartingOnOrBefore returns the period with the greatest start date not
// after d, or domain.ErrPeriodNotFound.
func (r *PeriodRepository) LatestStartingOnOrBefore(ctx context.Context, d time.Time) (*domain.Period, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM periods
		WHERE start_date <= $1
		ORDER BY start_date DESC
		LIMIT 1`, d)

	return scanPeriod(row)
}

// Close marks the period closed and records its closing entry. The state
// predicate makes the transition fail cleanly if a concurrent close won.
func (r *PeriodRepository) Close(ctx context.Context, tx usecase.Transaction, id, closingEntryID string, closedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE periods
		SET state = 'closed', closing_entry_id = $2, updated_at = $3
		WHERE id = $1 AND state = 'open'`,
		id, closingEntryID, closedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyClosed
	}

	return nil
}

// RecordOpeningEntry attaches the successor period's opening entry to a
// closed period, exactly once.
func (r *PeriodRepository) RecordOpeningEntry(ctx context.Context, tx usecase.Transaction, id, openingEntryID string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE periods
		SET opening_entry_id = $2, updated_at = $3
		WHERE id = $1 AND opening_entry_id IS NULL`,
		id, openingEntryID, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrOpeningAlreadyRecorded
	}

	return nil
}

func scanPeriod(row pgx.Row) (*domain.Period, error) {
	var (
		period domain.Period
		state  string
	)

	err := row.Scan(
		&period.ID, &period.Name, &period.Start, &period.End, &state,
		&period.ClosingEntryID, &period.OpeningEntryID, &period.CreatedAt, &period.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}

		return nil, err
	}

	period.State = domain.PeriodState(state)

	return &period, nil
}
