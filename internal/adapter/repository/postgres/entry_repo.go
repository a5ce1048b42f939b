package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create persists the entry header and all its lines inside the caller's
// transaction. Line inserts are batched in one round trip.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO journal_entries (id, period_id, sequence, entry_date, description, created_by, created_at, is_system)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.PeriodID, entry.Sequence, entry.Date,
		entry.Description, entry.CreatedBy, entry.CreatedAt, entry.System,
	)
	if err != nil {
		return err
	}

	if len(entry.Lines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, line := range entry.Lines {
		batch.Queue(`
			INSERT INTO line_items (id, entry_id, account_id, debit, credit)
			VALUES ($1, $2, $3, $4, $5)`,
			line.ID, line.EntryID, line.AccountID,
			decimalToNumeric(line.Debit), decimalToNumeric(line.Credit),
		)
	}

	results := pgxTx.SendBatch(ctx, batch)
	defer results.Close()

	for range entry.Lines {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// GetByID retrieves a journal entry with its lines.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, period_id, sequence, entry_date, description, created_by, created_at, is_system
		FROM journal_entries WHERE id = $1`, id)

	entry, err := scanEntry(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, []*domain.JournalEntry{entry}); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListByPeriod lists a period's entries ordered by sequence, lines included.
func (r *EntryRepository) ListByPeriod(ctx context.Context, periodID string, limit, offset int) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, period_id, sequence, entry_date, description, created_by, created_at, is_system
		FROM journal_entries
		WHERE period_id = $1
		ORDER BY sequence
		LIMIT $2 OFFSET $3`, periodID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// NextSequence returns 1 + the highest sequence in the period. Callers must
// hold the period row lock so concurrent posts cannot observe the same
// maximum.
func (r *EntryRepository) NextSequence(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var next int64

	err := pgxTx.QueryRow(ctx, `
		SELECT COALESCE(MAX(sequence), 0) + 1 FROM journal_entries WHERE period_id = $1`,
		periodID).Scan(&next)
	if err != nil {
		return 0, err
	}

	return next, nil
}

const sumQuery = `
	SELECT COALESCE(SUM(li.debit), 0), COALESCE(SUM(li.credit), 0)
	FROM line_items li
	JOIN journal_entries je ON je.id = li.entry_id
	WHERE li.account_id = $1 AND je.entry_date >= $2 AND je.entry_date <= $3
	AND (NOT $4::boolean OR NOT je.is_system)`

// SumByAccountRange totals an account's debits and credits over entries dated
// within [from, to], optionally excluding system entries.
func (r *EntryRepository) SumByAccountRange(ctx context.Context, accountID string, from, to time.Time, excludeSystem bool) (usecase.LineSums, error) {
	return r.sum(ctx, r.pool, accountID, from, to, excludeSystem)
}

// SumByAccountRangeTx is SumByAccountRange inside the caller's transaction.
func (r *EntryRepository) SumByAccountRangeTx(ctx context.Context, tx usecase.Transaction, accountID string, from, to time.Time, excludeSystem bool) (usecase.LineSums, error) {
	return r.sum(ctx, tx.(*Tx).PgxTx(), accountID, from, to, excludeSystem)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *EntryRepository) sum(ctx context.Context, q queryRower, accountID string, from, to time.Time, excludeSystem bool) (usecase.LineSums, error) {
	var debit, credit pgtype.Numeric

	err := q.QueryRow(ctx, sumQuery, accountID, from, to, excludeSystem).Scan(&debit, &credit)
	if err != nil {
		return usecase.LineSums{}, err
	}

	return usecase.LineSums{
		Debit:  numericToDecimal(debit),
		Credit: numericToDecimal(credit),
	}, nil
}

func (r *EntryRepository) loadLines(ctx context.Context, entries []*domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	byID := make(map[string]*domain.JournalEntry, len(entries))
	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		byID[entry.ID] = entry
		ids = append(ids, entry.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, account_id, debit, credit
		FROM line_items
		WHERE entry_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line          domain.LineItem
			debit, credit pgtype.Numeric
		)

		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &debit, &credit); err != nil {
			return err
		}

		line.Debit = numericToDecimal(debit)
		line.Credit = numericToDecimal(credit)

		if entry, ok := byID[line.EntryID]; ok {
			entry.Lines = append(entry.Lines, line)
		}
	}

	return rows.Err()
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry

	err := row.Scan(
		&entry.ID, &entry.PeriodID, &entry.Sequence, &entry.Date,
		&entry.Description, &entry.CreatedBy, &entry.CreatedAt, &entry.System,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return &entry, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}
