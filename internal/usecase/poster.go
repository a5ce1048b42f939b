package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/gobooks/internal/domain"
)

// poster is the shared posting core. User-facing posting and the
// closing/opening engines all go through it, so the balance and
// postable-account rules hold for every entry that reaches storage.
type poster struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
}

// postSpec describes one entry to be posted inside an already-open
// transaction holding the period row lock.
type postSpec struct {
	date        time.Time
	description string
	createdBy   string
	system      bool
	// allowUnbalanced is set only by the opening engine, which persists an
	// out-of-balance entry so the discrepancy stays visible for audit.
	allowUnbalanced bool
	lines           []domain.LineItem
}

// WarnEmptyEntry is reported when an entry posts with zero totals.
const WarnEmptyEntry = "entry is empty (total 0.00)"

// post validates the requested entry against the locked period and persists
// it with its lines. It returns the persisted entry plus non-blocking
// warnings.
func (p *poster) post(ctx context.Context, tx Transaction, period *domain.Period, spec postSpec) (*domain.JournalEntry, []string, error) {
	// System entries bypass the open-period gate so the closing entry can be
	// posted into the period being closed, and the date-range check so the
	// opening entry can be dated at the successor period's start.
	if !spec.system {
		if period.State == domain.PeriodClosed {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrPeriodIsClosed, period.Name)
		}

		if !period.Contains(spec.date) {
			return nil, nil, fmt.Errorf("%w: %s not in [%s, %s]", domain.ErrDateOutOfRange,
				spec.date.Format("2006-01-02"), period.Start.Format("2006-01-02"), period.End.Format("2006-01-02"))
		}
	}

	// A user entry with no lines is rejected; a system entry may legitimately
	// be empty (closing a period with no activity) and posts with a warning.
	if len(spec.lines) == 0 && !spec.system {
		return nil, nil, domain.ErrEmptyEntry
	}

	now := time.Now().UTC()

	entry := &domain.JournalEntry{
		ID:          p.idGen.Generate(),
		PeriodID:    period.ID,
		Date:        spec.date,
		Description: spec.description,
		CreatedBy:   spec.createdBy,
		CreatedAt:   now,
		System:      spec.system,
	}

	for _, line := range spec.lines {
		if err := line.Validate(); err != nil {
			return nil, nil, err
		}

		account, err := p.accountRepo.GetByID(ctx, line.AccountID)
		if err != nil {
			return nil, nil, err
		}

		if err := account.Resolvable(); err != nil {
			return nil, nil, fmt.Errorf("%w: %s %s", err, account.Code, account.Name)
		}

		line.ID = p.idGen.Generate()
		line.EntryID = entry.ID
		entry.Lines = append(entry.Lines, line)
	}

	if !entry.IsBalanced() && !spec.allowUnbalanced {
		return nil, nil, &domain.UnbalancedError{
			Debits:  entry.TotalDebit(),
			Credits: entry.TotalCredit(),
		}
	}

	var warnings []string
	if entry.IsEmpty() {
		warnings = append(warnings, WarnEmptyEntry)
	}

	seq, err := p.entryRepo.NextSequence(ctx, tx, period.ID)
	if err != nil {
		return nil, nil, err
	}

	entry.Sequence = seq

	if err := p.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, nil, err
	}

	return entry, warnings, nil
}
