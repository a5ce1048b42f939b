package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
	"github.com/iho/gobooks/internal/usecase/mocks"
)

type ledgerFixture struct {
	accountRepo *mocks.MockAccountRepository
	periodRepo  *mocks.MockPeriodRepository
	entryRepo   *mocks.MockEntryRepository

	entries *usecase.EntryUseCase
	closing *usecase.ClosingUseCase
	periods *usecase.PeriodUseCase
}

// newLedgerFixture wires the posting, closing and period use cases over one
// shared in-memory store, so entries posted in one use case are visible to the
// aggregations of another.
func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		periodRepo:  mocks.NewMockPeriodRepository(),
		entryRepo:   mocks.NewMockEntryRepository(),
	}

	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	logger := zerolog.Nop()

	f.entries = usecase.NewEntryUseCase(txManager, f.periodRepo, f.accountRepo, f.entryRepo, idGen, nil, nil)
	f.closing = usecase.NewClosingUseCase(txManager, f.periodRepo, f.accountRepo, f.entryRepo, idGen, usecase.TransferAccounts{}, nil, nil, logger)
	f.periods = usecase.NewPeriodUseCase(txManager, f.periodRepo, f.closing, idGen, nil, logger)

	for _, acc := range []*domain.Account{
		{ID: "acc-113", Code: "113", Name: "Bank", Classification: domain.ClassAsset, Nature: domain.NatureDebit, Postable: true, Active: true},
		{ID: "acc-31", Code: "31", Name: "Share capital", Classification: domain.ClassEquity, Nature: domain.NatureCredit, Postable: true, Active: true},
		{ID: "acc-33", Code: "33", Name: "Retained earnings", Classification: domain.ClassEquity, Nature: domain.NatureCredit, Postable: true, Active: true},
		{ID: "acc-34", Code: "34", Name: "Current-year earnings", Classification: domain.ClassEquity, Nature: domain.NatureCredit, Postable: true, Active: true},
		{ID: "acc-41", Code: "41", Name: "Sales", Classification: domain.ClassRevenue, Nature: domain.NatureCredit, Postable: true, Active: true},
		{ID: "acc-61", Code: "61", Name: "Rent expense", Classification: domain.ClassExpense, Nature: domain.NatureDebit, Postable: true, Active: true},
	} {
		seedAccount(t, f.accountRepo, acc)
	}

	return f
}

func (f *ledgerFixture) createPeriod(t *testing.T, name string, start, end time.Time) *domain.Period {
	t.Helper()
	period, _, err := f.periods.CreatePeriod(context.Background(), nil, usecase.CreatePeriodInput{
		Name: name, Start: start, End: end,
	})
	if err != nil {
		t.Fatalf("create period %s: %v", name, err)
	}
	return period
}

func (f *ledgerFixture) postEntry(t *testing.T, periodID string, date time.Time, desc string, lines ...usecase.PostLineInput) {
	t.Helper()
	if _, _, err := f.entries.PostEntry(context.Background(), nil, usecase.PostEntryInput{
		PeriodID: periodID, Date: date, Description: desc, Lines: lines,
	}); err != nil {
		t.Fatalf("post %q: %v", desc, err)
	}
}

func lineFor(t *testing.T, entry *domain.JournalEntry, accountID string) domain.LineItem {
	t.Helper()
	for _, line := range entry.Lines {
		if line.AccountID == accountID {
			return line
		}
	}
	t.Fatalf("no line for account %s in entry %s", accountID, entry.ID)
	return domain.LineItem{}
}

func TestClosingUseCase_CloseThenOpenCarriesForward(t *testing.T) {
	f := newLedgerFixture(t)

	jan := f.createPeriod(t, "2024-01", day(2024, time.January, 1), day(2024, time.January, 31))
	f.postEntry(t, jan.ID, day(2024, time.January, 2), "Initial capital",
		usecase.PostLineInput{AccountCode: "113", Debit: d("1000.00")},
		usecase.PostLineInput{AccountCode: "31", Credit: d("1000.00")},
	)
	f.postEntry(t, jan.ID, day(2024, time.January, 10), "Cash sale",
		usecase.PostLineInput{AccountCode: "113", Debit: d("500.00")},
		usecase.PostLineInput{AccountCode: "41", Credit: d("500.00")},
	)
	f.postEntry(t, jan.ID, day(2024, time.January, 20), "Office rent",
		usecase.PostLineInput{AccountCode: "61", Debit: d("100.00")},
		usecase.PostLineInput{AccountCode: "113", Credit: d("100.00")},
	)

	closingEntry, err := f.closing.ClosePeriod(context.Background(), nil, jan.ID)
	if err != nil {
		t.Fatalf("close period: %v", err)
	}

	if !closingEntry.System {
		t.Error("closing entry must be system-generated")
	}
	if closingEntry.Sequence != 4 {
		t.Errorf("expected closing entry sequence 4, got %d", closingEntry.Sequence)
	}
	if !closingEntry.Date.Equal(jan.End) {
		t.Errorf("closing entry must be dated at period end, got %s", closingEntry.Date)
	}
	if !closingEntry.IsBalanced() {
		t.Fatalf("closing entry out of balance: %s vs %s", closingEntry.TotalDebit(), closingEntry.TotalCredit())
	}

	// Sales carried a 500 credit balance, rent a 100 debit balance; net
	// income 400 lands in current-year earnings.
	if got := lineFor(t, closingEntry, "acc-41").Debit; !got.Equal(d("500.00")) {
		t.Errorf("expected sales debit 500.00, got %s", got)
	}
	if got := lineFor(t, closingEntry, "acc-61").Credit; !got.Equal(d("100.00")) {
		t.Errorf("expected rent credit 100.00, got %s", got)
	}
	if got := lineFor(t, closingEntry, "acc-34").Credit; !got.Equal(d("400.00")) {
		t.Errorf("expected earnings credit 400.00, got %s", got)
	}

	closed, err := f.periodRepo.GetByID(context.Background(), jan.ID)
	if err != nil {
		t.Fatalf("reload period: %v", err)
	}
	if closed.State != domain.PeriodClosed {
		t.Errorf("expected period closed, got %s", closed.State)
	}
	if closed.ClosingEntryID == nil || *closed.ClosingEntryID != closingEntry.ID {
		t.Error("closing entry must be recorded on the period")
	}

	feb, warnings, err := f.periods.CreatePeriod(context.Background(), nil, usecase.CreatePeriodInput{
		Name: "2024-02", Start: day(2024, time.February, 1), End: day(2024, time.February, 29),
	})
	if err != nil {
		t.Fatalf("create successor period: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	priorReloaded, err := f.periodRepo.GetByID(context.Background(), jan.ID)
	if err != nil {
		t.Fatalf("reload prior period: %v", err)
	}
	if priorReloaded.OpeningEntryID == nil {
		t.Fatal("opening entry must be recorded on the prior period")
	}

	opening, err := f.entryRepo.GetByID(context.Background(), *priorReloaded.OpeningEntryID)
	if err != nil {
		t.Fatalf("load opening entry: %v", err)
	}

	if !opening.System {
		t.Error("opening entry must be system-generated")
	}
	if opening.PeriodID != feb.ID {
		t.Error("opening entry must be posted into the new period")
	}
	if opening.Sequence != 1 {
		t.Errorf("expected opening entry sequence 1, got %d", opening.Sequence)
	}
	if !opening.Date.Equal(feb.Start) {
		t.Errorf("opening entry must be dated at new period start, got %s", opening.Date)
	}
	if !opening.IsBalanced() {
		t.Fatalf("opening entry out of balance: %s vs %s", opening.TotalDebit(), opening.TotalCredit())
	}

	// Bank 1000 + 500 - 100, capital unchanged, earnings folded into
	// retained earnings so the earnings account starts at zero.
	if got := lineFor(t, opening, "acc-113").Debit; !got.Equal(d("1400.00")) {
		t.Errorf("expected bank debit 1400.00, got %s", got)
	}
	if got := lineFor(t, opening, "acc-31").Credit; !got.Equal(d("1000.00")) {
		t.Errorf("expected capital credit 1000.00, got %s", got)
	}
	if got := lineFor(t, opening, "acc-33").Credit; !got.Equal(d("400.00")) {
		t.Errorf("expected retained earnings credit 400.00, got %s", got)
	}
	for _, line := range opening.Lines {
		if line.AccountID == "acc-34" {
			t.Error("earnings account must not appear on the opening entry")
		}
		if line.AccountID == "acc-41" || line.AccountID == "acc-61" {
			t.Error("income-statement accounts must not be carried forward")
		}
	}
}

func TestClosingUseCase_OpeningAfterTwoCyclesCarriesOnce(t *testing.T) {
	f := newLedgerFixture(t)

	jan := f.createPeriod(t, "2024-01", day(2024, time.January, 1), day(2024, time.January, 31))
	f.postEntry(t, jan.ID, day(2024, time.January, 2), "Initial capital",
		usecase.PostLineInput{AccountCode: "113", Debit: d("1000.00")},
		usecase.PostLineInput{AccountCode: "31", Credit: d("1000.00")},
	)
	if _, err := f.closing.ClosePeriod(context.Background(), nil, jan.ID); err != nil {
		t.Fatalf("close january: %v", err)
	}

	feb := f.createPeriod(t, "2024-02", day(2024, time.February, 1), day(2024, time.February, 29))
	if _, err := f.closing.ClosePeriod(context.Background(), nil, feb.ID); err != nil {
		t.Fatalf("close february: %v", err)
	}

	f.createPeriod(t, "2024-03", day(2024, time.March, 1), day(2024, time.March, 31))

	febReloaded, err := f.periodRepo.GetByID(context.Background(), feb.ID)
	if err != nil {
		t.Fatalf("reload february: %v", err)
	}
	if febReloaded.OpeningEntryID == nil {
		t.Fatal("opening entry must be recorded on february")
	}

	opening, err := f.entryRepo.GetByID(context.Background(), *febReloaded.OpeningEntryID)
	if err != nil {
		t.Fatalf("load march opening entry: %v", err)
	}

	// February's own opening entry already restates January; the march opening
	// must carry each balance exactly once, not once per elapsed period.
	if got := lineFor(t, opening, "acc-113").Debit; !got.Equal(d("1000.00")) {
		t.Errorf("expected bank debit 1000.00, got %s", got)
	}
	if got := lineFor(t, opening, "acc-31").Credit; !got.Equal(d("1000.00")) {
		t.Errorf("expected capital credit 1000.00, got %s", got)
	}
	if !opening.IsBalanced() {
		t.Fatalf("opening entry out of balance: %s vs %s", opening.TotalDebit(), opening.TotalCredit())
	}
}

func TestClosingUseCase_OpeningRequiresClosedEarlierPrior(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	seed := func(id, name string, start, end time.Time, state domain.PeriodState) *domain.Period {
		t.Helper()
		p := &domain.Period{ID: id, Name: name, Start: start, End: end, State: state}
		if err := f.periodRepo.Create(ctx, p); err != nil {
			t.Fatalf("seed period %s: %v", name, err)
		}
		return p
	}

	open := seed("per-jan", "2024-01", day(2024, time.January, 1), day(2024, time.January, 31), domain.PeriodOpen)
	straddle := seed("per-straddle", "2024-x", day(2024, time.January, 15), day(2024, time.February, 15), domain.PeriodClosed)
	feb := seed("per-feb", "2024-02", day(2024, time.February, 1), day(2024, time.February, 29), domain.PeriodOpen)

	if _, _, err := f.closing.GenerateOpeningEntry(ctx, nil, feb.ID, open.ID); !errors.Is(err, domain.ErrPriorNotClosed) {
		t.Fatalf("expected ErrPriorNotClosed, got %v", err)
	}

	if _, _, err := f.closing.GenerateOpeningEntry(ctx, nil, feb.ID, straddle.ID); !errors.Is(err, domain.ErrPriorNotEarlier) {
		t.Fatalf("expected ErrPriorNotEarlier, got %v", err)
	}

	entries, err := f.entryRepo.ListByPeriod(ctx, feb.ID, 50, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries after rejected opening attempts, got %d", len(entries))
	}
}

func TestClosingUseCase_NetLossDebitsEarnings(t *testing.T) {
	f := newLedgerFixture(t)

	jan := f.createPeriod(t, "2024-01", day(2024, time.January, 1), day(2024, time.January, 31))
	f.postEntry(t, jan.ID, day(2024, time.January, 2), "Initial capital",
		usecase.PostLineInput{AccountCode: "113", Debit: d("1000.00")},
		usecase.PostLineInput{AccountCode: "31", Credit: d("1000.00")},
	)
	f.postEntry(t, jan.ID, day(2024, time.January, 20), "Office rent",
		usecase.PostLineInput{AccountCode: "61", Debit: d("100.00")},
		usecase.PostLineInput{AccountCode: "113", Credit: d("100.00")},
	)

	closingEntry, err := f.closing.ClosePeriod(context.Background(), nil, jan.ID)
	if err != nil {
		t.Fatalf("close period: %v", err)
	}

	if got := lineFor(t, closingEntry, "acc-61").Credit; !got.Equal(d("100.00")) {
		t.Errorf("expected rent credit 100.00, got %s", got)
	}
	if got := lineFor(t, closingEntry, "acc-34").Debit; !got.Equal(d("100.00")) {
		t.Errorf("expected earnings debit 100.00 for the loss, got %s", got)
	}
}

func TestClosingUseCase_CloseEmptyPeriod(t *testing.T) {
	f := newLedgerFixture(t)
	jan := f.createPeriod(t, "2024-01", day(2024, time.January, 1), day(2024, time.January, 31))

	closingEntry, err := f.closing.ClosePeriod(context.Background(), nil, jan.ID)
	if err != nil {
		t.Fatalf("close empty period: %v", err)
	}
	if len(closingEntry.Lines) != 0 {
		t.Errorf("expected no lines, got %d", len(closingEntry.Lines))
	}

	closed, err := f.periodRepo.GetByID(context.Background(), jan.ID)
	if err != nil {
		t.Fatalf("reload period: %v", err)
	}
	if closed.State != domain.PeriodClosed {
		t.Errorf("expected period closed, got %s", closed.State)
	}
}

func TestClosingUseCase_CloseTwiceRejected(t *testing.T) {
	f := newLedgerFixture(t)
	jan := f.createPeriod(t, "2024-01", day(2024, time.January, 1), day(2024, time.January, 31))

	if _, err := f.closing.ClosePeriod(context.Background(), nil, jan.ID); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if _, err := f.closing.ClosePeriod(context.Background(), nil, jan.ID); !errors.Is(err, domain.ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
}

func TestClosingUseCase_MissingEarningsAccount(t *testing.T) {
	f := newLedgerFixture(t)
	jan := f.createPeriod(t, "2024-01", day(2024, time.January, 1), day(2024, time.January, 31))

	// Closing through a chart without the earnings account must fail before
	// any posting happens.
	closing := usecase.NewClosingUseCase(
		mocks.NewMockTransactionManager(), f.periodRepo, f.accountRepo, f.entryRepo,
		mocks.NewMockIDGenerator(), usecase.TransferAccounts{EarningsCode: "999"}, nil, nil, zerolog.Nop(),
	)

	if _, err := closing.ClosePeriod(context.Background(), nil, jan.ID); !errors.Is(err, domain.ErrMissingEarningsAccount) {
		t.Fatalf("expected ErrMissingEarningsAccount, got %v", err)
	}

	reloaded, err := f.periodRepo.GetByID(context.Background(), jan.ID)
	if err != nil {
		t.Fatalf("reload period: %v", err)
	}
	if reloaded.State != domain.PeriodOpen {
		t.Error("period must stay open when closing fails")
	}
}

func TestClosingUseCase_RoleCheck(t *testing.T) {
	f := newLedgerFixture(t)
	jan := f.createPeriod(t, "2024-01", day(2024, time.January, 1), day(2024, time.January, 31))

	bookkeeper := &domain.User{ID: "u1", Role: domain.RoleBookkeeper}
	if _, err := f.closing.ClosePeriod(context.Background(), bookkeeper, jan.ID); !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}
}

func TestClosingUseCase_InactiveAccountSkippedOnOpening(t *testing.T) {
	f := newLedgerFixture(t)

	jan := f.createPeriod(t, "2024-01", day(2024, time.January, 1), day(2024, time.January, 31))
	f.postEntry(t, jan.ID, day(2024, time.January, 2), "Initial capital",
		usecase.PostLineInput{AccountCode: "113", Debit: d("1000.00")},
		usecase.PostLineInput{AccountCode: "31", Credit: d("1000.00")},
	)

	if _, err := f.closing.ClosePeriod(context.Background(), nil, jan.ID); err != nil {
		t.Fatalf("close period: %v", err)
	}

	// Deactivate the bank account between close and the successor period.
	// Its balance can no longer be carried, which throws the opening entry
	// out of balance; the entry is still persisted for audit.
	if err := f.accountRepo.SetActive(context.Background(), "acc-113", false, time.Now().UTC()); err != nil {
		t.Fatalf("deactivate account: %v", err)
	}

	feb, warnings, err := f.periods.CreatePeriod(context.Background(), nil, usecase.CreatePeriodInput{
		Name: "2024-02", Start: day(2024, time.February, 1), End: day(2024, time.February, 29),
	})
	if !errors.Is(err, domain.ErrOpeningOutOfBalance) {
		t.Fatalf("expected ErrOpeningOutOfBalance, got %v", err)
	}
	if feb == nil {
		t.Fatal("period must still be created")
	}
	if len(warnings) == 0 {
		t.Error("expected a skipped-account warning")
	}

	entries, err := f.entryRepo.ListByPeriod(context.Background(), feb.ID, 50, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the unbalanced opening entry to be persisted, got %d entries", len(entries))
	}
	if entries[0].IsBalanced() {
		t.Error("expected persisted opening entry to be out of balance")
	}
}

func TestClosingUseCase_RoundingHalfAwayFromZero(t *testing.T) {
	if !domain.RoundAmount(decimal.RequireFromString("2.675")).Equal(d("2.68")) {
		t.Errorf("expected 2.675 to round to 2.68, got %s", domain.RoundAmount(decimal.RequireFromString("2.675")))
	}
	if !domain.RoundAmount(decimal.RequireFromString("-2.675")).Equal(d("-2.68")) {
		t.Errorf("expected -2.675 to round to -2.68, got %s", domain.RoundAmount(decimal.RequireFromString("-2.675")))
	}
}
