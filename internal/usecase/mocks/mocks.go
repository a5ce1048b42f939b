package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
	"github.com/shopspring/decimal"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc                       func(ctx context.Context, account *domain.Account) error
	GetByIDFunc                      func(ctx context.Context, id string) (*domain.Account, error)
	GetByCodeFunc                    func(ctx context.Context, code string) (*domain.Account, error)
	ListFunc                         func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListPostableByClassificationFunc func(ctx context.Context, classes []domain.Classification) ([]*domain.Account, error)
	HasActiveChildrenFunc            func(ctx context.Context, id string) (bool, error)
	SetActiveFunc                    func(ctx context.Context, id string, active bool, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Code == code {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (m *MockAccountRepository) ListPostableByClassification(ctx context.Context, classes []domain.Classification) ([]*domain.Account, error) {
	if m.ListPostableByClassificationFunc != nil {
		return m.ListPostableByClassificationFunc(ctx, classes)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[domain.Classification]bool, len(classes))
	for _, c := range classes {
		wanted[c] = true
	}
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.Postable && wanted[acc.Classification] {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (m *MockAccountRepository) HasActiveChildren(ctx context.Context, id string) (bool, error) {
	if m.HasActiveChildrenFunc != nil {
		return m.HasActiveChildrenFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.ParentID != nil && *acc.ParentID == id && acc.Active {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Active = active
		acc.UpdatedAt = updatedAt
	}
	return nil
}

// MockPeriodRepository is a mock implementation of PeriodRepository.
type MockPeriodRepository struct {
	mu      sync.RWMutex
	periods map[string]*domain.Period

	CreateFunc                   func(ctx context.Context, period *domain.Period) error
	GetByIDFunc                  func(ctx context.Context, id string) (*domain.Period, error)
	GetByIDForUpdateFunc         func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Period, error)
	GetByNameFunc                func(ctx context.Context, name string) (*domain.Period, error)
	ListFunc                     func(ctx context.Context, limit, offset int) ([]*domain.Period, error)
	OpenPeriodFunc               func(ctx context.Context) (*domain.Period, error)
	AnyOverlappingFunc           func(ctx context.Context, start, end time.Time) (bool, error)
	LatestClosedBeforeFunc       func(ctx context.Context, start time.Time) (*domain.Period, error)
	LatestStartingOnOrBeforeFunc func(ctx context.Context, d time.Time) (*domain.Period, error)
	CloseFunc                    func(ctx context.Context, tx usecase.Transaction, id, closingEntryID string, closedAt time.Time) error
	RecordOpeningEntryFunc       func(ctx context.Context, tx usecase.Transaction, id, openingEntryID string, updatedAt time.Time) error
}

func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{
		periods: make(map[string]*domain.Period),
	}
}

func (m *MockPeriodRepository) Create(ctx context.Context, period *domain.Period) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[period.ID] = period
	return nil
}

func (m *MockPeriodRepository) GetByID(ctx context.Context, id string) (*domain.Period, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Period, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPeriodRepository) GetByName(ctx context.Context, name string) (*domain.Period, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) List(ctx context.Context, limit, offset int) ([]*domain.Period, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var periods []*domain.Period
	for _, p := range m.periods {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Start.After(periods[j].Start) })
	return periods, nil
}

func (m *MockPeriodRepository) OpenPeriod(ctx context.Context) (*domain.Period, error) {
	if m.OpenPeriodFunc != nil {
		return m.OpenPeriodFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.State == domain.PeriodOpen {
			return p, nil
		}
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) AnyOverlapping(ctx context.Context, start, end time.Time) (bool, error) {
	if m.AnyOverlappingFunc != nil {
		return m.AnyOverlappingFunc(ctx, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPeriodRepository) LatestClosedBefore(ctx context.Context, start time.Time) (*domain.Period, error) {
	if m.LatestClosedBeforeFunc != nil {
		return m.LatestClosedBeforeFunc(ctx, start)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Period
	for _, p := range m.periods {
		if p.State != domain.PeriodClosed || !p.End.Before(start) {
			continue
		}
		if latest == nil || p.End.After(latest.End) {
			latest = p
		}
	}
	if latest == nil {
		return nil, domain.ErrPeriodNotFound
	}
	return latest, nil
}

func (m *MockPeriodRepository) LatestStartingOnOrBefore(ctx context.Context, d time.Time) (*domain.Period, error) {
	if m.LatestStartingOnOrBeforeFunc != nil {
		return m.LatestStartingOnOrBeforeFunc(ctx, d)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Period
	for _, p := range m.periods {
		if p.Start.After(d) {
			continue
		}
		if latest == nil || p.Start.After(latest.Start) {
			latest = p
		}
	}
	if latest == nil {
		return nil, domain.ErrPeriodNotFound
	}
	return latest, nil
}

func (m *MockPeriodRepository) Close(ctx context.Context, tx usecase.Transaction, id, closingEntryID string, closedAt time.Time) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, tx, id, closingEntryID, closedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[id]
	if !ok {
		return domain.ErrPeriodNotFound
	}
	if p.State == domain.PeriodClosed {
		return domain.ErrAlreadyClosed
	}
	p.State = domain.PeriodClosed
	p.ClosingEntryID = &closingEntryID
	p.UpdatedAt = closedAt
	return nil
}

func (m *MockPeriodRepository) RecordOpeningEntry(ctx context.Context, tx usecase.Transaction, id, openingEntryID string, updatedAt time.Time) error {
	if m.RecordOpeningEntryFunc != nil {
		return m.RecordOpeningEntryFunc(ctx, tx, id, openingEntryID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[id]
	if !ok {
		return domain.ErrPeriodNotFound
	}
	if p.OpeningEntryID != nil {
		return domain.ErrOpeningAlreadyRecorded
	}
	p.OpeningEntryID = &openingEntryID
	p.UpdatedAt = updatedAt
	return nil
}

// MockEntryRepository is a mock implementation of EntryRepository. Sums are
// computed from the stored entries, so a close-then-open flow round-trips
// through the mock the same way it does through SQL aggregation.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListByPeriodFunc        func(ctx context.Context, periodID string, limit, offset int) ([]*domain.JournalEntry, error)
	NextSequenceFunc        func(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error)
	SumByAccountRangeFunc   func(ctx context.Context, accountID string, from, to time.Time, excludeSystem bool) (usecase.LineSums, error)
	SumByAccountRangeTxFunc func(ctx context.Context, tx usecase.Transaction, accountID string, from, to time.Time, excludeSystem bool) (usecase.LineSums, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.JournalEntry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) ListByPeriod(ctx context.Context, periodID string, limit, offset int) ([]*domain.JournalEntry, error) {
	if m.ListByPeriodFunc != nil {
		return m.ListByPeriodFunc(ctx, periodID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.JournalEntry
	for _, e := range m.entries {
		if e.PeriodID == periodID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries, nil
}

func (m *MockEntryRepository) NextSequence(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error) {
	if m.NextSequenceFunc != nil {
		return m.NextSequenceFunc(ctx, tx, periodID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var max int64
	for _, e := range m.entries {
		if e.PeriodID == periodID && e.Sequence > max {
			max = e.Sequence
		}
	}
	return max + 1, nil
}

func (m *MockEntryRepository) SumByAccountRange(ctx context.Context, accountID string, from, to time.Time, excludeSystem bool) (usecase.LineSums, error) {
	if m.SumByAccountRangeFunc != nil {
		return m.SumByAccountRangeFunc(ctx, accountID, from, to, excludeSystem)
	}
	return m.sum(accountID, from, to, excludeSystem), nil
}

func (m *MockEntryRepository) SumByAccountRangeTx(ctx context.Context, tx usecase.Transaction, accountID string, from, to time.Time, excludeSystem bool) (usecase.LineSums, error) {
	if m.SumByAccountRangeTxFunc != nil {
		return m.SumByAccountRangeTxFunc(ctx, tx, accountID, from, to, excludeSystem)
	}
	return m.sum(accountID, from, to, excludeSystem), nil
}

func (m *MockEntryRepository) sum(accountID string, from, to time.Time, excludeSystem bool) usecase.LineSums {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sums := usecase.LineSums{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, e := range m.entries {
		if excludeSystem && e.System {
			continue
		}
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if e.Date.After(to) {
			continue
		}
		for _, line := range e.Lines {
			if line.AccountID != accountID {
				continue
			}
			sums.Debit = sums.Debit.Add(line.Debit)
			sums.Credit = sums.Credit.Add(line.Credit)
		}
	}
	return sums
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
