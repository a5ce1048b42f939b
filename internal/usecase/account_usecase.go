package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/metrics"
)

// AccountUseCase handles chart-of-accounts management.
type AccountUseCase struct {
	accountRepo AccountRepository
	periodRepo  PeriodRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, periodRepo PeriodRepository, entryRepo EntryRepository, idGen IDGenerator, metrics *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		periodRepo:  periodRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Code           string
	Name           string
	ParentCode     *string
	Classification domain.Classification
	Nature         domain.Nature
	Postable       bool
}

// CreateAccount creates a new account in the chart.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, actor *domain.User, input CreateAccountInput) (*domain.Account, error) {
	if actor != nil && !actor.Role.CanManageChart() {
		return nil, domain.ErrInsufficientRole
	}

	if err := domain.ValidateAccountCode(input.Code); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if !input.Classification.IsValid() {
		return nil, domain.ErrInvalidHierarchy
	}

	if !input.Nature.IsValid() {
		return nil, domain.ErrInvalidHierarchy
	}

	if _, err := uc.accountRepo.GetByCode(ctx, input.Code); err == nil {
		return nil, domain.ErrDuplicateCode
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	// A postable account always hangs off a group account; only group
	// accounts may be roots.
	if input.Postable && input.ParentCode == nil {
		return nil, domain.ErrInvalidHierarchy
	}

	var parentID *string
	if input.ParentCode != nil {
		parent, err := uc.accountRepo.GetByCode(ctx, *input.ParentCode)
		if err != nil {
			return nil, err
		}

		if parent.Postable {
			return nil, domain.ErrInvalidHierarchy
		}

		parentID = &parent.ID
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Code:           input.Code,
		Name:           input.Name,
		ParentID:       parentID,
		Classification: input.Classification,
		Nature:         input.Nature,
		Postable:       input.Postable,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// DeactivateAccount soft-deletes an account. Accounts are never hard-deleted:
// history stays queryable, only new postings are rejected. Re-deactivating an
// already inactive account is a no-op.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, actor *domain.User, code string) error {
	if actor != nil && !actor.Role.CanManageChart() {
		return domain.ErrInsufficientRole
	}

	account, err := uc.accountRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}

	if !account.Active {
		return nil
	}

	hasChildren, err := uc.accountRepo.HasActiveChildren(ctx, account.ID)
	if err != nil {
		return err
	}

	if hasChildren {
		return domain.ErrHasActiveChildren
	}

	if account.Postable {
		// The current balance lives entirely in the latest period: its opening
		// entry restated everything that came before.
		var from time.Time

		latest, err := uc.periodRepo.LatestStartingOnOrBefore(ctx, farFuture)
		switch {
		case err == nil:
			from = latest.Start
		case !errors.Is(err, domain.ErrPeriodNotFound):
			return err
		}

		sums, err := uc.entryRepo.SumByAccountRange(ctx, account.ID, from, farFuture, false)
		if err != nil {
			return err
		}

		if !account.Nature.SignedBalance(sums.Debit, sums.Credit).IsZero() {
			return domain.ErrNonZeroBalance
		}
	}

	if err := uc.accountRepo.SetActive(ctx, account.ID, false, time.Now().UTC()); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsDeactivated.Inc()
	}

	return nil
}

// ResolvePostable returns the account if it may receive line items, failing
// with ErrAccountNotPostable or ErrAccountInactive otherwise.
func (uc *AccountUseCase) ResolvePostable(ctx context.Context, code string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := account.Resolvable(); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by code.
func (uc *AccountUseCase) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	return uc.accountRepo.GetByCode(ctx, code)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists the chart of accounts ordered by code.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 100
	}

	if input.Limit > 1000 {
		input.Limit = 1000
	}

	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}
