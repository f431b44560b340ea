// Package memory holds an in-memory Store used by the unit tests. A single
// mutex plays the role of the database: WithinTx serializes every unit of
// work, so two concurrent mutations of the same account never interleave.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/repository/repo_interfaces"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
)

type Store struct {
	mu         sync.Mutex
	inTx       bool
	accounts   map[uuid.UUID]domain.Account
	operations map[uuid.UUID]domain.Operation
}

func NewStore() *Store {
	return &Store{
		accounts:   make(map[uuid.UUID]domain.Account),
		operations: make(map[uuid.UUID]domain.Operation),
	}
}

func (s *Store) Accounts() repo_interfaces.AccountRepository {
	return (*accountRepository)(s)
}

func (s *Store) Operations() repo_interfaces.OperationRepository {
	return (*operationRepository)(s)
}

func (s *Store) WithinTx(ctx context.Context, fn func(store repo_interfaces.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txStore := &Store{inTx: true, accounts: s.accounts, operations: s.operations}
	return fn(txStore)
}

var _ repo_interfaces.Store = (*Store)(nil)

type accountRepository Store

func (r *accountRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *accountRepository) Create(_ context.Context, account domain.Account) error {
	defer r.lock()()

	if _, ok := r.accounts[account.ID]; ok {
		return domain.ErrDuplicateKey
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *accountRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Account, error) {
	defer r.lock()()

	account, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return account, nil
}

func (r *accountRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *accountRepository) UpdateBalance(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	defer r.lock()()

	account, ok := r.accounts[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	account.BalanceAmount = amount
	account.UpdatedAt = time.Now().UTC()
	r.accounts[id] = account
	return nil
}

type operationRepository Store

func (r *operationRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *operationRepository) FindByTransactionID(_ context.Context, transactionID uuid.UUID) (domain.Operation, error) {
	defer r.lock()()

	op, ok := r.operations[transactionID]
	if !ok {
		return domain.Operation{}, domain.ErrRecordNotFound
	}
	return op, nil
}

func (r *operationRepository) Insert(_ context.Context, operation domain.Operation) (domain.Operation, error) {
	defer r.lock()()

	if _, ok := r.operations[operation.TransactionID]; ok {
		return domain.Operation{}, domain.ErrDuplicateKey
	}
	operation.CreatedAt = time.Now().UTC()
	r.operations[operation.TransactionID] = operation
	return operation, nil
}
