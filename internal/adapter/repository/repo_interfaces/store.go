package repo_interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
)

type AccountRepository interface {
	// Create returns domain.ErrDuplicateKey when an account with the same id
	// already exists.
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error)
	// GetByIDForUpdate takes the row lock that serializes balance mutations.
	// Only meaningful inside WithinTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type OperationRepository interface {
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (domain.Operation, error)
	// Insert returns domain.ErrDuplicateKey when an operation with the same
	// transaction id already exists.
	Insert(ctx context.Context, operation domain.Operation) (domain.Operation, error)
}

type Store interface {
	Accounts() AccountRepository
	Operations() OperationRepository
	// WithinTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(store Store) error) error
}
