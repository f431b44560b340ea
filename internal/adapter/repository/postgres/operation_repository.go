package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/logger"
)

type OperationRepository struct {
	q querier
}

func (r *OperationRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (domain.Operation, error) {
	const query = `
SELECT
	transaction_id,
	account_id,
	type,
	amount_value,
	amount_currency,
	status,
	"timestamp",
	resulting_balance_amount,
	resulting_balance_currency,
	created_at
FROM operations
WHERE transaction_id = $1`

	var op domain.Operation
	if err := r.q.QueryRowContext(ctx, query, transactionID).Scan(
		&op.TransactionID,
		&op.AccountID,
		&op.Type,
		&op.AmountValue,
		&op.AmountCurrency,
		&op.Status,
		&op.Timestamp,
		&op.ResultingBalanceAmount,
		&op.ResultingBalanceCurrency,
		&op.CreatedAt,
	); err != nil {
		return domain.Operation{}, mapNoRows(err)
	}

	return op, nil
}

func (r *OperationRepository) Insert(ctx context.Context, operation domain.Operation) (domain.Operation, error) {
	const query = `
INSERT INTO operations (
	transaction_id,
	account_id,
	type,
	amount_value,
	amount_currency,
	status,
	"timestamp",
	resulting_balance_amount,
	resulting_balance_currency
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at`

	var createdAt time.Time
	if err := r.q.QueryRowContext(
		ctx,
		query,
		operation.TransactionID,
		operation.AccountID,
		operation.Type,
		operation.AmountValue,
		operation.AmountCurrency,
		operation.Status,
		operation.Timestamp,
		operation.ResultingBalanceAmount,
		operation.ResultingBalanceCurrency,
	).Scan(&createdAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Operation{}, domain.ErrDuplicateKey
		}
		logger.Error("operation repository insert failed", err, logger.Fields{
			"transactionId": operation.TransactionID.String(),
		})
		return domain.Operation{}, fmt.Errorf("insert operation: %w", err)
	}

	operation.CreatedAt = createdAt

	return operation, nil
}
