package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/logger"
)

type AccountRepository struct {
	q querier
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
INSERT INTO accounts (
	id,
	owner,
	status,
	balance_amount,
	balance_currency,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.q.ExecContext(
		ctx,
		query,
		account.ID,
		account.Owner,
		account.Status,
		account.BalanceAmount,
		account.BalanceCurrency,
		account.CreatedAt,
		account.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"accountId": account.ID.String(),
		})
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.get(ctx, id, false)
}

func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.get(ctx, id, true)
}

func (r *AccountRepository) get(ctx context.Context, id uuid.UUID, forUpdate bool) (domain.Account, error) {
	query := `
SELECT id, owner, status, balance_amount, balance_currency, created_at, updated_at
FROM accounts
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	var account domain.Account
	if err := r.q.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Owner,
		&account.Status,
		&account.BalanceAmount,
		&account.BalanceCurrency,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, mapNoRows(err)
	}

	return account, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	const query = `
UPDATE accounts
SET balance_amount = $2,
    updated_at = $3
WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, amount, time.Now().UTC())
	if err != nil {
		logger.Error("account repository update balance failed", err, logger.Fields{
			"accountId": id.String(),
		})
		return fmt.Errorf("update balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update balance rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
