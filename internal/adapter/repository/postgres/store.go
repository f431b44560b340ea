package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/repository/repo_interfaces"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the repositories can run
// against either the pool or an open transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	q  querier

	accounts   *AccountRepository
	operations *OperationRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q querier) *Store {
	return &Store{
		db:         db,
		q:          q,
		accounts:   &AccountRepository{q: q},
		operations: &OperationRepository{q: q},
	}
}

func (s *Store) Accounts() repo_interfaces.AccountRepository {
	return s.accounts
}

func (s *Store) Operations() repo_interfaces.OperationRepository {
	return s.operations
}

func (s *Store) WithinTx(ctx context.Context, fn func(store repo_interfaces.Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(newStore(s.db, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

var _ repo_interfaces.Store = (*Store)(nil)

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRecordNotFound
	}
	return err
}
