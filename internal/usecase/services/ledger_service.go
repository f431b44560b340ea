package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/repository/repo_interfaces"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/logger"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/metrics"
)

// MetricsRecorder is the slice of the metrics collector the services use.
// A nil recorder disables instrumentation.
type MetricsRecorder interface {
	RecordOperation(outcome string, duration time.Duration)
	RecordProvisioning(created bool)
}

type ApplyOperationCommand struct {
	AccountID      uuid.UUID
	TransactionID  uuid.UUID
	Type           domain.OperationType
	AmountValue    decimal.Decimal
	AmountCurrency string
	Timestamp      time.Time
}

// LedgerService applies credit/debit operations to accounts, exactly once per
// transaction id. The unique key on the operation log is the linearization
// point: the replay fast-path below is only an optimization to skip the row
// lock for transaction ids that are already known.
type LedgerService struct {
	store    repo_interfaces.Store
	recorder MetricsRecorder
}

func NewLedgerService(store repo_interfaces.Store, recorder MetricsRecorder) *LedgerService {
	return &LedgerService{store: store, recorder: recorder}
}

func (s *LedgerService) Apply(ctx context.Context, cmd ApplyOperationCommand) (domain.Operation, error) {
	started := time.Now()

	logger.Info("ledger service apply operation", logger.Fields{
		"accountId":     cmd.AccountID.String(),
		"transactionId": cmd.TransactionID.String(),
		"type":          string(cmd.Type),
		"amountValue":   cmd.AmountValue.String(),
		"currency":      cmd.AmountCurrency,
	})

	if err := cmd.validate(); err != nil {
		logger.Error("ledger service apply validation failed", err, logger.Fields{
			"transactionId": cmd.TransactionID.String(),
		})
		return domain.Operation{}, err
	}

	existing, err := s.store.Operations().FindByTransactionID(ctx, cmd.TransactionID)
	if err == nil {
		logger.Info("ledger service replaying stored outcome", logger.Fields{
			"transactionId": cmd.TransactionID.String(),
			"status":        string(existing.Status),
		})
		s.record(metrics.OutcomeReplayed, started)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		s.record(metrics.OutcomeError, started)
		return domain.Operation{}, fmt.Errorf("replay check: %w", err)
	}

	var applied domain.Operation
	txErr := s.store.WithinTx(ctx, func(store repo_interfaces.Store) error {
		account, err := store.Accounts().GetByIDForUpdate(ctx, cmd.AccountID)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, cmd.AccountID)
		}
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		if !strings.EqualFold(cmd.AmountCurrency, account.BalanceCurrency) {
			return fmt.Errorf("%w: operation currency %q does not match account currency %q",
				domain.ErrCurrencyMismatch, cmd.AmountCurrency, account.BalanceCurrency)
		}

		resulting, status := resolveOutcome(account.BalanceAmount, cmd.Type, cmd.AmountValue)

		// The operation row goes in before the balance moves: its primary key
		// on transaction_id decides who wins a concurrent race.
		applied, err = store.Operations().Insert(ctx, domain.Operation{
			TransactionID:            cmd.TransactionID,
			AccountID:                cmd.AccountID,
			Type:                     cmd.Type,
			AmountValue:              cmd.AmountValue,
			AmountCurrency:           cmd.AmountCurrency,
			Status:                   status,
			Timestamp:                cmd.Timestamp,
			ResultingBalanceAmount:   resulting,
			ResultingBalanceCurrency: account.BalanceCurrency,
		})
		if err != nil {
			return err
		}

		if status == domain.OperationStatusSucceeded {
			if err := store.Accounts().UpdateBalance(ctx, account.ID, resulting); err != nil {
				return fmt.Errorf("update balance: %w", err)
			}
		}

		return nil
	})

	if txErr == nil {
		logger.Info("ledger service apply operation done", logger.Fields{
			"transactionId":          cmd.TransactionID.String(),
			"status":                 string(applied.Status),
			"resultingBalanceAmount": applied.ResultingBalanceAmount.String(),
		})
		if applied.Status == domain.OperationStatusSucceeded {
			s.record(metrics.OutcomeSucceeded, started)
		} else {
			s.record(metrics.OutcomeFailed, started)
		}
		return applied, nil
	}

	if errors.Is(txErr, domain.ErrDuplicateKey) {
		// Another caller inserted the same transaction id while we held the
		// lock attempt. Its row is the outcome; return it instead of failing.
		winner, findErr := s.store.Operations().FindByTransactionID(ctx, cmd.TransactionID)
		if findErr != nil {
			logger.Error("ledger service duplicate insert but operation missing", findErr, logger.Fields{
				"transactionId": cmd.TransactionID.String(),
			})
			s.record(metrics.OutcomeError, started)
			return domain.Operation{}, fmt.Errorf("insert operation: %w", txErr)
		}
		logger.Info("ledger service recovered duplicate insert race", logger.Fields{
			"transactionId": cmd.TransactionID.String(),
			"status":        string(winner.Status),
		})
		s.record(metrics.OutcomeReplayed, started)
		return winner, nil
	}

	if !errors.Is(txErr, domain.ErrAccountNotFound) && !errors.Is(txErr, domain.ErrCurrencyMismatch) {
		s.record(metrics.OutcomeError, started)
	}

	return domain.Operation{}, txErr
}

func (cmd ApplyOperationCommand) validate() error {
	if cmd.Type != domain.OperationTypeCredit && cmd.Type != domain.OperationTypeDebit {
		return fmt.Errorf("%w: type must be CREDIT or DEBIT", domain.ErrInvalidRequest)
	}
	if !cmd.AmountValue.IsPositive() {
		return fmt.Errorf("%w: amountValue must be > 0", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(cmd.AmountCurrency) == "" {
		return fmt.Errorf("%w: amountCurrency is required", domain.ErrInvalidRequest)
	}
	if len(cmd.AmountCurrency) != 3 {
		return fmt.Errorf("%w: amountCurrency must be a 3-letter code", domain.ErrInvalidRequest)
	}
	if cmd.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", domain.ErrInvalidRequest)
	}
	return nil
}

// resolveOutcome is a pure function of the current balance and the request. A
// debit that would go negative fails and leaves the balance untouched.
func resolveOutcome(current decimal.Decimal, operationType domain.OperationType, amount decimal.Decimal) (decimal.Decimal, domain.OperationStatus) {
	if operationType == domain.OperationTypeCredit {
		return current.Add(amount), domain.OperationStatusSucceeded
	}

	candidate := current.Sub(amount)
	if candidate.IsNegative() {
		return current, domain.OperationStatusFailed
	}
	return candidate, domain.OperationStatusSucceeded
}

func (s *LedgerService) record(outcome string, started time.Time) {
	if s.recorder != nil {
		s.recorder.RecordOperation(outcome, time.Since(started))
	}
}
