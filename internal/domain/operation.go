package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OperationType string

const (
	OperationTypeCredit OperationType = "CREDIT"
	OperationTypeDebit  OperationType = "DEBIT"
)

type OperationStatus string

const (
	OperationStatusSucceeded OperationStatus = "SUCCEEDED"
	OperationStatusFailed    OperationStatus = "FAILED"
)

// Operation is the write-once record of one processed transaction. The
// transaction id is caller supplied and unique; a row exists for rejected
// debits too, since a FAILED outcome is a terminal result, not an error.
type Operation struct {
	TransactionID            uuid.UUID
	AccountID                uuid.UUID
	Type                     OperationType
	AmountValue              decimal.Decimal
	AmountCurrency           string
	Status                   OperationStatus
	Timestamp                time.Time
	ResultingBalanceAmount   decimal.Decimal
	ResultingBalanceCurrency string
	CreatedAt                time.Time
}
