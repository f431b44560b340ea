package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
)

type ApplyOperationRequest struct {
	Type           string          `json:"type"`
	AmountValue    decimal.Decimal `json:"amountValue"`
	AmountCurrency string          `json:"amountCurrency"`
	Timestamp      *time.Time      `json:"timestamp"`
}

func (r ApplyOperationRequest) Validate() error {
	if r.Type != string(domain.OperationTypeCredit) && r.Type != string(domain.OperationTypeDebit) {
		return fmt.Errorf("type must be CREDIT or DEBIT")
	}
	if !r.AmountValue.IsPositive() {
		return fmt.Errorf("amountValue must be > 0")
	}
	if strings.TrimSpace(r.AmountCurrency) == "" {
		return fmt.Errorf("amountCurrency is required")
	}
	if len(r.AmountCurrency) != 3 {
		return fmt.Errorf("amountCurrency must be a 3-letter code")
	}
	if r.Timestamp == nil || r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

type ApplyOperationResponse struct {
	TransactionID            uuid.UUID       `json:"transactionId"`
	AccountID                uuid.UUID       `json:"accountId"`
	Type                     string          `json:"type"`
	AmountValue              decimal.Decimal `json:"amountValue"`
	AmountCurrency           string          `json:"amountCurrency"`
	Status                   string          `json:"status"`
	Timestamp                time.Time       `json:"timestamp"`
	ResultingBalanceAmount   decimal.Decimal `json:"resultingBalanceAmount"`
	ResultingBalanceCurrency string          `json:"resultingBalanceCurrency"`
}

func ApplyOperationResponseFrom(op domain.Operation) ApplyOperationResponse {
	return ApplyOperationResponse{
		TransactionID:            op.TransactionID,
		AccountID:                op.AccountID,
		Type:                     string(op.Type),
		AmountValue:              op.AmountValue,
		AmountCurrency:           op.AmountCurrency,
		Status:                   string(op.Status),
		Timestamp:                op.Timestamp,
		ResultingBalanceAmount:   op.ResultingBalanceAmount,
		ResultingBalanceCurrency: op.ResultingBalanceCurrency,
	}
}
