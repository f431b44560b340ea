package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusEnabled  AccountStatus = "ENABLED"
	AccountStatusDisabled AccountStatus = "DISABLED"
)

type Account struct {
	ID              uuid.UUID
	Owner           string
	Status          AccountStatus
	BalanceAmount   decimal.Decimal
	BalanceCurrency string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
