package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/repository/memory"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/usecase/services"
)

func TestProvisioningServiceCreatesAccountWithZeroBalance(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewProvisioningService(store, "BRL", nil)

	accountID := uuid.New()
	if err := svc.CreateIfNotExists(context.Background(), accountID, "owner-1", "1700000000", "ENABLED"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, err := store.Accounts().GetByID(context.Background(), accountID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !account.BalanceAmount.IsZero() {
		t.Errorf("expected zero balance, got %s", account.BalanceAmount)
	}
	if account.BalanceCurrency != "BRL" {
		t.Errorf("expected default currency BRL, got %s", account.BalanceCurrency)
	}
	if account.Status != domain.AccountStatusEnabled {
		t.Errorf("expected status ENABLED, got %s", account.Status)
	}

	expected := time.Unix(1700000000, 0).UTC()
	if !account.CreatedAt.Equal(expected) {
		t.Errorf("expected created_at %s (epoch seconds, UTC), got %s", expected, account.CreatedAt)
	}
}

func TestProvisioningServiceDuplicateDeliveryIsNoOp(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewProvisioningService(store, "BRL", nil)

	accountID := uuid.New()
	if err := svc.CreateIfNotExists(context.Background(), accountID, "owner-1", "1700000000", "ENABLED"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.CreateIfNotExists(context.Background(), accountID, "someone-else", "1800000000", "DISABLED"); err != nil {
		t.Fatalf("redelivery must be swallowed, got: %v", err)
	}

	account, _ := store.Accounts().GetByID(context.Background(), accountID)
	if account.Owner != "owner-1" {
		t.Errorf("redelivery must not refresh fields, owner became %q", account.Owner)
	}
	if account.Status != domain.AccountStatusEnabled {
		t.Errorf("redelivery must not refresh fields, status became %s", account.Status)
	}
}

func TestProvisioningServiceDefaultsForAbsentFields(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewProvisioningService(store, "BRL", nil)

	accountID := uuid.New()
	before := time.Now().UTC()
	if err := svc.CreateIfNotExists(context.Background(), accountID, "owner-1", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := store.Accounts().GetByID(context.Background(), accountID)
	if account.Status != domain.AccountStatusEnabled {
		t.Errorf("expected default status ENABLED, got %s", account.Status)
	}
	if account.CreatedAt.Before(before.Add(-time.Second)) || account.CreatedAt.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("blank created_at must default to now, got %s", account.CreatedAt)
	}
}

func TestProvisioningServiceRejectsMalformedEpoch(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewProvisioningService(store, "BRL", nil)

	err := svc.CreateIfNotExists(context.Background(), uuid.New(), "owner-1", "yesterday", "ENABLED")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
