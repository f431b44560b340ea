package controller_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/http/controller"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/http/models"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/http/router"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/repository/memory"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/usecase/services"
)

func newServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	svc := services.NewLedgerService(store, nil)
	mux := router.New(controller.NewOperationsController(svc), nil)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func seedAccount(t *testing.T, store *memory.Store, balance string, currency string) domain.Account {
	t.Helper()

	account := domain.Account{
		ID:              uuid.New(),
		Owner:           "owner-1",
		Status:          domain.AccountStatusEnabled,
		BalanceAmount:   decimal.RequireFromString(balance),
		BalanceCurrency: currency,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := store.Accounts().Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func applyOperation(t *testing.T, server *httptest.Server, accountID string, transactionID string, body string) *http.Response {
	t.Helper()

	url := fmt.Sprintf("%s/accounts/%s/operations/%s", server.URL, accountID, transactionID)
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post operation: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestApplyOperationCreditSucceeds(t *testing.T) {
	server, store := newServer(t)
	account := seedAccount(t, store, "100.00", "BRL")
	transactionID := uuid.NewString()

	resp := applyOperation(t, server, account.ID.String(), transactionID,
		`{"type":"CREDIT","amountValue":25.50,"amountCurrency":"BRL","timestamp":"2025-12-30T12:00:00-03:00"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload models.ApplyOperationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "SUCCEEDED" {
		t.Errorf("expected status SUCCEEDED, got %s", payload.Status)
	}
	if payload.TransactionID.String() != transactionID {
		t.Errorf("expected transactionId %s, got %s", transactionID, payload.TransactionID)
	}
	if !payload.ResultingBalanceAmount.Equal(decimal.RequireFromString("125.50")) {
		t.Errorf("expected resultingBalanceAmount 125.50, got %s", payload.ResultingBalanceAmount)
	}
}

func TestApplyOperationInsufficientFundsIsStillHTTP200(t *testing.T) {
	server, store := newServer(t)
	account := seedAccount(t, store, "50.00", "BRL")

	resp := applyOperation(t, server, account.ID.String(), uuid.NewString(),
		`{"type":"DEBIT","amountValue":70.00,"amountCurrency":"BRL","timestamp":"2025-12-30T12:00:00-03:00"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("a rejected debit travels in the success envelope, got %d", resp.StatusCode)
	}

	var payload models.ApplyOperationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "FAILED" {
		t.Errorf("expected status FAILED, got %s", payload.Status)
	}
	if !payload.ResultingBalanceAmount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("expected resultingBalanceAmount 50.00, got %s", payload.ResultingBalanceAmount)
	}
}

func TestApplyOperationReplayReturnsSameResponse(t *testing.T) {
	server, store := newServer(t)
	account := seedAccount(t, store, "100.00", "BRL")
	transactionID := uuid.NewString()
	body := `{"type":"DEBIT","amountValue":40.00,"amountCurrency":"BRL","timestamp":"2025-12-30T12:00:00-03:00"}`

	first := applyOperation(t, server, account.ID.String(), transactionID, body)
	second := applyOperation(t, server, account.ID.String(), transactionID, body)

	if first.StatusCode != http.StatusOK || second.StatusCode != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", first.StatusCode, second.StatusCode)
	}

	var one, two models.ApplyOperationResponse
	_ = json.NewDecoder(first.Body).Decode(&one)
	_ = json.NewDecoder(second.Body).Decode(&two)
	if one.Status != two.Status || !one.ResultingBalanceAmount.Equal(two.ResultingBalanceAmount) {
		t.Errorf("replay diverged: first=%+v second=%+v", one, two)
	}

	stored, _ := store.Accounts().GetByID(context.Background(), account.ID)
	if !stored.BalanceAmount.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("balance must move exactly once, got %s", stored.BalanceAmount)
	}
}

func TestApplyOperationUnknownAccountIs404(t *testing.T) {
	server, _ := newServer(t)

	resp := applyOperation(t, server, uuid.NewString(), uuid.NewString(),
		`{"type":"CREDIT","amountValue":10.00,"amountCurrency":"BRL","timestamp":"2025-12-30T12:00:00-03:00"}`)

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	assertErrorBody(t, resp, "NOT_FOUND")
}

func TestApplyOperationCurrencyMismatchIs400(t *testing.T) {
	server, store := newServer(t)
	account := seedAccount(t, store, "100.00", "BRL")

	resp := applyOperation(t, server, account.ID.String(), uuid.NewString(),
		`{"type":"DEBIT","amountValue":10.00,"amountCurrency":"USD","timestamp":"2025-12-30T12:00:00-03:00"}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	assertErrorBody(t, resp, "BAD_REQUEST")
}

func TestApplyOperationValidation(t *testing.T) {
	server, store := newServer(t)
	account := seedAccount(t, store, "100.00", "BRL")

	cases := map[string]string{
		"unknown type":      `{"type":"TRANSFER","amountValue":10.00,"amountCurrency":"BRL","timestamp":"2025-12-30T12:00:00-03:00"}`,
		"zero amount":       `{"type":"DEBIT","amountValue":0,"amountCurrency":"BRL","timestamp":"2025-12-30T12:00:00-03:00"}`,
		"missing timestamp": `{"type":"DEBIT","amountValue":10.00,"amountCurrency":"BRL"}`,
		"invalid body":      `{`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := applyOperation(t, server, account.ID.String(), uuid.NewString(), body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestApplyOperationRejectsMalformedIDs(t *testing.T) {
	server, _ := newServer(t)

	resp := applyOperation(t, server, "not-a-uuid", uuid.NewString(),
		`{"type":"CREDIT","amountValue":10.00,"amountCurrency":"BRL","timestamp":"2025-12-30T12:00:00-03:00"}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func assertErrorBody(t *testing.T, resp *http.Response, code string) {
	t.Helper()

	var body struct {
		Timestamp string `json:"timestamp"`
		Error     string `json:"error"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != code {
		t.Errorf("expected error code %s, got %s", code, body.Error)
	}
	if body.Message == "" {
		t.Errorf("expected a message in the error body")
	}
}
