package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/http/models"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/commons"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/usecase/services"
)

type LedgerService interface {
	Apply(ctx context.Context, cmd services.ApplyOperationCommand) (domain.Operation, error)
}

type OperationsController struct {
	service LedgerService
}

func NewOperationsController(service LedgerService) *OperationsController {
	return &OperationsController{service: service}
}

func (c *OperationsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /accounts/{accountId}/operations/{transactionId}", c.applyOperation)
}

func (c *OperationsController) applyOperation(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("accountId"))
	if err != nil {
		commons.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "accountId must be a valid UUID")
		return
	}

	transactionID, err := uuid.Parse(r.PathValue("transactionId"))
	if err != nil {
		commons.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "transactionId must be a valid UUID")
		return
	}

	var req models.ApplyOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commons.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		commons.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := c.service.Apply(r.Context(), services.ApplyOperationCommand{
		AccountID:      accountID,
		TransactionID:  transactionID,
		Type:           domain.OperationType(req.Type),
		AmountValue:    req.AmountValue,
		AmountCurrency: req.AmountCurrency,
		Timestamp:      *req.Timestamp,
	})

	switch {
	case err == nil:
		// Both SUCCEEDED and FAILED outcomes come back as 200; the status
		// field carries the verdict.
		commons.WriteJSON(w, http.StatusOK, models.ApplyOperationResponseFrom(result))
	case errors.Is(err, domain.ErrAccountNotFound):
		commons.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrCurrencyMismatch):
		commons.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		commons.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "unable to process the operation right now")
	}
}
