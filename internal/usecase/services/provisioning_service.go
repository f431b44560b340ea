package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/repository/repo_interfaces"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/logger"
)

// eventTimeLocation pins the interpretation of epoch timestamps carried by
// account-created events. Storing naive local time here would corrupt the
// created_at column, so the location is explicit rather than inherited from
// the host.
var eventTimeLocation = time.UTC

// ProvisioningService materializes accounts from account-created events. A
// redelivered event for an existing account id is a silent no-op; uniqueness
// is enforced by the insert itself, not by a prior existence check, so
// concurrent deliveries stay safe.
type ProvisioningService struct {
	store           repo_interfaces.Store
	defaultCurrency string
	recorder        MetricsRecorder
}

func NewProvisioningService(store repo_interfaces.Store, defaultCurrency string, recorder MetricsRecorder) *ProvisioningService {
	return &ProvisioningService{
		store:           store,
		defaultCurrency: strings.ToUpper(strings.TrimSpace(defaultCurrency)),
		recorder:        recorder,
	}
}

func (s *ProvisioningService) CreateIfNotExists(ctx context.Context, accountID uuid.UUID, owner string, createdAtEpoch string, status string) error {
	logger.Info("provisioning service create account", logger.Fields{
		"accountId": accountID.String(),
		"owner":     owner,
	})

	createdAt, err := parseEpochSeconds(createdAtEpoch)
	if err != nil {
		return fmt.Errorf("%w: created_at must be epoch seconds, got %q", domain.ErrInvalidRequest, createdAtEpoch)
	}

	now := time.Now().In(eventTimeLocation)
	if createdAt.IsZero() {
		createdAt = now
	}

	accountStatus := domain.AccountStatus(status)
	if strings.TrimSpace(status) == "" {
		accountStatus = domain.AccountStatusEnabled
	}

	err = s.store.Accounts().Create(ctx, domain.Account{
		ID:              accountID,
		Owner:           owner,
		Status:          accountStatus,
		BalanceAmount:   decimal.Zero,
		BalanceCurrency: s.defaultCurrency,
		CreatedAt:       createdAt,
		UpdatedAt:       now,
	})
	if errors.Is(err, domain.ErrDuplicateKey) {
		// Redelivered event. The account is already there; ack and move on.
		logger.Info("provisioning service account already exists", logger.Fields{
			"accountId": accountID.String(),
		})
		if s.recorder != nil {
			s.recorder.RecordProvisioning(false)
		}
		return nil
	}
	if err != nil {
		logger.Error("provisioning service create account failed", err, logger.Fields{
			"accountId": accountID.String(),
		})
		return fmt.Errorf("create account: %w", err)
	}

	logger.Info("provisioning service account created", logger.Fields{
		"accountId": accountID.String(),
		"currency":  s.defaultCurrency,
	})
	if s.recorder != nil {
		s.recorder.RecordProvisioning(true)
	}
	return nil
}

func parseEpochSeconds(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(seconds, 0).In(eventTimeLocation), nil
}
