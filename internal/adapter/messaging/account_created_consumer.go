package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/domain"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/logger"
)

type ProvisioningService interface {
	CreateIfNotExists(ctx context.Context, accountID uuid.UUID, owner string, createdAtEpoch string, status string) error
}

type AccountCreatedMessage struct {
	Account AccountPayload `json:"account"`
}

type AccountPayload struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
}

// AccountCreatedConsumer drains the account-created queue and hands each event
// to the provisioning service. Redelivered events are fine: provisioning is
// idempotent by account id.
type AccountCreatedConsumer struct {
	url     string
	queue   string
	service ProvisioningService
}

func NewAccountCreatedConsumer(url string, queue string, service ProvisioningService) *AccountCreatedConsumer {
	return &AccountCreatedConsumer{url: url, queue: queue, service: service}
}

// Run blocks consuming deliveries until ctx is cancelled or the broker
// connection drops.
func (c *AccountCreatedConsumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer channel.Close()

	if _, err := channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", c.queue, err)
	}

	deliveries, err := channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	logger.Info("account created consumer started", logger.Fields{
		"queue": c.queue,
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for queue %q closed", c.queue)
			}
			c.handleDelivery(ctx, delivery)
		}
	}
}

func (c *AccountCreatedConsumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var msg AccountCreatedMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		logger.Error("account created consumer malformed message", err, nil)
		_ = delivery.Nack(false, false)
		return
	}

	accountID, err := uuid.Parse(msg.Account.ID)
	if err != nil {
		logger.Error("account created consumer invalid account id", err, logger.Fields{
			"accountId": msg.Account.ID,
		})
		_ = delivery.Nack(false, false)
		return
	}

	err = c.service.CreateIfNotExists(ctx, accountID, msg.Account.Owner, msg.Account.CreatedAt, msg.Account.Status)
	if errors.Is(err, domain.ErrInvalidRequest) {
		// Bad payload will not get better on redelivery; drop it.
		logger.Error("account created consumer rejected message", err, logger.Fields{
			"accountId": msg.Account.ID,
		})
		_ = delivery.Nack(false, false)
		return
	}
	if err != nil {
		logger.Error("account created consumer handler failed", err, logger.Fields{
			"accountId": msg.Account.ID,
		})
		_ = delivery.Nack(false, true)
		return
	}

	_ = delivery.Ack(false)
}
