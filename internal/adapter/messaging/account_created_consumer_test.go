package messaging

import (
	"context"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type recordingService struct {
	calls []provisioningCall
}

type provisioningCall struct {
	accountID uuid.UUID
	owner     string
	createdAt string
	status    string
}

func (s *recordingService) CreateIfNotExists(_ context.Context, accountID uuid.UUID, owner string, createdAtEpoch string, status string) error {
	s.calls = append(s.calls, provisioningCall{accountID: accountID, owner: owner, createdAt: createdAtEpoch, status: status})
	return nil
}

func TestHandleDeliveryDispatchesAccountPayload(t *testing.T) {
	service := &recordingService{}
	consumer := NewAccountCreatedConsumer("amqp://localhost", "conta-bancaria-criada", service)

	accountID := uuid.New()
	body := `{"account":{"id":"` + accountID.String() + `","owner":"owner-1","created_at":"1700000000","status":"ENABLED"}}`

	consumer.handleDelivery(context.Background(), amqp.Delivery{Body: []byte(body)})

	if len(service.calls) != 1 {
		t.Fatalf("expected one provisioning call, got %d", len(service.calls))
	}
	call := service.calls[0]
	if call.accountID != accountID {
		t.Errorf("expected account id %s, got %s", accountID, call.accountID)
	}
	if call.owner != "owner-1" || call.createdAt != "1700000000" || call.status != "ENABLED" {
		t.Errorf("payload fields not forwarded verbatim: %+v", call)
	}
}

func TestHandleDeliveryDropsMalformedJSON(t *testing.T) {
	service := &recordingService{}
	consumer := NewAccountCreatedConsumer("amqp://localhost", "conta-bancaria-criada", service)

	consumer.handleDelivery(context.Background(), amqp.Delivery{Body: []byte(`{"account":`)})

	if len(service.calls) != 0 {
		t.Fatalf("malformed messages must not reach the service, got %d calls", len(service.calls))
	}
}

func TestHandleDeliveryDropsInvalidAccountID(t *testing.T) {
	service := &recordingService{}
	consumer := NewAccountCreatedConsumer("amqp://localhost", "conta-bancaria-criada", service)

	consumer.handleDelivery(context.Background(), amqp.Delivery{
		Body: []byte(`{"account":{"id":"42","owner":"owner-1","created_at":"1700000000","status":"ENABLED"}}`),
	})

	if len(service.calls) != 0 {
		t.Fatalf("invalid account ids must not reach the service, got %d calls", len(service.calls))
	}
}
