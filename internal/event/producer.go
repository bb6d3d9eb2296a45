package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sostak/Bakalauras/internal/domain"
	pkgkafka "github.com/sostak/Bakalauras/pkg/kafka"
)

// Kafka topic constants for identity domain events.
const (
	TopicIdentityRegistered  = "autoshop.identity.registered"
	TopicIdentityUpdated     = "autoshop.identity.updated"
	TopicIdentityRoleChanged = "autoshop.identity.role_changed"
)

// Aggregate type constant.
const AggregateTypeIdentity = "identity"

// Source identifier for events originating from the identity service.
const SourceIdentityService = "identity-service"

// IdentityRegisteredData is the payload for an identity.registered event.
type IdentityRegisteredData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// IdentityUpdatedData is the payload for an identity.updated event.
type IdentityUpdatedData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
}

// IdentityRoleChangedData is the payload for an identity.role_changed event.
type IdentityRoleChangedData struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PreviousRole string `json:"previous_role"`
	NewRole      string `json:"new_role"`
}

// Producer publishes identity domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the identity service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishIdentityRegistered publishes an identity.registered event.
func (p *Producer) PublishIdentityRegistered(ctx context.Context, identity *domain.Identity) error {
	data := IdentityRegisteredData{
		ID:        identity.ID,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Role:      string(identity.PrimaryRole()),
	}

	event, err := pkgkafka.NewEvent(TopicIdentityRegistered, identity.ID, AggregateTypeIdentity, SourceIdentityService, data)
	if err != nil {
		return fmt.Errorf("create identity.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicIdentityRegistered, event); err != nil {
		return fmt.Errorf("publish identity.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published identity.registered event",
		slog.String("identity_id", identity.ID),
		slog.String("email", identity.Email),
	)

	return nil
}

// PublishIdentityUpdated publishes an identity.updated event.
func (p *Producer) PublishIdentityUpdated(ctx context.Context, identity *domain.Identity) error {
	data := IdentityUpdatedData{
		ID:        identity.ID,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Phone:     identity.Phone,
		Role:      string(identity.PrimaryRole()),
	}

	event, err := pkgkafka.NewEvent(TopicIdentityUpdated, identity.ID, AggregateTypeIdentity, SourceIdentityService, data)
	if err != nil {
		return fmt.Errorf("create identity.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicIdentityUpdated, event); err != nil {
		return fmt.Errorf("publish identity.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published identity.updated event",
		slog.String("identity_id", identity.ID),
	)

	return nil
}

// PublishIdentityRoleChanged publishes an identity.role_changed event.
func (p *Producer) PublishIdentityRoleChanged(ctx context.Context, identity *domain.Identity, previousRole, newRole domain.Role) error {
	data := IdentityRoleChangedData{
		ID:           identity.ID,
		Email:        identity.Email,
		PreviousRole: string(previousRole),
		NewRole:      string(newRole),
	}

	event, err := pkgkafka.NewEvent(TopicIdentityRoleChanged, identity.ID, AggregateTypeIdentity, SourceIdentityService, data)
	if err != nil {
		return fmt.Errorf("create identity.role_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicIdentityRoleChanged, event); err != nil {
		return fmt.Errorf("publish identity.role_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published identity.role_changed event",
		slog.String("identity_id", identity.ID),
		slog.String("previous_role", string(previousRole)),
		slog.String("new_role", string(newRole)),
	)

	return nil
}
