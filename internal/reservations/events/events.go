// Package events publishes reservation lifecycle changes to Kafka and
// consumes them for the audit log.
package events

import (
	"context"
	"fmt"
	"time"

	"stowaway/pkg/identity"
	"stowaway/pkg/kafka"
	"stowaway/pkg/logger"
	"stowaway/pkg/middleware"
	"stowaway/pkg/model"
)

const (
	TypeCreated   = "reservation.created"
	TypeUpdated   = "reservation.updated"
	TypeCancelled = "reservation.cancelled"

	SchemaVersion = "1"
	Source        = "stowaway-reservations"
)

type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	UnitID        string    `json:"unit_id"`
	UserID        string    `json:"user_id"`
	ActorID       string    `json:"actor_id"`
	StartUTC      time.Time `json:"start_utc"`
	EndUTC        time.Time `json:"end_utc"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r *model.Reservation, actor identity.Identity, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		UnitID:        r.UnitID,
		UserID:        r.UserID,
		ActorID:       actor.UserID,
		StartUTC:      r.StartUTC,
		EndUTC:        r.EndUTC,
		OccurredAt:    at.UTC(),
	}
}

// Publisher emits lifecycle events after the reservation write has committed.
type Publisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish keys messages by unit so a unit's events stay ordered on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event ReservationEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.UnitID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s message: %w", event.Type, err)
	}
	return p.producer.Publish(ctx, msg)
}

// NoopPublisher drops events. It is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ReservationEvent) error { return nil }

// AuditHandler writes every consumed lifecycle event to the log.
func AuditHandler(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event ReservationEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}

		switch event.Type {
		case TypeCreated, TypeUpdated, TypeCancelled:
		default:
			return kafka.NewPermanentError(fmt.Sprintf("unknown reservation event type %q", event.Type), nil)
		}

		log.Info("Reservation lifecycle event",
			"event_id", msg.GetEventID(),
			"correlation_id", msg.GetCorrelationID(),
			"type", event.Type,
			"reservation_id", event.ReservationID,
			"unit_id", event.UnitID,
			"user_id", event.UserID,
			"actor_id", event.ActorID,
			"start_utc", event.StartUTC,
			"end_utc", event.EndUTC,
			"occurred_at", event.OccurredAt,
		)
		return nil
	}
}

// DLQTopic names the dead letter topic paired with topic.
func DLQTopic(topic string) string {
	return topic + ".dlq"
}
