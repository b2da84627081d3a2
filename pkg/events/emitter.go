// Package events handles event emission for activity log entries
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/pkg/kafka"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// ActivityEvent is the wire schema for an activity entry published to Kafka.
type ActivityEvent struct {
	SchemaVersion string     `json:"schema_version"`
	EventType     string     `json:"event_type"`
	ActivityID    string     `json:"activity_id"`
	ActionType    string     `json:"action_type"`
	ActionLabel   string     `json:"action_label"`
	Description   string     `json:"description"`
	ClientID      *string    `json:"client_id,omitempty"`
	PolicyID      *string    `json:"policy_id,omitempty"`
	EndorsementID *string    `json:"endorsement_id,omitempty"`
	VehicleID     *string    `json:"vehicle_id,omitempty"`
	DriverID      *string    `json:"driver_id,omitempty"`
	PerformedBy   *string    `json:"performed_by,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
	PublishedAt   time.Time  `json:"published_at"`
}

// Emitter publishes activity events. A nil producer disables emission, so
// callers never need to gate on configuration.
type Emitter struct {
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger *zap.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitActivity publishes an activity.recorded event keyed by the related
// client when present, falling back to the activity id.
func (e *Emitter) EmitActivity(ctx context.Context, entry *models.ActivityLog) error {
	if e == nil || e.producer == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitActivity")
	defer span.End()

	event := &ActivityEvent{
		SchemaVersion: SchemaVersion,
		EventType:     "activity.recorded",
		ActivityID:    entry.ID,
		ActionType:    string(entry.ActionType),
		ActionLabel:   entry.ActionType.Label(),
		Description:   entry.Description,
		ClientID:      entry.ClientID,
		PolicyID:      entry.PolicyID,
		EndorsementID: entry.EndorsementID,
		VehicleID:     entry.VehicleID,
		DriverID:      entry.DriverID,
		PerformedBy:   entry.PerformedBy,
		OccurredAt:    entry.Timestamp,
		PublishedAt:   time.Now().UTC(),
	}

	key := entry.ID
	if entry.ClientID != nil && *entry.ClientID != "" {
		key = *entry.ClientID
	}

	headers := map[string]string{
		"event_type":     event.EventType,
		"action_type":    event.ActionType,
		"schema_version": SchemaVersion,
	}

	if err := e.producer.Publish(ctx, key, event, headers); err != nil {
		e.logger.Error("failed to emit activity event",
			zap.Error(err), zap.String("activity_id", entry.ID), zap.String("action_type", event.ActionType))
		return err
	}

	return nil
}
