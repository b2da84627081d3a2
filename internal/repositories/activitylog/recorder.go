package activitylog

import (
	"context"

	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/pkg/events"
	"github.com/lowerzedo/ims-api/pkg/models"
)

// Recorder stores activity entries and publishes them to the event stream.
// Emission is best effort; a publish failure never fails the request.
type Recorder struct {
	repo    ActivityLogRepository
	emitter *events.Emitter
	logger  *zap.Logger
}

// NewRecorder creates a new activity recorder
func NewRecorder(repo ActivityLogRepository, emitter *events.Emitter, logger *zap.Logger) *Recorder {
	return &Recorder{
		repo:    repo,
		emitter: emitter,
		logger:  logger,
	}
}

// Record appends an activity entry and emits the corresponding event.
func (r *Recorder) Record(ctx context.Context, actor string, req models.CreateActivityLogRequest) (*models.ActivityLog, error) {
	entry, err := r.repo.Create(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	if err := r.emitter.EmitActivity(ctx, entry); err != nil {
		r.logger.Warn("activity event emission failed",
			zap.Error(err), zap.String("activity_id", entry.ID), zap.String("action_type", string(entry.ActionType)))
	}

	return entry, nil
}

// RecordSystem appends a lifecycle entry from inside another handler. Failures
// are logged and swallowed so the triggering operation still succeeds.
func (r *Recorder) RecordSystem(ctx context.Context, actor string, req models.CreateActivityLogRequest) {
	if _, err := r.Record(ctx, actor, req); err != nil {
		r.logger.Warn("failed to record activity",
			zap.Error(err), zap.String("action_type", req.ActionType))
	}
}
