// Package activitylog stores the append-only audit feed.
package activitylog

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/database"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

// ActivityLogRepository defines the interface for activity log operations.
// Entries are append only; there is no update or delete.
type ActivityLogRepository interface {
	Create(ctx context.Context, actor string, req models.CreateActivityLogRequest) (*models.ActivityLog, error)
	GetByID(ctx context.Context, id string) (*models.ActivityLog, error)
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error)
}

// Repository implements ActivityLogRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new activity log repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "activity_logs"

const defaultPageSize = 50
const maxPageSize = 200

var activityColumns = []string{
	"id", "action_type", "transaction_name", "description", "notes",
	"timestamp", "client_id", "policy_id", "endorsement_id", "vehicle_id",
	"driver_id", "performed_by", "metadata",
}

// Create appends an activity entry
func (r *Repository) Create(ctx context.Context, actor string, req models.CreateActivityLogRequest) (*models.ActivityLog, error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityLogRepository.Create")
	defer span.End()

	if !models.ValidActionType(models.ActionType(req.ActionType)) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid action type supplied.")
	}

	metadata := "{}"
	if len(req.Metadata) > 0 {
		metadata = string(req.Metadata)
	}

	id := uuid.New().String()
	now := time.Now()

	var performedBy *string
	if actor != "" {
		performedBy = &actor
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(
		"id", "action_type", "transaction_name", "description", "notes",
		"timestamp", "client_id", "policy_id", "endorsement_id", "vehicle_id",
		"driver_id", "performed_by", "metadata",
	)
	sb.Values(
		id, req.ActionType, req.TransactionName, req.Description, req.Notes,
		now, req.ClientID, req.PolicyID, req.EndorsementID, req.VehicleID,
		req.DriverID, performedBy, metadata,
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create activity log", zap.Error(err), zap.String("action_type", req.ActionType))
		return nil, fmt.Errorf("failed to create activity log: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID gets an activity entry by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.ActivityLog, error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityLogRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(activityColumns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var entry models.ActivityLog
	if err := r.db.GetContext(ctx, &entry, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "activity log entry not found")
		}
		r.logger.Error("failed to get activity log", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get activity log: %w", err)
	}

	return &entry, nil
}

// List reads the activity feed, newest first
func (r *Repository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ActivityLogRepository.List")
	defer span.End()

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	apply := func(sb *sqlbuilder.SelectBuilder) {
		if filter.ClientID != "" {
			sb.Where(sb.Equal("client_id", filter.ClientID))
		}
		if filter.PolicyID != "" {
			sb.Where(sb.Equal("policy_id", filter.PolicyID))
		}
		if filter.EndorsementID != "" {
			sb.Where(sb.Equal("endorsement_id", filter.EndorsementID))
		}
		if filter.ActionType != "" {
			sb.Where(sb.Equal("action_type", filter.ActionType))
		}
		if filter.PerformedBy != "" {
			sb.Where(sb.Equal("performed_by", filter.PerformedBy))
		}
		if filter.From != nil {
			sb.Where(sb.GreaterEqualThan("timestamp", *filter.From))
		}
		if filter.To != nil {
			sb.Where(sb.LessEqualThan("timestamp", *filter.To))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count activity logs", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(activityColumns...)
	sb.From(tableName)
	apply(sb)
	sb.OrderBy("timestamp DESC")
	sb.Limit(filter.PageSize)
	sb.Offset((filter.Page - 1) * filter.PageSize)

	query, args := sb.Build()

	items := []models.ActivityLog{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list activity logs", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	return items, totalCount, nil
}
