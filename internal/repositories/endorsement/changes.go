package endorsement

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

	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

const changesTableName = "endorsement_changes"

// changePageLimit caps the number of changes loaded alongside an endorsement.
const changePageLimit = 200

var changeColumns = []string{
	"id", "endorsement_id", "stage", "change_type", "summary", "details",
	"created_by", "created_at", "updated_at", "is_active",
}

// CreateChange records a change captured on one stage of an endorsement.
func (r *Repository) CreateChange(ctx context.Context, actor string, endorsementID string, req models.CreateEndorsementChangeRequest) (*models.EndorsementChange, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.CreateChange")
	defer span.End()

	if _, err := r.GetByID(ctx, endorsementID); err != nil {
		return nil, err
	}
	if !models.ValidStage(models.EndorsementStage(req.Stage)) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid stage supplied.")
	}
	if !models.ValidChangeType(models.ChangeType(req.ChangeType)) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid change type supplied.")
	}

	details := "{}"
	if len(req.Details) > 0 {
		details = string(req.Details)
	}

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(changesTableName)
	sb.Cols("id", "endorsement_id", "stage", "change_type", "summary", "details", "created_by", "created_at", "updated_at", "is_active")
	sb.Values(id, endorsementID, req.Stage, req.ChangeType, req.Summary, details, actor, now, now, true)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create endorsement change", zap.Error(err), zap.String("endorsement_id", endorsementID))
		return nil, fmt.Errorf("failed to create endorsement change: %w", err)
	}

	r.logger.Info("created endorsement change",
		zap.String("id", id),
		zap.String("endorsement_id", endorsementID),
		zap.String("change_type", req.ChangeType),
	)
	return r.GetChange(ctx, id)
}

// GetChange gets a single endorsement change by ID
func (r *Repository) GetChange(ctx context.Context, id string) (*models.EndorsementChange, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.GetChange")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(changeColumns...)
	sb.From(changesTableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var c models.EndorsementChange
	if err := r.db.GetContext(ctx, &c, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "endorsement change not found")
		}
		r.logger.Error("failed to get endorsement change", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get endorsement change: %w", err)
	}

	return &c, nil
}

// ListChanges lists endorsement changes, oldest first, filterable by
// endorsement, change type and stage.
func (r *Repository) ListChanges(ctx context.Context, filter models.ChangeFilter) ([]models.EndorsementChange, int, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.ListChanges")
	defer span.End()

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > changePageLimit {
		filter.PageSize = changePageLimit
	}

	apply := func(sb *sqlbuilder.SelectBuilder) {
		sb.Where(sb.Equal("is_active", true))
		if filter.EndorsementID != "" {
			sb.Where(sb.Equal("endorsement_id", filter.EndorsementID))
		}
		if filter.ChangeType != "" {
			sb.Where(sb.Equal("change_type", filter.ChangeType))
		}
		if filter.Stage != "" {
			sb.Where(sb.Equal("stage", filter.Stage))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(changesTableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count endorsement changes", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count endorsement changes: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(changeColumns...)
	sb.From(changesTableName)
	apply(sb)
	sb.OrderBy("created_at ASC")
	sb.Limit(filter.PageSize)
	sb.Offset((filter.Page - 1) * filter.PageSize)

	query, args := sb.Build()

	items := []models.EndorsementChange{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list endorsement changes", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list endorsement changes: %w", err)
	}

	return items, totalCount, nil
}
