package assignment

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

// PolicyDriverRepository defines the interface for policy driver assignments
type PolicyDriverRepository interface {
	Create(ctx context.Context, req models.CreatePolicyDriverRequest) (*models.PolicyDriver, error)
	GetByID(ctx context.Context, id string) (*models.PolicyDriver, error)
	List(ctx context.Context, policyID string, params models.ListParams) ([]models.PolicyDriver, int, error)
	Update(ctx context.Context, id string, req models.UpdatePolicyDriverRequest) (*models.PolicyDriver, error)
	Delete(ctx context.Context, id string) error
}

// DriverRepository implements PolicyDriverRepository
type DriverRepository struct {
	db     database.DB
	logger *zap.Logger
}

// NewDriverRepository creates a new policy driver repository
func NewDriverRepository(db database.DB, logger *zap.Logger) *DriverRepository {
	return &DriverRepository{
		db:     db,
		logger: logger,
	}
}

const driverTableName = "policy_drivers"

var policyDriverColumns = []string{
	"id", "policy_id", "driver_id", "status",
	"created_at", "updated_at", "is_active",
}

// Create assigns a driver to a policy
func (r *DriverRepository) Create(ctx context.Context, req models.CreatePolicyDriverRequest) (*models.PolicyDriver, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyDriverRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	status := req.Status
	if status == "" {
		status = models.PolicyDriverStatusActive
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(driverTableName)
	sb.Cols("id", "policy_id", "driver_id", "status", "created_at", "updated_at", "is_active")
	sb.Values(id, req.PolicyID, req.DriverID, status, now, now, true)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "policy_drivers_policy_id_driver_id_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Driver is already assigned to this policy.")
		}
		r.logger.Error("failed to assign driver", zap.Error(err))
		return nil, fmt.Errorf("failed to assign driver: %w", err)
	}

	r.logger.Info("assigned driver", zap.String("id", id),
		zap.String("policy_id", req.PolicyID), zap.String("driver_id", req.DriverID))
	return r.GetByID(ctx, id)
}

// GetByID gets a policy driver assignment by ID
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*models.PolicyDriver, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyDriverRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(policyDriverColumns...)
	sb.From(driverTableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var pd models.PolicyDriver
	if err := r.db.GetContext(ctx, &pd, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "policy driver not found")
		}
		r.logger.Error("failed to get policy driver", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get policy driver: %w", err)
	}

	return &pd, nil
}

// List lists assignments, optionally scoped to one policy
func (r *DriverRepository) List(ctx context.Context, policyID string, params models.ListParams) ([]models.PolicyDriver, int, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyDriverRepository.List")
	defer span.End()

	params.Normalize()

	apply := func(sb *sqlbuilder.SelectBuilder) {
		if policyID != "" {
			sb.Where(sb.Equal("policy_id", policyID))
		}
		if !params.IncludeInactive {
			sb.Where(sb.Equal("is_active", true))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(driverTableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count policy drivers", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count policy drivers: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(policyDriverColumns...)
	sb.From(driverTableName)
	apply(sb)
	sb.OrderBy("created_at ASC")
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.PolicyDriver{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list policy drivers", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list policy drivers: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a policy driver assignment
func (r *DriverRepository) Update(ctx context.Context, id string, req models.UpdatePolicyDriverRequest) (*models.PolicyDriver, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyDriverRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(driverTableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.Status != nil {
		sb.SetMore(sb.Assign("status", *req.Status))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update policy driver", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update policy driver: %w", err)
	}

	r.logger.Info("updated policy driver", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a policy driver assignment
func (r *DriverRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "PolicyDriverRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(driverTableName)
	sb.Set(
		sb.Assign("is_active", false),
		sb.Assign("updated_at", time.Now()),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to delete policy driver", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete policy driver: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "policy driver not found")
	}

	r.logger.Info("deleted policy driver", zap.String("id", id))
	return nil
}
