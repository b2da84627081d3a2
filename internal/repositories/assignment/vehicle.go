// Package assignment manages vehicle and driver assignments to policies.
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

// PolicyVehicleRepository defines the interface for policy vehicle assignments
type PolicyVehicleRepository interface {
	Create(ctx context.Context, req models.CreatePolicyVehicleRequest) (*models.PolicyVehicle, error)
	GetByID(ctx context.Context, id string) (*models.PolicyVehicle, error)
	List(ctx context.Context, policyID string, params models.ListParams) ([]models.PolicyVehicle, int, error)
	Update(ctx context.Context, id string, req models.UpdatePolicyVehicleRequest) (*models.PolicyVehicle, error)
	Delete(ctx context.Context, id string) error
}

// VehicleRepository implements PolicyVehicleRepository
type VehicleRepository struct {
	db     database.DB
	logger *zap.Logger
}

// NewVehicleRepository creates a new policy vehicle repository
func NewVehicleRepository(db database.DB, logger *zap.Logger) *VehicleRepository {
	return &VehicleRepository{
		db:     db,
		logger: logger,
	}
}

const vehicleTableName = "policy_vehicles"

var policyVehicleColumns = []string{
	"id", "policy_id", "vehicle_id", "status", "inception_date",
	"termination_date", "garaging_address_id",
	"created_at", "updated_at", "is_active",
}

// Create assigns a vehicle to a policy
func (r *VehicleRepository) Create(ctx context.Context, req models.CreatePolicyVehicleRequest) (*models.PolicyVehicle, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyVehicleRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	status := req.Status
	if status == "" {
		status = models.PolicyVehicleStatusActive
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(vehicleTableName)
	sb.Cols(
		"id", "policy_id", "vehicle_id", "status", "inception_date",
		"termination_date", "garaging_address_id",
		"created_at", "updated_at", "is_active",
	)
	sb.Values(
		id, req.PolicyID, req.VehicleID, status, req.InceptionDate,
		req.TerminationDate, req.GaragingAddressID, now, now, true,
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "policy_vehicles_policy_id_vehicle_id_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Vehicle is already assigned to this policy.")
		}
		r.logger.Error("failed to assign vehicle", zap.Error(err))
		return nil, fmt.Errorf("failed to assign vehicle: %w", err)
	}

	r.logger.Info("assigned vehicle", zap.String("id", id),
		zap.String("policy_id", req.PolicyID), zap.String("vehicle_id", req.VehicleID))
	return r.GetByID(ctx, id)
}

// GetByID gets a policy vehicle assignment by ID
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*models.PolicyVehicle, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyVehicleRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(policyVehicleColumns...)
	sb.From(vehicleTableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var pv models.PolicyVehicle
	if err := r.db.GetContext(ctx, &pv, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "policy vehicle not found")
		}
		r.logger.Error("failed to get policy vehicle", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get policy vehicle: %w", err)
	}

	return &pv, nil
}

// List lists assignments, optionally scoped to one policy
func (r *VehicleRepository) List(ctx context.Context, policyID string, params models.ListParams) ([]models.PolicyVehicle, int, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyVehicleRepository.List")
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
	countSb.From(vehicleTableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count policy vehicles", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count policy vehicles: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(policyVehicleColumns...)
	sb.From(vehicleTableName)
	apply(sb)
	sb.OrderBy("created_at ASC")
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.PolicyVehicle{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list policy vehicles", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list policy vehicles: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a policy vehicle assignment
func (r *VehicleRepository) Update(ctx context.Context, id string, req models.UpdatePolicyVehicleRequest) (*models.PolicyVehicle, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyVehicleRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(vehicleTableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.Status != nil {
		sb.SetMore(sb.Assign("status", *req.Status))
	}
	if req.InceptionDate != nil {
		sb.SetMore(sb.Assign("inception_date", *req.InceptionDate))
	}
	if req.TerminationDate != nil {
		sb.SetMore(sb.Assign("termination_date", *req.TerminationDate))
	}
	if req.GaragingAddressID != nil {
		sb.SetMore(sb.Assign("garaging_address_id", *req.GaragingAddressID))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update policy vehicle", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update policy vehicle: %w", err)
	}

	r.logger.Info("updated policy vehicle", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a policy vehicle assignment
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "PolicyVehicleRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(vehicleTableName)
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
		r.logger.Error("failed to delete policy vehicle", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete policy vehicle: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "policy vehicle not found")
	}

	r.logger.Info("deleted policy vehicle", zap.String("id", id))
	return nil
}
