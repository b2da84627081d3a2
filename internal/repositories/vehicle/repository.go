// Package vehicle manages client vehicle records.
package vehicle

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/database"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

// VehicleRepository defines the interface for vehicle operations
type VehicleRepository interface {
	Create(ctx context.Context, req models.CreateVehicleRequest) (*models.Vehicle, error)
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	List(ctx context.Context, clientID string, params models.ListParams) ([]models.Vehicle, int, error)
	Update(ctx context.Context, id string, req models.UpdateVehicleRequest) (*models.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

// Repository implements VehicleRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new vehicle repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "vehicles"

var vehicleColumns = []string{
	"id", "client_id", "vin", "unit_number", "vehicle_type_id", "year",
	"make", "model", "gvw", "pd_amount", "deductible", "loss_payee_id",
	"created_at", "updated_at", "is_active",
}

var orderFields = map[string]string{
	"vin":         "vin",
	"unit_number": "unit_number",
	"year":        "year",
	"make":        "make",
	"created_at":  "created_at",
}

func normalizeVIN(vin string) (string, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if !models.VINPattern.MatchString(vin) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "VIN must be 17 characters (letters except I, O, Q, and digits).")
	}
	return vin, nil
}

// Create creates a new vehicle
func (r *Repository) Create(ctx context.Context, req models.CreateVehicleRequest) (*models.Vehicle, error) {
	ctx, span := tracing.StartSpan(ctx, "VehicleRepository.Create")
	defer span.End()

	vin, err := normalizeVIN(req.VIN)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(
		"id", "client_id", "vin", "unit_number", "vehicle_type_id", "year",
		"make", "model", "gvw", "pd_amount", "deductible", "loss_payee_id",
		"created_at", "updated_at", "is_active",
	)
	sb.Values(
		id, req.ClientID, vin, req.UnitNumber, req.VehicleTypeID, req.Year,
		req.Make, req.Model, req.GVW, req.PDAmount, req.Deductible, req.LossPayeeID,
		now, now, true,
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "vehicles_vin_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Vehicle with this VIN already exists.")
		}
		r.logger.Error("failed to create vehicle", zap.Error(err))
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	r.logger.Info("created vehicle", zap.String("id", id), zap.String("vin", vin))
	return r.GetByID(ctx, id)
}

// GetByID gets a vehicle by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	ctx, span := tracing.StartSpan(ctx, "VehicleRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(vehicleColumns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var v models.Vehicle
	if err := r.db.GetContext(ctx, &v, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "vehicle not found")
		}
		r.logger.Error("failed to get vehicle", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &v, nil
}

// List lists vehicles, optionally scoped to one client
func (r *Repository) List(ctx context.Context, clientID string, params models.ListParams) ([]models.Vehicle, int, error) {
	ctx, span := tracing.StartSpan(ctx, "VehicleRepository.List")
	defer span.End()

	params.Normalize()

	apply := func(sb *sqlbuilder.SelectBuilder) {
		if clientID != "" {
			sb.Where(sb.Equal("client_id", clientID))
		}
		if !params.IncludeInactive {
			sb.Where(sb.Equal("is_active", true))
		}
		if params.Search != "" {
			pattern := "%" + params.Search + "%"
			sb.Where(sb.Or(
				sb.ILike("vin", pattern),
				sb.ILike("unit_number", pattern),
				sb.ILike("make", pattern),
				sb.ILike("model", pattern),
			))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count vehicles", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(vehicleColumns...)
	sb.From(tableName)
	apply(sb)
	sb.OrderBy(models.OrderClause(params.Ordering, orderFields, "unit_number ASC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.Vehicle{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list vehicles", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a vehicle
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateVehicleRequest) (*models.Vehicle, error) {
	ctx, span := tracing.StartSpan(ctx, "VehicleRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.VIN != nil {
		vin, err := normalizeVIN(*req.VIN)
		if err != nil {
			return nil, err
		}
		sb.SetMore(sb.Assign("vin", vin))
	}
	if req.UnitNumber != nil {
		sb.SetMore(sb.Assign("unit_number", *req.UnitNumber))
	}
	if req.VehicleTypeID != nil {
		sb.SetMore(sb.Assign("vehicle_type_id", *req.VehicleTypeID))
	}
	if req.Year != nil {
		sb.SetMore(sb.Assign("year", *req.Year))
	}
	if req.Make != nil {
		sb.SetMore(sb.Assign("make", *req.Make))
	}
	if req.Model != nil {
		sb.SetMore(sb.Assign("model", *req.Model))
	}
	if req.GVW != nil {
		sb.SetMore(sb.Assign("gvw", *req.GVW))
	}
	if req.PDAmount != nil {
		sb.SetMore(sb.Assign("pd_amount", *req.PDAmount))
	}
	if req.Deductible != nil {
		sb.SetMore(sb.Assign("deductible", *req.Deductible))
	}
	if req.LossPayeeID != nil {
		sb.SetMore(sb.Assign("loss_payee_id", *req.LossPayeeID))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "vehicles_vin_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Vehicle with this VIN already exists.")
		}
		r.logger.Error("failed to update vehicle", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	r.logger.Info("updated vehicle", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a vehicle
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "VehicleRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
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
		r.logger.Error("failed to delete vehicle", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "vehicle not found")
	}

	r.logger.Info("deleted vehicle", zap.String("id", id))
	return nil
}
