// Package driver manages client driver records.
package driver

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

// DriverRepository defines the interface for driver operations
type DriverRepository interface {
	Create(ctx context.Context, req models.CreateDriverRequest) (*models.Driver, error)
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	List(ctx context.Context, clientID string, params models.ListParams) ([]models.Driver, int, error)
	Update(ctx context.Context, id string, req models.UpdateDriverRequest) (*models.Driver, error)
	Delete(ctx context.Context, id string) error
}

// Repository implements DriverRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new driver repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "drivers"

var driverColumns = []string{
	"id", "client_id", "first_name", "middle_name", "last_name",
	"date_of_birth", "license_number", "license_state", "license_class_id",
	"issue_date", "hire_date", "violations", "accidents",
	"created_at", "updated_at", "is_active",
}

var orderFields = map[string]string{
	"last_name":      "last_name",
	"first_name":     "first_name",
	"license_number": "license_number",
	"hire_date":      "hire_date",
	"created_at":     "created_at",
}

// Create creates a new driver
func (r *Repository) Create(ctx context.Context, req models.CreateDriverRequest) (*models.Driver, error) {
	ctx, span := tracing.StartSpan(ctx, "DriverRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(
		"id", "client_id", "first_name", "middle_name", "last_name",
		"date_of_birth", "license_number", "license_state", "license_class_id",
		"issue_date", "hire_date", "violations", "accidents",
		"created_at", "updated_at", "is_active",
	)
	sb.Values(
		id, req.ClientID, req.FirstName, req.MiddleName, req.LastName,
		req.DateOfBirth, req.LicenseNumber, req.LicenseState, req.LicenseClassID,
		req.IssueDate, req.HireDate, req.Violations, req.Accidents,
		now, now, true,
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "drivers_client_id_license_number_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Driver with this license number already exists for the client.")
		}
		r.logger.Error("failed to create driver", zap.Error(err))
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	r.logger.Info("created driver", zap.String("id", id), zap.String("client_id", req.ClientID))
	return r.GetByID(ctx, id)
}

// GetByID gets a driver by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	ctx, span := tracing.StartSpan(ctx, "DriverRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(driverColumns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var d models.Driver
	if err := r.db.GetContext(ctx, &d, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "driver not found")
		}
		r.logger.Error("failed to get driver", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return &d, nil
}

// List lists drivers, optionally scoped to one client
func (r *Repository) List(ctx context.Context, clientID string, params models.ListParams) ([]models.Driver, int, error) {
	ctx, span := tracing.StartSpan(ctx, "DriverRepository.List")
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
				sb.ILike("first_name", pattern),
				sb.ILike("last_name", pattern),
				sb.ILike("license_number", pattern),
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
		r.logger.Error("failed to count drivers", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count drivers: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(driverColumns...)
	sb.From(tableName)
	apply(sb)
	sb.OrderBy(models.OrderClause(params.Ordering, orderFields, "last_name ASC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.Driver{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list drivers", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list drivers: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a driver
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateDriverRequest) (*models.Driver, error) {
	ctx, span := tracing.StartSpan(ctx, "DriverRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.FirstName != nil {
		sb.SetMore(sb.Assign("first_name", *req.FirstName))
	}
	if req.MiddleName != nil {
		sb.SetMore(sb.Assign("middle_name", *req.MiddleName))
	}
	if req.LastName != nil {
		sb.SetMore(sb.Assign("last_name", *req.LastName))
	}
	if req.DateOfBirth != nil {
		sb.SetMore(sb.Assign("date_of_birth", *req.DateOfBirth))
	}
	if req.LicenseNumber != nil {
		sb.SetMore(sb.Assign("license_number", *req.LicenseNumber))
	}
	if req.LicenseState != nil {
		sb.SetMore(sb.Assign("license_state", *req.LicenseState))
	}
	if req.LicenseClassID != nil {
		sb.SetMore(sb.Assign("license_class_id", *req.LicenseClassID))
	}
	if req.IssueDate != nil {
		sb.SetMore(sb.Assign("issue_date", *req.IssueDate))
	}
	if req.HireDate != nil {
		sb.SetMore(sb.Assign("hire_date", *req.HireDate))
	}
	if req.Violations != nil {
		sb.SetMore(sb.Assign("violations", *req.Violations))
	}
	if req.Accidents != nil {
		sb.SetMore(sb.Assign("accidents", *req.Accidents))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "drivers_client_id_license_number_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Driver with this license number already exists for the client.")
		}
		r.logger.Error("failed to update driver", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update driver: %w", err)
	}

	r.logger.Info("updated driver", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a driver
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "DriverRepository.Delete")
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
		r.logger.Error("failed to delete driver", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete driver: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "driver not found")
	}

	r.logger.Info("deleted driver", zap.String("id", id))
	return nil
}
