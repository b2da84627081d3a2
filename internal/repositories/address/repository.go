// Package address manages standalone address records.
package address

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

// AddressRepository defines the interface for address operations
type AddressRepository interface {
	Create(ctx context.Context, req models.CreateAddressRequest) (*models.Address, error)
	GetByID(ctx context.Context, id string) (*models.Address, error)
	List(ctx context.Context, params models.ListParams) ([]models.Address, int, error)
	Update(ctx context.Context, id string, req models.UpdateAddressRequest) (*models.Address, error)
	Delete(ctx context.Context, id string) error
}

// Repository implements AddressRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new address repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "addresses"

var addressColumns = []string{"id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active"}

var orderFields = map[string]string{
	"city":       "city",
	"state":      "state",
	"created_at": "created_at",
}

// CreateIn inserts an address using the given querier, so callers can run it
// inside their own transaction.
func (r *Repository) CreateIn(ctx context.Context, q database.Querier, street, city, state, zipCode string) (*models.Address, error) {
	now := time.Now()
	addr := &models.Address{
		Identity:   models.Identity{ID: uuid.New().String()},
		StreetAddress: street,
		City:          city,
		State:         state,
		ZipCode:       zipCode,
		Timestamps:    models.Timestamps{CreatedAt: now, UpdatedAt: now},
		SoftDelete:    models.SoftDelete{IsActive: true},
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active")
	sb.Values(addr.ID, addr.StreetAddress, addr.City, addr.State, addr.ZipCode, now, now, true)

	query, args := sb.Build()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create address", zap.Error(err))
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return addr, nil
}

// Create creates a new address
func (r *Repository) Create(ctx context.Context, req models.CreateAddressRequest) (*models.Address, error) {
	ctx, span := tracing.StartSpan(ctx, "AddressRepository.Create")
	defer span.End()

	addr, err := r.CreateIn(ctx, r.db, req.StreetAddress, req.City, req.State, req.ZipCode)
	if err != nil {
		return nil, err
	}

	r.logger.Info("created address", zap.String("id", addr.ID))
	return r.GetByID(ctx, addr.ID)
}

// GetByID gets an address by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Address, error) {
	ctx, span := tracing.StartSpan(ctx, "AddressRepository.GetByID")
	defer span.End()

	return r.getIn(ctx, r.db, id)
}

func (r *Repository) getIn(ctx context.Context, q database.Querier, id string) (*models.Address, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(addressColumns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var addr models.Address
	if err := q.GetContext(ctx, &addr, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "address not found")
		}
		r.logger.Error("failed to get address", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	return &addr, nil
}

// List lists addresses with pagination
func (r *Repository) List(ctx context.Context, params models.ListParams) ([]models.Address, int, error) {
	ctx, span := tracing.StartSpan(ctx, "AddressRepository.List")
	defer span.End()

	params.Normalize()

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	if !params.IncludeInactive {
		countSb.Where(countSb.Equal("is_active", true))
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		countSb.Where(countSb.Or(
			countSb.ILike("street_address", pattern),
			countSb.ILike("city", pattern),
			countSb.ILike("zip_code", pattern),
		))
	}
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count addresses", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count addresses: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(addressColumns...)
	sb.From(tableName)
	if !params.IncludeInactive {
		sb.Where(sb.Equal("is_active", true))
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		sb.Where(sb.Or(
			sb.ILike("street_address", pattern),
			sb.ILike("city", pattern),
			sb.ILike("zip_code", pattern),
		))
	}
	sb.OrderBy(models.OrderClause(params.Ordering, orderFields, "created_at DESC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.Address{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list addresses", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list addresses: %w", err)
	}

	return items, totalCount, nil
}

// Update updates an address
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateAddressRequest) (*models.Address, error) {
	ctx, span := tracing.StartSpan(ctx, "AddressRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.StreetAddress != nil {
		sb.SetMore(sb.Assign("street_address", *req.StreetAddress))
	}
	if req.City != nil {
		sb.SetMore(sb.Assign("city", *req.City))
	}
	if req.State != nil {
		sb.SetMore(sb.Assign("state", *req.State))
	}
	if req.ZipCode != nil {
		sb.SetMore(sb.Assign("zip_code", *req.ZipCode))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update address", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	r.logger.Info("updated address", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes an address
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "AddressRepository.Delete")
	defer span.End()

	return r.DeleteIn(ctx, r.db, id)
}

// DeleteIn flips the active flag using the given querier.
func (r *Repository) DeleteIn(ctx context.Context, q database.Querier, id string) error {
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
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to delete address", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete address: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "address not found")
	}

	r.logger.Info("deleted address", zap.String("id", id))
	return nil
}
