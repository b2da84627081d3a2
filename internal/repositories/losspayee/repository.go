// Package losspayee manages loss payee records and their embedded addresses.
package losspayee

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

// LossPayeeRepository defines the interface for loss payee operations
type LossPayeeRepository interface {
	Create(ctx context.Context, req models.CreateLossPayeeRequest) (*models.LossPayee, error)
	GetByID(ctx context.Context, id string) (*models.LossPayee, error)
	List(ctx context.Context, params models.ListParams) ([]models.LossPayee, int, error)
	Update(ctx context.Context, id string, req models.UpdateLossPayeeRequest) (*models.LossPayee, error)
	Delete(ctx context.Context, id string) error
}

// Repository implements LossPayeeRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new loss payee repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "loss_payees"

var lossPayeeColumns = []string{
	"id", "name", "email", "contact_person_name", "telephone", "fax",
	"cell_phone", "preference", "remarks", "address_id",
	"created_at", "updated_at", "is_active",
}

var orderFields = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

// Create creates a loss payee together with its address
func (r *Repository) Create(ctx context.Context, req models.CreateLossPayeeRequest) (*models.LossPayee, error) {
	ctx, span := tracing.StartSpan(ctx, "LossPayeeRepository.Create")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	addressID := uuid.New().String()
	ab := sqlbuilder.NewInsertBuilder()
	ab.InsertInto("addresses")
	ab.Cols("id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active")
	ab.Values(addressID, deref(req.Address.StreetAddress), deref(req.Address.City), deref(req.Address.State), deref(req.Address.ZipCode), now, now, true)
	query, args := ab.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create loss payee address", zap.Error(err))
		return nil, fmt.Errorf("failed to create loss payee address: %w", err)
	}

	id := uuid.New().String()
	preference := req.Preference
	if preference == "" {
		preference = models.LossPayeePreferenceEmail
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(
		"id", "name", "email", "contact_person_name", "telephone", "fax",
		"cell_phone", "preference", "remarks", "address_id",
		"created_at", "updated_at", "is_active",
	)
	sb.Values(
		id, req.Name, req.Email, req.ContactPersonName, req.Telephone, req.Fax,
		req.CellPhone, preference, req.Remarks, addressID, now, now, true,
	)
	query, args = sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create loss payee", zap.Error(err))
		return nil, fmt.Errorf("failed to create loss payee: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("created loss payee", zap.String("id", id), zap.String("name", req.Name))
	return r.GetByID(ctx, id)
}

// GetByID gets a loss payee by ID with its address
func (r *Repository) GetByID(ctx context.Context, id string) (*models.LossPayee, error) {
	ctx, span := tracing.StartSpan(ctx, "LossPayeeRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(lossPayeeColumns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var lp models.LossPayee
	if err := r.db.GetContext(ctx, &lp, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "loss payee not found")
		}
		r.logger.Error("failed to get loss payee", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get loss payee: %w", err)
	}

	addrSb := sqlbuilder.NewSelectBuilder()
	addrSb.Select("id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active")
	addrSb.From("addresses")
	addrSb.Where(addrSb.Equal("id", lp.AddressID))
	query, args = addrSb.Build()

	var addr models.Address
	if err := r.db.GetContext(ctx, &addr, query, args...); err == nil {
		lp.Address = &addr
	} else if err != sql.ErrNoRows {
		r.logger.Error("failed to load loss payee address", zap.Error(err), zap.String("address_id", lp.AddressID))
		return nil, fmt.Errorf("failed to load loss payee address: %w", err)
	}

	return &lp, nil
}

// List lists loss payees with pagination
func (r *Repository) List(ctx context.Context, params models.ListParams) ([]models.LossPayee, int, error) {
	ctx, span := tracing.StartSpan(ctx, "LossPayeeRepository.List")
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
			countSb.ILike("name", pattern),
			countSb.ILike("contact_person_name", pattern),
			countSb.ILike("email", pattern),
		))
	}
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count loss payees", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count loss payees: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(lossPayeeColumns...)
	sb.From(tableName)
	if !params.IncludeInactive {
		sb.Where(sb.Equal("is_active", true))
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		sb.Where(sb.Or(
			sb.ILike("name", pattern),
			sb.ILike("contact_person_name", pattern),
			sb.ILike("email", pattern),
		))
	}
	sb.OrderBy(models.OrderClause(params.Ordering, orderFields, "name ASC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.LossPayee{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list loss payees", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list loss payees: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a loss payee and, when supplied, its address
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateLossPayeeRequest) (*models.LossPayee, error) {
	ctx, span := tracing.StartSpan(ctx, "LossPayeeRepository.Update")
	defer span.End()

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("updated_at", now))

	if req.Name != nil {
		sb.SetMore(sb.Assign("name", *req.Name))
	}
	if req.Email != nil {
		sb.SetMore(sb.Assign("email", *req.Email))
	}
	if req.ContactPersonName != nil {
		sb.SetMore(sb.Assign("contact_person_name", *req.ContactPersonName))
	}
	if req.Telephone != nil {
		sb.SetMore(sb.Assign("telephone", *req.Telephone))
	}
	if req.Fax != nil {
		sb.SetMore(sb.Assign("fax", *req.Fax))
	}
	if req.CellPhone != nil {
		sb.SetMore(sb.Assign("cell_phone", *req.CellPhone))
	}
	if req.Preference != nil {
		sb.SetMore(sb.Assign("preference", *req.Preference))
	}
	if req.Remarks != nil {
		sb.SetMore(sb.Assign("remarks", *req.Remarks))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update loss payee", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update loss payee: %w", err)
	}

	if req.Address != nil {
		ab := sqlbuilder.NewUpdateBuilder()
		ab.Update("addresses")
		ab.Set(ab.Assign("updated_at", now))
		if req.Address.StreetAddress != nil {
			ab.SetMore(ab.Assign("street_address", *req.Address.StreetAddress))
		}
		if req.Address.City != nil {
			ab.SetMore(ab.Assign("city", *req.Address.City))
		}
		if req.Address.State != nil {
			ab.SetMore(ab.Assign("state", *req.Address.State))
		}
		if req.Address.ZipCode != nil {
			ab.SetMore(ab.Assign("zip_code", *req.Address.ZipCode))
		}
		ab.Where(ab.Equal("id", existing.AddressID))
		query, args := ab.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to update loss payee address", zap.Error(err), zap.String("address_id", existing.AddressID))
			return nil, fmt.Errorf("failed to update loss payee address: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("updated loss payee", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a loss payee
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "LossPayeeRepository.Delete")
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
		r.logger.Error("failed to delete loss payee", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete loss payee: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "loss payee not found")
	}

	r.logger.Info("deleted loss payee", zap.String("id", id))
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
