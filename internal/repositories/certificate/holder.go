package certificate

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

// CertificateHolderRepository defines the interface for certificate holder operations
type CertificateHolderRepository interface {
	Create(ctx context.Context, req models.CreateCertificateHolderRequest) (*models.CertificateHolder, error)
	GetByID(ctx context.Context, id string) (*models.CertificateHolder, error)
	List(ctx context.Context, params models.ListParams) ([]models.CertificateHolder, int, error)
	Update(ctx context.Context, id string, req models.UpdateCertificateHolderRequest) (*models.CertificateHolder, error)
	Delete(ctx context.Context, id string) error
}

// HolderRepository implements CertificateHolderRepository
type HolderRepository struct {
	db     database.DB
	logger *zap.Logger
}

// NewHolderRepository creates a new certificate holder repository
func NewHolderRepository(db database.DB, logger *zap.Logger) *HolderRepository {
	return &HolderRepository{
		db:     db,
		logger: logger,
	}
}

const holdersTableName = "certificate_holders"

var holderColumns = []string{
	"id", "name", "address_id", "email", "contact_person", "phone_number",
	"created_at", "updated_at", "is_active",
}

var holderOrderFields = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

// Create creates a certificate holder, with its address when one is supplied
func (r *HolderRepository) Create(ctx context.Context, req models.CreateCertificateHolderRequest) (*models.CertificateHolder, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateHolderRepository.Create")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	var addressID *string
	if req.Address != nil {
		id := uuid.New().String()
		ab := sqlbuilder.NewInsertBuilder()
		ab.InsertInto("addresses")
		ab.Cols("id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active")
		ab.Values(id, strOrEmpty(req.Address.StreetAddress), strOrEmpty(req.Address.City), strOrEmpty(req.Address.State), strOrEmpty(req.Address.ZipCode), now, now, true)
		query, args := ab.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to create holder address", zap.Error(err))
			return nil, fmt.Errorf("failed to create holder address: %w", err)
		}
		addressID = &id
	}

	id := uuid.New().String()
	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(holdersTableName)
	sb.Cols("id", "name", "address_id", "email", "contact_person", "phone_number", "created_at", "updated_at", "is_active")
	sb.Values(id, req.Name, addressID, req.Email, req.ContactPerson, req.PhoneNumber, now, now, true)
	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create certificate holder", zap.Error(err))
		return nil, fmt.Errorf("failed to create certificate holder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("created certificate holder", zap.String("id", id), zap.String("name", req.Name))
	return r.GetByID(ctx, id)
}

// GetByID gets a certificate holder with its address
func (r *HolderRepository) GetByID(ctx context.Context, id string) (*models.CertificateHolder, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateHolderRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(holderColumns...)
	sb.From(holdersTableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var h models.CertificateHolder
	if err := r.db.GetContext(ctx, &h, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "certificate holder not found")
		}
		r.logger.Error("failed to get certificate holder", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get certificate holder: %w", err)
	}

	if h.AddressID != nil {
		addrSb := sqlbuilder.NewSelectBuilder()
		addrSb.Select("id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active")
		addrSb.From("addresses")
		addrSb.Where(addrSb.Equal("id", *h.AddressID))
		query, args = addrSb.Build()

		var addr models.Address
		if err := r.db.GetContext(ctx, &addr, query, args...); err == nil {
			h.Address = &addr
		} else if err != sql.ErrNoRows {
			r.logger.Error("failed to load holder address", zap.Error(err), zap.String("address_id", *h.AddressID))
			return nil, fmt.Errorf("failed to load holder address: %w", err)
		}
	}

	return &h, nil
}

// List lists certificate holders with pagination
func (r *HolderRepository) List(ctx context.Context, params models.ListParams) ([]models.CertificateHolder, int, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateHolderRepository.List")
	defer span.End()

	params.Normalize()

	apply := func(sb *sqlbuilder.SelectBuilder) {
		if !params.IncludeInactive {
			sb.Where(sb.Equal("is_active", true))
		}
		if params.Search != "" {
			pattern := "%" + params.Search + "%"
			sb.Where(sb.Or(
				sb.ILike("name", pattern),
				sb.ILike("contact_person", pattern),
				sb.ILike("email", pattern),
			))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(holdersTableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count certificate holders", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count certificate holders: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(holderColumns...)
	sb.From(holdersTableName)
	apply(sb)
	sb.OrderBy(models.OrderClause(params.Ordering, holderOrderFields, "name ASC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.CertificateHolder{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list certificate holders", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list certificate holders: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a certificate holder and, when supplied, its address. A
// holder created without an address gets one on first address payload.
func (r *HolderRepository) Update(ctx context.Context, id string, req models.UpdateCertificateHolderRequest) (*models.CertificateHolder, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateHolderRepository.Update")
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
	sb.Update(holdersTableName)
	sb.Set(sb.Assign("updated_at", now))

	if req.Name != nil {
		sb.SetMore(sb.Assign("name", *req.Name))
	}
	if req.Email != nil {
		sb.SetMore(sb.Assign("email", *req.Email))
	}
	if req.ContactPerson != nil {
		sb.SetMore(sb.Assign("contact_person", *req.ContactPerson))
	}
	if req.PhoneNumber != nil {
		sb.SetMore(sb.Assign("phone_number", *req.PhoneNumber))
	}

	if req.Address != nil && existing.AddressID == nil {
		addressID := uuid.New().String()
		ab := sqlbuilder.NewInsertBuilder()
		ab.InsertInto("addresses")
		ab.Cols("id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active")
		ab.Values(addressID, strOrEmpty(req.Address.StreetAddress), strOrEmpty(req.Address.City), strOrEmpty(req.Address.State), strOrEmpty(req.Address.ZipCode), now, now, true)
		query, args := ab.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to create holder address", zap.Error(err))
			return nil, fmt.Errorf("failed to create holder address: %w", err)
		}
		sb.SetMore(sb.Assign("address_id", addressID))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update certificate holder", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update certificate holder: %w", err)
	}

	if req.Address != nil && existing.AddressID != nil {
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
		ab.Where(ab.Equal("id", *existing.AddressID))
		query, args := ab.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to update holder address", zap.Error(err), zap.String("address_id", *existing.AddressID))
			return nil, fmt.Errorf("failed to update holder address: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("updated certificate holder", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a certificate holder
func (r *HolderRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "CertificateHolderRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(holdersTableName)
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
		r.logger.Error("failed to delete certificate holder", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete certificate holder: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "certificate holder not found")
	}

	r.logger.Info("deleted certificate holder", zap.String("id", id))
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
