package provider

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

// CarrierProductRepository defines the interface for carrier product operations
type CarrierProductRepository interface {
	Create(ctx context.Context, req models.CreateCarrierProductRequest) (*models.CarrierProduct, error)
	GetByID(ctx context.Context, id string) (*models.CarrierProduct, error)
	List(ctx context.Context, params models.ListParams) ([]models.CarrierProduct, int, error)
	Update(ctx context.Context, id string, req models.UpdateCarrierProductRequest) (*models.CarrierProduct, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository implements CarrierProductRepository
type ProductRepository struct {
	db     database.DB
	logger *zap.Logger
}

// NewProductRepository creates a new carrier product repository
func NewProductRepository(db database.DB, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

const productTableName = "carrier_products"

var productColumns = []string{
	"id", "line_of_business", "general_agent_id", "insurance_company_name",
	"abbreviation", "new_commission_pct", "renewal_commission_pct",
	"is_admitted", "is_direct_appointment", "has_online_portal",
	"accepts_epay", "is_preferred", "naic_code", "am_best_number",
	"am_best_rating", "created_at", "updated_at", "is_active",
}

var productOrderFields = map[string]string{
	"insurance_company_name": "insurance_company_name",
	"line_of_business":       "line_of_business",
	"created_at":             "created_at",
}

// Create creates a new carrier product
func (r *ProductRepository) Create(ctx context.Context, req models.CreateCarrierProductRequest) (*models.CarrierProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "CarrierProductRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(productTableName)
	sb.Cols(
		"id", "line_of_business", "general_agent_id", "insurance_company_name",
		"abbreviation", "new_commission_pct", "renewal_commission_pct",
		"is_admitted", "is_direct_appointment", "has_online_portal",
		"accepts_epay", "is_preferred", "naic_code", "am_best_number",
		"am_best_rating", "created_at", "updated_at", "is_active",
	)
	sb.Values(
		id, req.LineOfBusiness, req.GeneralAgentID, req.InsuranceCompanyName,
		req.Abbreviation, req.NewCommissionPct, req.RenewalCommissionPct,
		req.IsAdmitted, req.IsDirectAppointment, req.HasOnlinePortal,
		req.AcceptsEPay, req.IsPreferred, req.NAICCode, req.AMBestNumber,
		req.AMBestRating, now, now, true,
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "carrier_products_company_lob_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Carrier product already exists for this company and line of business.")
		}
		r.logger.Error("failed to create carrier product", zap.Error(err))
		return nil, fmt.Errorf("failed to create carrier product: %w", err)
	}

	r.logger.Info("created carrier product", zap.String("id", id),
		zap.String("insurance_company_name", req.InsuranceCompanyName))
	return r.GetByID(ctx, id)
}

// GetByID gets a carrier product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.CarrierProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "CarrierProductRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(productColumns...)
	sb.From(productTableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var cp models.CarrierProduct
	if err := r.db.GetContext(ctx, &cp, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "carrier product not found")
		}
		r.logger.Error("failed to get carrier product", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get carrier product: %w", err)
	}

	return &cp, nil
}

// List lists carrier products
func (r *ProductRepository) List(ctx context.Context, params models.ListParams) ([]models.CarrierProduct, int, error) {
	ctx, span := tracing.StartSpan(ctx, "CarrierProductRepository.List")
	defer span.End()

	params.Normalize()

	apply := func(sb *sqlbuilder.SelectBuilder) {
		if !params.IncludeInactive {
			sb.Where(sb.Equal("is_active", true))
		}
		if params.Search != "" {
			pattern := "%" + params.Search + "%"
			sb.Where(sb.Or(
				sb.ILike("insurance_company_name", pattern),
				sb.ILike("line_of_business", pattern),
				sb.ILike("abbreviation", pattern),
			))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(productTableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count carrier products", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count carrier products: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(productColumns...)
	sb.From(productTableName)
	apply(sb)
	sb.OrderBy(models.OrderClause(params.Ordering, productOrderFields, "insurance_company_name ASC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.CarrierProduct{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list carrier products", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list carrier products: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a carrier product
func (r *ProductRepository) Update(ctx context.Context, id string, req models.UpdateCarrierProductRequest) (*models.CarrierProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "CarrierProductRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(productTableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.LineOfBusiness != nil {
		sb.SetMore(sb.Assign("line_of_business", *req.LineOfBusiness))
	}
	if req.GeneralAgentID != nil {
		sb.SetMore(sb.Assign("general_agent_id", *req.GeneralAgentID))
	}
	if req.InsuranceCompanyName != nil {
		sb.SetMore(sb.Assign("insurance_company_name", *req.InsuranceCompanyName))
	}
	if req.Abbreviation != nil {
		sb.SetMore(sb.Assign("abbreviation", *req.Abbreviation))
	}
	if req.NewCommissionPct != nil {
		sb.SetMore(sb.Assign("new_commission_pct", *req.NewCommissionPct))
	}
	if req.RenewalCommissionPct != nil {
		sb.SetMore(sb.Assign("renewal_commission_pct", *req.RenewalCommissionPct))
	}
	if req.IsAdmitted != nil {
		sb.SetMore(sb.Assign("is_admitted", *req.IsAdmitted))
	}
	if req.IsDirectAppointment != nil {
		sb.SetMore(sb.Assign("is_direct_appointment", *req.IsDirectAppointment))
	}
	if req.HasOnlinePortal != nil {
		sb.SetMore(sb.Assign("has_online_portal", *req.HasOnlinePortal))
	}
	if req.AcceptsEPay != nil {
		sb.SetMore(sb.Assign("accepts_epay", *req.AcceptsEPay))
	}
	if req.IsPreferred != nil {
		sb.SetMore(sb.Assign("is_preferred", *req.IsPreferred))
	}
	if req.NAICCode != nil {
		sb.SetMore(sb.Assign("naic_code", *req.NAICCode))
	}
	if req.AMBestNumber != nil {
		sb.SetMore(sb.Assign("am_best_number", *req.AMBestNumber))
	}
	if req.AMBestRating != nil {
		sb.SetMore(sb.Assign("am_best_rating", *req.AMBestRating))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "carrier_products_company_lob_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Carrier product already exists for this company and line of business.")
		}
		r.logger.Error("failed to update carrier product", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update carrier product: %w", err)
	}

	r.logger.Info("updated carrier product", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a carrier product
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "CarrierProductRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(productTableName)
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
		r.logger.Error("failed to delete carrier product", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete carrier product: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "carrier product not found")
	}

	r.logger.Info("deleted carrier product", zap.String("id", id))
	return nil
}
