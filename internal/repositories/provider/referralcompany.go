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

// ReferralCompanyRepository defines the interface for referral company operations
type ReferralCompanyRepository interface {
	Create(ctx context.Context, req models.CreateReferralCompanyRequest) (*models.ReferralCompany, error)
	GetByID(ctx context.Context, id string) (*models.ReferralCompany, error)
	List(ctx context.Context, params models.ListParams) ([]models.ReferralCompany, int, error)
	Update(ctx context.Context, id string, req models.UpdateReferralCompanyRequest) (*models.ReferralCompany, error)
	Delete(ctx context.Context, id string) error
}

// ReferralRepository implements ReferralCompanyRepository
type ReferralRepository struct {
	db     database.DB
	logger *zap.Logger
}

// NewReferralRepository creates a new referral company repository
func NewReferralRepository(db database.DB, logger *zap.Logger) *ReferralRepository {
	return &ReferralRepository{
		db:     db,
		logger: logger,
	}
}

const referralTableName = "referral_companies"

var referralColumns = []string{"id", "name", "rate", "created_at", "updated_at", "is_active"}

// Create creates a new referral company
func (r *ReferralRepository) Create(ctx context.Context, req models.CreateReferralCompanyRequest) (*models.ReferralCompany, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferralCompanyRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(referralTableName)
	sb.Cols("id", "name", "rate", "created_at", "updated_at", "is_active")
	sb.Values(id, req.Name, req.Rate, now, now, true)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "referral_companies_name_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Referral company with this name already exists.")
		}
		r.logger.Error("failed to create referral company", zap.Error(err))
		return nil, fmt.Errorf("failed to create referral company: %w", err)
	}

	r.logger.Info("created referral company", zap.String("id", id), zap.String("name", req.Name))
	return r.GetByID(ctx, id)
}

// GetByID gets a referral company by ID
func (r *ReferralRepository) GetByID(ctx context.Context, id string) (*models.ReferralCompany, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferralCompanyRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(referralColumns...)
	sb.From(referralTableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var rc models.ReferralCompany
	if err := r.db.GetContext(ctx, &rc, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "referral company not found")
		}
		r.logger.Error("failed to get referral company", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get referral company: %w", err)
	}

	return &rc, nil
}

// List lists referral companies ordered by name
func (r *ReferralRepository) List(ctx context.Context, params models.ListParams) ([]models.ReferralCompany, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferralCompanyRepository.List")
	defer span.End()

	params.Normalize()

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(referralTableName)
	if !params.IncludeInactive {
		countSb.Where(countSb.Equal("is_active", true))
	}
	if params.Search != "" {
		countSb.Where(countSb.ILike("name", "%"+params.Search+"%"))
	}
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count referral companies", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count referral companies: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(referralColumns...)
	sb.From(referralTableName)
	if !params.IncludeInactive {
		sb.Where(sb.Equal("is_active", true))
	}
	if params.Search != "" {
		sb.Where(sb.ILike("name", "%"+params.Search+"%"))
	}
	sb.OrderBy("name ASC")
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.ReferralCompany{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list referral companies", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list referral companies: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a referral company
func (r *ReferralRepository) Update(ctx context.Context, id string, req models.UpdateReferralCompanyRequest) (*models.ReferralCompany, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferralCompanyRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(referralTableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.Name != nil {
		sb.SetMore(sb.Assign("name", *req.Name))
	}
	if req.Rate != nil {
		sb.SetMore(sb.Assign("rate", *req.Rate))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "referral_companies_name_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Referral company with this name already exists.")
		}
		r.logger.Error("failed to update referral company", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update referral company: %w", err)
	}

	r.logger.Info("updated referral company", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a referral company
func (r *ReferralRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "ReferralCompanyRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(referralTableName)
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
		r.logger.Error("failed to delete referral company", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete referral company: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "referral company not found")
	}

	r.logger.Info("deleted referral company", zap.String("id", id))
	return nil
}
