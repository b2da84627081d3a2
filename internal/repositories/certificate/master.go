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

// MasterCertificateRepository defines the interface for master certificate operations
type MasterCertificateRepository interface {
	Create(ctx context.Context, req models.CreateMasterCertificateRequest) (*models.MasterCertificate, error)
	GetByID(ctx context.Context, id string) (*models.MasterCertificate, error)
	List(ctx context.Context, policyID string, params models.ListParams) ([]models.MasterCertificate, int, error)
	Update(ctx context.Context, id string, req models.UpdateMasterCertificateRequest) (*models.MasterCertificate, error)
	Delete(ctx context.Context, id string) error
}

// MasterRepository implements MasterCertificateRepository
type MasterRepository struct {
	db     database.DB
	logger *zap.Logger
}

// NewMasterRepository creates a new master certificate repository
func NewMasterRepository(db database.DB, logger *zap.Logger) *MasterRepository {
	return &MasterRepository{
		db:     db,
		logger: logger,
	}
}

const mastersTableName = "master_certificates"

var masterColumns = []string{
	"id", "policy_id", "name", "settings", "created_at", "updated_at", "is_active",
}

// Create creates a master certificate template for a policy
func (r *MasterRepository) Create(ctx context.Context, req models.CreateMasterCertificateRequest) (*models.MasterCertificate, error) {
	ctx, span := tracing.StartSpan(ctx, "MasterCertificateRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	settings := "{}"
	if len(req.Settings) > 0 {
		settings = string(req.Settings)
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(mastersTableName)
	sb.Cols("id", "policy_id", "name", "settings", "created_at", "updated_at", "is_active")
	sb.Values(id, req.PolicyID, req.Name, settings, now, now, true)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "master_certificates_policy_id_name_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Master certificate with this name already exists for the policy.")
		}
		r.logger.Error("failed to create master certificate", zap.Error(err))
		return nil, fmt.Errorf("failed to create master certificate: %w", err)
	}

	r.logger.Info("created master certificate", zap.String("id", id), zap.String("policy_id", req.PolicyID))
	return r.GetByID(ctx, id)
}

// GetByID gets a master certificate by ID
func (r *MasterRepository) GetByID(ctx context.Context, id string) (*models.MasterCertificate, error) {
	ctx, span := tracing.StartSpan(ctx, "MasterCertificateRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(masterColumns...)
	sb.From(mastersTableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var m models.MasterCertificate
	if err := r.db.GetContext(ctx, &m, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "master certificate not found")
		}
		r.logger.Error("failed to get master certificate", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get master certificate: %w", err)
	}

	return &m, nil
}

// List lists master certificates, optionally scoped to one policy
func (r *MasterRepository) List(ctx context.Context, policyID string, params models.ListParams) ([]models.MasterCertificate, int, error) {
	ctx, span := tracing.StartSpan(ctx, "MasterCertificateRepository.List")
	defer span.End()

	params.Normalize()

	apply := func(sb *sqlbuilder.SelectBuilder) {
		if policyID != "" {
			sb.Where(sb.Equal("policy_id", policyID))
		}
		if !params.IncludeInactive {
			sb.Where(sb.Equal("is_active", true))
		}
		if params.Search != "" {
			sb.Where(sb.ILike("name", "%"+params.Search+"%"))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(mastersTableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count master certificates", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count master certificates: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(masterColumns...)
	sb.From(mastersTableName)
	apply(sb)
	sb.OrderBy("name ASC")
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.MasterCertificate{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list master certificates", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list master certificates: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a master certificate
func (r *MasterRepository) Update(ctx context.Context, id string, req models.UpdateMasterCertificateRequest) (*models.MasterCertificate, error) {
	ctx, span := tracing.StartSpan(ctx, "MasterCertificateRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(mastersTableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.Name != nil {
		sb.SetMore(sb.Assign("name", *req.Name))
	}
	if len(req.Settings) > 0 {
		sb.SetMore(sb.Assign("settings", string(req.Settings)))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "master_certificates_policy_id_name_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Master certificate with this name already exists for the policy.")
		}
		r.logger.Error("failed to update master certificate", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update master certificate: %w", err)
	}

	r.logger.Info("updated master certificate", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a master certificate
func (r *MasterRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "MasterCertificateRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(mastersTableName)
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
		r.logger.Error("failed to delete master certificate", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete master certificate: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "master certificate not found")
	}

	r.logger.Info("deleted master certificate", zap.String("id", id))
	return nil
}
