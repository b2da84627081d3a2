// Package endorsement manages the mid-term policy change workflow.
package endorsement

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

// EndorsementRepository defines the interface for endorsement operations
type EndorsementRepository interface {
	Create(ctx context.Context, actor string, req models.CreateEndorsementRequest) (*models.Endorsement, error)
	GetByID(ctx context.Context, id string) (*models.Endorsement, error)
	List(ctx context.Context, policyID string, params models.ListParams) ([]models.Endorsement, int, error)
	Update(ctx context.Context, actor string, id string, req models.UpdateEndorsementRequest) (*models.Endorsement, error)
	Delete(ctx context.Context, id string) error
	Start(ctx context.Context, actor string, id string, stage string) (*models.Endorsement, error)
	Advance(ctx context.Context, actor string, id string, stage string) (*models.Endorsement, error)
	Complete(ctx context.Context, actor string, id string) (*models.Endorsement, error)
	Cancel(ctx context.Context, actor string, id string, reason string) (*models.Endorsement, error)
	CreateChange(ctx context.Context, actor string, endorsementID string, req models.CreateEndorsementChangeRequest) (*models.EndorsementChange, error)
	GetChange(ctx context.Context, id string) (*models.EndorsementChange, error)
	ListChanges(ctx context.Context, filter models.ChangeFilter) ([]models.EndorsementChange, int, error)
}

// Repository implements EndorsementRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new endorsement repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "endorsements"

var endorsementColumns = []string{
	"id", "policy_id", "name", "status", "current_stage", "effective_date",
	"premium_change", "fees_change", "taxes_change", "agency_fee_change",
	"total_premium_change", "notes", "created_by", "updated_by",
	"completed_at", "created_at", "updated_at", "is_active",
}

var orderFields = map[string]string{
	"name":           "name",
	"status":         "status",
	"effective_date": "effective_date",
	"created_at":     "created_at",
}

// Create creates a new endorsement in draft. A missing name defaults from the
// effective date.
func (r *Repository) Create(ctx context.Context, actor string, req models.CreateEndorsementRequest) (*models.Endorsement, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	name := req.Name
	if name == "" {
		name = DefaultName(req.EffectiveDate, now)
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(
		"id", "policy_id", "name", "status", "current_stage", "effective_date",
		"premium_change", "fees_change", "taxes_change", "agency_fee_change",
		"total_premium_change", "notes", "created_by", "updated_by",
		"created_at", "updated_at", "is_active",
	)
	sb.Values(
		id, req.PolicyID, name, models.EndorsementStatusDraft, models.EndorsementStageClient, req.EffectiveDate,
		zeroOr(req.PremiumChange), zeroOr(req.FeesChange), zeroOr(req.TaxesChange), zeroOr(req.AgencyFeeChange),
		zeroOr(req.TotalPremiumChange), req.Notes, actor, actor, now, now, true,
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create endorsement", zap.Error(err))
		return nil, fmt.Errorf("failed to create endorsement: %w", err)
	}

	r.logger.Info("created endorsement", zap.String("id", id), zap.String("policy_id", req.PolicyID))
	return r.GetByID(ctx, id)
}

// GetByID gets an endorsement with its changes
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Endorsement, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(endorsementColumns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var e models.Endorsement
	if err := r.db.GetContext(ctx, &e, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "endorsement not found")
		}
		r.logger.Error("failed to get endorsement", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get endorsement: %w", err)
	}

	changes, _, err := r.ListChanges(ctx, models.ChangeFilter{EndorsementID: id, PageSize: changePageLimit})
	if err != nil {
		return nil, err
	}
	e.Changes = changes

	return &e, nil
}

// List lists endorsements, optionally scoped to one policy
func (r *Repository) List(ctx context.Context, policyID string, params models.ListParams) ([]models.Endorsement, int, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.List")
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
	countSb.From(tableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count endorsements", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count endorsements: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(endorsementColumns...)
	sb.From(tableName)
	apply(sb)
	sb.OrderBy(models.OrderClause(params.Ordering, orderFields, "created_at DESC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.Endorsement{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list endorsements", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list endorsements: %w", err)
	}

	return items, totalCount, nil
}

// Update updates an endorsement's editable fields
func (r *Repository) Update(ctx context.Context, actor string, id string, req models.UpdateEndorsementRequest) (*models.Endorsement, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("updated_at", time.Now()),
		sb.Assign("updated_by", actor),
	)

	if req.Name != nil {
		sb.SetMore(sb.Assign("name", *req.Name))
	}
	if req.EffectiveDate != nil {
		sb.SetMore(sb.Assign("effective_date", *req.EffectiveDate))
	}
	if req.PremiumChange != nil {
		sb.SetMore(sb.Assign("premium_change", *req.PremiumChange))
	}
	if req.FeesChange != nil {
		sb.SetMore(sb.Assign("fees_change", *req.FeesChange))
	}
	if req.TaxesChange != nil {
		sb.SetMore(sb.Assign("taxes_change", *req.TaxesChange))
	}
	if req.AgencyFeeChange != nil {
		sb.SetMore(sb.Assign("agency_fee_change", *req.AgencyFeeChange))
	}
	if req.TotalPremiumChange != nil {
		sb.SetMore(sb.Assign("total_premium_change", *req.TotalPremiumChange))
	}
	if req.Notes != nil {
		sb.SetMore(sb.Assign("notes", *req.Notes))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update endorsement", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update endorsement: %w", err)
	}

	r.logger.Info("updated endorsement", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes an endorsement
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.Delete")
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
		r.logger.Error("failed to delete endorsement", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete endorsement: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "endorsement not found")
	}

	r.logger.Info("deleted endorsement", zap.String("id", id))
	return nil
}

// Start begins (or repositions) the endorsement workflow
func (r *Repository) Start(ctx context.Context, actor string, id string, stage string) (*models.Endorsement, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.Start")
	defer span.End()

	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Start(e, stage); err != nil {
		return nil, err
	}
	return r.persistTransition(ctx, actor, e)
}

// Advance moves the endorsement to the given stage
func (r *Repository) Advance(ctx context.Context, actor string, id string, stage string) (*models.Endorsement, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.Advance")
	defer span.End()

	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Advance(e, stage); err != nil {
		return nil, err
	}
	return r.persistTransition(ctx, actor, e)
}

// Complete finishes the endorsement
func (r *Repository) Complete(ctx context.Context, actor string, id string) (*models.Endorsement, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.Complete")
	defer span.End()

	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Complete(e, time.Now()); err != nil {
		return nil, err
	}
	return r.persistTransition(ctx, actor, e)
}

// Cancel cancels the endorsement, recording the reason in the notes
func (r *Repository) Cancel(ctx context.Context, actor string, id string, reason string) (*models.Endorsement, error) {
	ctx, span := tracing.StartSpan(ctx, "EndorsementRepository.Cancel")
	defer span.End()

	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Cancel(e, reason, time.Now()); err != nil {
		return nil, err
	}
	return r.persistTransition(ctx, actor, e)
}

func (r *Repository) persistTransition(ctx context.Context, actor string, e *models.Endorsement) (*models.Endorsement, error) {
	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("status", e.Status),
		sb.Assign("current_stage", e.Stage),
		sb.Assign("notes", e.Notes),
		sb.Assign("completed_at", e.CompletedAt),
		sb.Assign("updated_by", actor),
		sb.Assign("updated_at", time.Now()),
	)
	sb.Where(
		sb.Equal("id", e.ID),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to persist endorsement transition", zap.Error(err), zap.String("id", e.ID))
		return nil, fmt.Errorf("failed to persist endorsement transition: %w", err)
	}

	r.logger.Info("endorsement transition", zap.String("id", e.ID), zap.String("status", string(e.Status)), zap.String("stage", string(e.Stage)))
	return r.GetByID(ctx, e.ID)
}

func zeroOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
