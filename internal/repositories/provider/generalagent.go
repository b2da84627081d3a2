// Package provider manages the market-side entities: general agents, carrier
// products, and referral companies.
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

// GeneralAgentRepository defines the interface for general agent operations
type GeneralAgentRepository interface {
	Create(ctx context.Context, req models.CreateGeneralAgentRequest) (*models.GeneralAgent, error)
	GetByID(ctx context.Context, id string) (*models.GeneralAgent, error)
	List(ctx context.Context, params models.ListParams) ([]models.GeneralAgent, int, error)
	Update(ctx context.Context, id string, req models.UpdateGeneralAgentRequest) (*models.GeneralAgent, error)
	Delete(ctx context.Context, id string) error
}

// AgentRepository implements GeneralAgentRepository
type AgentRepository struct {
	db     database.DB
	logger *zap.Logger
}

// NewAgentRepository creates a new general agent repository
func NewAgentRepository(db database.DB, logger *zap.Logger) *AgentRepository {
	return &AgentRepository{
		db:     db,
		logger: logger,
	}
}

const agentTableName = "general_agents"

var agentColumns = []string{"id", "name", "agency_commission", "created_at", "updated_at", "is_active"}

// Create creates a new general agent
func (r *AgentRepository) Create(ctx context.Context, req models.CreateGeneralAgentRequest) (*models.GeneralAgent, error) {
	ctx, span := tracing.StartSpan(ctx, "GeneralAgentRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(agentTableName)
	sb.Cols("id", "name", "agency_commission", "created_at", "updated_at", "is_active")
	sb.Values(id, req.Name, req.AgencyCommission, now, now, true)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "general_agents_name_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "General agent with this name already exists.")
		}
		r.logger.Error("failed to create general agent", zap.Error(err))
		return nil, fmt.Errorf("failed to create general agent: %w", err)
	}

	r.logger.Info("created general agent", zap.String("id", id), zap.String("name", req.Name))
	return r.GetByID(ctx, id)
}

// GetByID gets a general agent by ID
func (r *AgentRepository) GetByID(ctx context.Context, id string) (*models.GeneralAgent, error) {
	ctx, span := tracing.StartSpan(ctx, "GeneralAgentRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(agentColumns...)
	sb.From(agentTableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var ga models.GeneralAgent
	if err := r.db.GetContext(ctx, &ga, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "general agent not found")
		}
		r.logger.Error("failed to get general agent", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get general agent: %w", err)
	}

	return &ga, nil
}

// List lists general agents ordered by name
func (r *AgentRepository) List(ctx context.Context, params models.ListParams) ([]models.GeneralAgent, int, error) {
	ctx, span := tracing.StartSpan(ctx, "GeneralAgentRepository.List")
	defer span.End()

	params.Normalize()

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(agentTableName)
	if !params.IncludeInactive {
		countSb.Where(countSb.Equal("is_active", true))
	}
	if params.Search != "" {
		countSb.Where(countSb.ILike("name", "%"+params.Search+"%"))
	}
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count general agents", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count general agents: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(agentColumns...)
	sb.From(agentTableName)
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

	items := []models.GeneralAgent{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list general agents", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list general agents: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a general agent
func (r *AgentRepository) Update(ctx context.Context, id string, req models.UpdateGeneralAgentRequest) (*models.GeneralAgent, error) {
	ctx, span := tracing.StartSpan(ctx, "GeneralAgentRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(agentTableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.Name != nil {
		sb.SetMore(sb.Assign("name", *req.Name))
	}
	if req.AgencyCommission != nil {
		sb.SetMore(sb.Assign("agency_commission", *req.AgencyCommission))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "general_agents_name_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "General agent with this name already exists.")
		}
		r.logger.Error("failed to update general agent", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update general agent: %w", err)
	}

	r.logger.Info("updated general agent", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a general agent
func (r *AgentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "GeneralAgentRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(agentTableName)
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
		r.logger.Error("failed to delete general agent", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete general agent: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "general agent not found")
	}

	r.logger.Info("deleted general agent", zap.String("id", id))
	return nil
}
