// Package lookup serves the shared reference tables.
package lookup

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/huandu/go-sqlbuilder"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/database"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

// LookupRepository defines the read surface of the lookup tables.
type LookupRepository interface {
	List(ctx context.Context, kind models.LookupKind, params models.ListParams) ([]models.Lookup, int, error)
	GetByID(ctx context.Context, kind models.LookupKind, id string) (*models.Lookup, error)
}

// Repository implements LookupRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new lookup repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// columns returns the column list for a lookup table. Only policy statuses
// carry a description.
func columns(kind models.LookupKind) []string {
	if kind == models.LookupPolicyStatuses {
		return []string{"id", "name", "description", "created_at", "updated_at", "is_active"}
	}
	return []string{"id", "name", "created_at", "updated_at", "is_active"}
}

// List lists lookup values ordered by name
func (r *Repository) List(ctx context.Context, kind models.LookupKind, params models.ListParams) ([]models.Lookup, int, error) {
	ctx, span := tracing.StartSpan(ctx, "LookupRepository.List")
	defer span.End()

	table, ok := models.LookupTables[kind]
	if !ok {
		return nil, 0, echo.NewHTTPError(http.StatusNotFound, "unknown lookup type")
	}

	params.Normalize()

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(table)
	if !params.IncludeInactive {
		countSb.Where(countSb.Equal("is_active", true))
	}
	if params.Search != "" {
		countSb.Where(countSb.ILike("name", "%"+params.Search+"%"))
	}
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count lookups", zap.Error(err), zap.String("table", table))
		return nil, 0, fmt.Errorf("failed to count lookups: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(columns(kind)...)
	sb.From(table)
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

	items := []models.Lookup{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list lookups", zap.Error(err), zap.String("table", table))
		return nil, 0, fmt.Errorf("failed to list lookups: %w", err)
	}

	return items, totalCount, nil
}

// GetByID gets a lookup value by ID
func (r *Repository) GetByID(ctx context.Context, kind models.LookupKind, id string) (*models.Lookup, error) {
	ctx, span := tracing.StartSpan(ctx, "LookupRepository.GetByID")
	defer span.End()

	table, ok := models.LookupTables[kind]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown lookup type")
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(columns(kind)...)
	sb.From(table)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var item models.Lookup
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "lookup value not found")
		}
		r.logger.Error("failed to get lookup", zap.Error(err), zap.String("table", table), zap.String("id", id))
		return nil, fmt.Errorf("failed to get lookup: %w", err)
	}

	return &item, nil
}
