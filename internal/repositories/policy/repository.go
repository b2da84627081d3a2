// Package policy manages the policy ledger: policies plus their financial
// snapshot and coverage lines.
package policy

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

// SyncMode selects how the nested coverages collection is applied.
type SyncMode int

const (
	// SyncReplace clears existing coverages and recreates from the payload.
	SyncReplace SyncMode = iota
	// SyncMerge merges payload items into existing coverages by id.
	SyncMerge
)

// PolicyRepository defines the interface for policy operations
type PolicyRepository interface {
	Create(ctx context.Context, actor string, req models.CreatePolicyRequest) (*models.Policy, error)
	GetByID(ctx context.Context, id string) (*models.Policy, error)
	List(ctx context.Context, clientID string, params models.ListParams) ([]models.Policy, int, error)
	Update(ctx context.Context, actor string, id string, mode SyncMode, req models.UpdatePolicyRequest) (*models.Policy, error)
	Delete(ctx context.Context, id string) error
}

// Repository implements PolicyRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new policy repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "policies"

var policyColumns = []string{
	"id", "client_id", "policy_number", "status_id", "business_type_id",
	"insurance_type_id", "policy_type_id", "effective_date", "maturity_date",
	"carrier_product_id", "finance_company_id", "producer", "producer_rate",
	"account_manager", "account_manager_rate", "referral_company_id",
	"created_by", "updated_by", "created_at", "updated_at", "is_active",
}

var financialColumns = []string{
	"id", "policy_id", "original_pure_premium", "latest_pure_premium",
	"broker_fee", "taxes", "agency_fee", "total_premium", "down_payment",
	"acct_manager_commission_amt", "referral_commission_amt",
	"created_at", "updated_at", "is_active",
}

var coverageColumns = []string{
	"id", "policy_id", "coverage_type", "limits", "deductible",
	"created_at", "updated_at", "is_active",
}

var orderFields = map[string]string{
	"policy_number":  "policy_number",
	"effective_date": "effective_date",
	"maturity_date":  "maturity_date",
	"created_at":     "created_at",
}

// Create creates a policy with its financial snapshot and coverages atomically
func (r *Repository) Create(ctx context.Context, actor string, req models.CreatePolicyRequest) (*models.Policy, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyRepository.Create")
	defer span.End()

	if err := validateCoverages(req.Coverages); err != nil {
		return nil, err
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(
		"id", "client_id", "policy_number", "status_id", "business_type_id",
		"insurance_type_id", "policy_type_id", "effective_date", "maturity_date",
		"carrier_product_id", "finance_company_id", "producer", "producer_rate",
		"account_manager", "account_manager_rate", "referral_company_id",
		"created_by", "updated_by", "created_at", "updated_at", "is_active",
	)
	sb.Values(
		id, req.ClientID, req.PolicyNumber, req.StatusID, req.BusinessTypeID,
		req.InsuranceTypeID, req.PolicyTypeID, req.EffectiveDate, req.MaturityDate,
		req.CarrierProductID, req.FinanceCompanyID, req.Producer, req.ProducerRate,
		req.AccountManager, req.AccountManagerRate, req.ReferralCompanyID,
		actor, actor, now, now, true,
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "policies_client_id_policy_number_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Policy with this number already exists for the client.")
		}
		r.logger.Error("failed to create policy", zap.Error(err))
		return nil, fmt.Errorf("failed to create policy: %w", err)
	}

	if req.Financial != nil {
		if err := r.upsertFinancial(ctx, tx, id, *req.Financial); err != nil {
			return nil, err
		}
	}
	if err := r.syncCoverages(ctx, tx, id, req.Coverages, SyncReplace); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("created policy", zap.String("id", id), zap.String("policy_number", req.PolicyNumber))
	return r.GetByID(ctx, id)
}

// GetByID gets a policy with its financial snapshot and coverages
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Policy, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(policyColumns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var p models.Policy
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "policy not found")
		}
		r.logger.Error("failed to get policy", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	finSb := sqlbuilder.NewSelectBuilder()
	finSb.Select(financialColumns...)
	finSb.From("policy_financials")
	finSb.Where(finSb.Equal("policy_id", id), finSb.Equal("is_active", true))
	query, args = finSb.Build()

	var fin models.PolicyFinancial
	if err := r.db.GetContext(ctx, &fin, query, args...); err == nil {
		p.Financial = &fin
	} else if err != sql.ErrNoRows {
		r.logger.Error("failed to load policy financial", zap.Error(err), zap.String("policy_id", id))
		return nil, fmt.Errorf("failed to load policy financial: %w", err)
	}

	covSb := sqlbuilder.NewSelectBuilder()
	covSb.Select(coverageColumns...)
	covSb.From("coverages")
	covSb.Where(covSb.Equal("policy_id", id), covSb.Equal("is_active", true))
	covSb.OrderBy("coverage_type ASC")
	query, args = covSb.Build()

	p.Coverages = []models.Coverage{}
	if err := r.db.SelectContext(ctx, &p.Coverages, query, args...); err != nil {
		r.logger.Error("failed to load coverages", zap.Error(err), zap.String("policy_id", id))
		return nil, fmt.Errorf("failed to load coverages: %w", err)
	}

	return &p, nil
}

// List lists policies, optionally scoped to one client
func (r *Repository) List(ctx context.Context, clientID string, params models.ListParams) ([]models.Policy, int, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyRepository.List")
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
			sb.Where(sb.ILike("policy_number", "%"+params.Search+"%"))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count policies", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count policies: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(policyColumns...)
	sb.From(tableName)
	apply(sb)
	sb.OrderBy(models.OrderClause(params.Ordering, orderFields, "effective_date DESC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.Policy{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list policies", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list policies: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a policy, upserts its financial snapshot, and applies the
// coverages collection atomically
func (r *Repository) Update(ctx context.Context, actor string, id string, mode SyncMode, req models.UpdatePolicyRequest) (*models.Policy, error) {
	ctx, span := tracing.StartSpan(ctx, "PolicyRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if req.Coverages != nil {
		if err := validateCoverages(*req.Coverages); err != nil {
			return nil, err
		}
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("updated_at", time.Now()),
		sb.Assign("updated_by", actor),
	)

	if req.PolicyNumber != nil {
		sb.SetMore(sb.Assign("policy_number", *req.PolicyNumber))
	}
	if req.StatusID != nil {
		sb.SetMore(sb.Assign("status_id", *req.StatusID))
	}
	if req.BusinessTypeID != nil {
		sb.SetMore(sb.Assign("business_type_id", *req.BusinessTypeID))
	}
	if req.InsuranceTypeID != nil {
		sb.SetMore(sb.Assign("insurance_type_id", *req.InsuranceTypeID))
	}
	if req.PolicyTypeID != nil {
		sb.SetMore(sb.Assign("policy_type_id", *req.PolicyTypeID))
	}
	if req.EffectiveDate != nil {
		sb.SetMore(sb.Assign("effective_date", *req.EffectiveDate))
	}
	if req.MaturityDate != nil {
		sb.SetMore(sb.Assign("maturity_date", *req.MaturityDate))
	}
	if req.CarrierProductID != nil {
		sb.SetMore(sb.Assign("carrier_product_id", *req.CarrierProductID))
	}
	if req.FinanceCompanyID != nil {
		sb.SetMore(sb.Assign("finance_company_id", *req.FinanceCompanyID))
	}
	if req.Producer != nil {
		sb.SetMore(sb.Assign("producer", *req.Producer))
	}
	if req.ProducerRate != nil {
		sb.SetMore(sb.Assign("producer_rate", *req.ProducerRate))
	}
	if req.AccountManager != nil {
		sb.SetMore(sb.Assign("account_manager", *req.AccountManager))
	}
	if req.AccountManagerRate != nil {
		sb.SetMore(sb.Assign("account_manager_rate", *req.AccountManagerRate))
	}
	if req.ReferralCompanyID != nil {
		sb.SetMore(sb.Assign("referral_company_id", *req.ReferralCompanyID))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "policies_client_id_policy_number_key") {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Policy with this number already exists for the client.")
		}
		r.logger.Error("failed to update policy", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update policy: %w", err)
	}

	if req.Financial != nil {
		if err := r.upsertFinancial(ctx, tx, id, *req.Financial); err != nil {
			return nil, err
		}
	}
	if req.Coverages != nil {
		if err := r.syncCoverages(ctx, tx, id, *req.Coverages, mode); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("updated policy", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a policy and cascades the flag to its financial
// snapshot and coverages
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "PolicyRepository.Delete")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("is_active", false),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to delete policy", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "policy not found")
	}

	for _, child := range []string{"policy_financials", "coverages"} {
		childSb := sqlbuilder.NewUpdateBuilder()
		childSb.Update(child)
		childSb.Set(
			childSb.Assign("is_active", false),
			childSb.Assign("updated_at", now),
		)
		childSb.Where(
			childSb.Equal("policy_id", id),
			childSb.Equal("is_active", true),
		)
		query, args := childSb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to cascade policy delete", zap.Error(err), zap.String("table", child), zap.String("policy_id", id))
			return fmt.Errorf("failed to cascade policy delete: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("deleted policy", zap.String("id", id))
	return nil
}
