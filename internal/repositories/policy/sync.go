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
)

func validateCoverages(items []models.CoveragePayload) error {
	for _, c := range items {
		if c.ID == nil && (c.CoverageType == nil || *c.CoverageType == "") {
			return echo.NewHTTPError(http.StatusBadRequest, "coverage_type is required for coverages.")
		}
	}
	return nil
}

// upsertFinancial applies the financial payload to the policy's single
// financial row, creating it on first write.
func (r *Repository) upsertFinancial(ctx context.Context, tx database.Tx, policyID string, payload models.FinancialPayload) error {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id")
	sb.From("policy_financials")
	sb.Where(sb.Equal("policy_id", policyID))
	query, args := sb.Build()

	now := time.Now()

	var id string
	err := tx.GetContext(ctx, &id, query, args...)
	if err == sql.ErrNoRows {
		ib := sqlbuilder.NewInsertBuilder()
		ib.InsertInto("policy_financials")
		ib.Cols(
			"id", "policy_id", "original_pure_premium", "latest_pure_premium",
			"broker_fee", "taxes", "agency_fee", "total_premium", "down_payment",
			"acct_manager_commission_amt", "referral_commission_amt",
			"created_at", "updated_at", "is_active",
		)
		ib.Values(
			uuid.New().String(), policyID, payload.OriginalPurePremium, payload.LatestPurePremium,
			payload.BrokerFee, payload.Taxes, payload.AgencyFee, payload.TotalPremium, payload.DownPayment,
			payload.AcctManagerCommissionAmt, payload.ReferralCommissionAmt,
			now, now, true,
		)
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to create policy financial", zap.Error(err), zap.String("policy_id", policyID))
			return fmt.Errorf("failed to create policy financial: %w", err)
		}
		return nil
	}
	if err != nil {
		r.logger.Error("failed to load policy financial", zap.Error(err), zap.String("policy_id", policyID))
		return fmt.Errorf("failed to load policy financial: %w", err)
	}

	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update("policy_financials")
	ub.Set(
		ub.Assign("updated_at", now),
		ub.Assign("is_active", true),
	)
	if payload.OriginalPurePremium != nil {
		ub.SetMore(ub.Assign("original_pure_premium", *payload.OriginalPurePremium))
	}
	if payload.LatestPurePremium != nil {
		ub.SetMore(ub.Assign("latest_pure_premium", *payload.LatestPurePremium))
	}
	if payload.BrokerFee != nil {
		ub.SetMore(ub.Assign("broker_fee", *payload.BrokerFee))
	}
	if payload.Taxes != nil {
		ub.SetMore(ub.Assign("taxes", *payload.Taxes))
	}
	if payload.AgencyFee != nil {
		ub.SetMore(ub.Assign("agency_fee", *payload.AgencyFee))
	}
	if payload.TotalPremium != nil {
		ub.SetMore(ub.Assign("total_premium", *payload.TotalPremium))
	}
	if payload.DownPayment != nil {
		ub.SetMore(ub.Assign("down_payment", *payload.DownPayment))
	}
	if payload.AcctManagerCommissionAmt != nil {
		ub.SetMore(ub.Assign("acct_manager_commission_amt", *payload.AcctManagerCommissionAmt))
	}
	if payload.ReferralCommissionAmt != nil {
		ub.SetMore(ub.Assign("referral_commission_amt", *payload.ReferralCommissionAmt))
	}
	ub.Where(ub.Equal("id", id))
	query, args = ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update policy financial", zap.Error(err), zap.String("policy_id", policyID))
		return fmt.Errorf("failed to update policy financial: %w", err)
	}
	return nil
}

func (r *Repository) syncCoverages(ctx context.Context, tx database.Tx, policyID string, items []models.CoveragePayload, mode SyncMode) error {
	if mode == SyncReplace || len(items) == 0 {
		ub := sqlbuilder.NewUpdateBuilder()
		ub.Update("coverages")
		ub.Set(
			ub.Assign("is_active", false),
			ub.Assign("updated_at", time.Now()),
		)
		ub.Where(ub.Equal("policy_id", policyID), ub.Equal("is_active", true))
		query, args := ub.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to clear coverages", zap.Error(err), zap.String("policy_id", policyID))
			return fmt.Errorf("failed to clear coverages: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		mode = SyncReplace
	}

	existing := map[string]bool{}
	if mode == SyncMerge {
		sb := sqlbuilder.NewSelectBuilder()
		sb.Select("id")
		sb.From("coverages")
		sb.Where(sb.Equal("policy_id", policyID))
		query, args := sb.Build()

		var ids []string
		if err := tx.SelectContext(ctx, &ids, query, args...); err != nil && err != sql.ErrNoRows {
			r.logger.Error("failed to load coverage ids", zap.Error(err), zap.String("policy_id", policyID))
			return fmt.Errorf("failed to load coverage ids: %w", err)
		}
		for _, id := range ids {
			existing[id] = true
		}
	}

	now := time.Now()
	for _, item := range items {
		if mode == SyncMerge && item.ID != nil && existing[*item.ID] {
			ub := sqlbuilder.NewUpdateBuilder()
			ub.Update("coverages")
			ub.Set(
				ub.Assign("updated_at", now),
				ub.Assign("is_active", activeOrDefault(item.IsActive)),
			)
			if item.CoverageType != nil {
				ub.SetMore(ub.Assign("coverage_type", *item.CoverageType))
			}
			if item.Limits != nil {
				ub.SetMore(ub.Assign("limits", *item.Limits))
			}
			if item.Deductible != nil {
				ub.SetMore(ub.Assign("deductible", *item.Deductible))
			}
			ub.Where(ub.Equal("id", *item.ID), ub.Equal("policy_id", policyID))
			query, args := ub.Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				r.logger.Error("failed to update coverage", zap.Error(err), zap.String("id", *item.ID))
				return fmt.Errorf("failed to update coverage: %w", err)
			}
			continue
		}

		if item.CoverageType == nil || *item.CoverageType == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "coverage_type is required for coverages.")
		}

		limits := ""
		if item.Limits != nil {
			limits = *item.Limits
		}

		ib := sqlbuilder.NewInsertBuilder()
		ib.InsertInto("coverages")
		ib.Cols("id", "policy_id", "coverage_type", "limits", "deductible", "created_at", "updated_at", "is_active")
		ib.Values(uuid.New().String(), policyID, *item.CoverageType, limits, item.Deductible, now, now, activeOrDefault(item.IsActive))
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to create coverage", zap.Error(err), zap.String("policy_id", policyID))
			return fmt.Errorf("failed to create coverage: %w", err)
		}
	}

	return nil
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
