package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/repositories/policy"
	"github.com/lowerzedo/ims-api/pkg/models"
)

func TestPolicySoftDeleteCascade(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := policy.NewRepository(db, zap.NewNop())

	c := seedClient(t, db)
	req := policyRequest(t, db, c.ID)
	req.Financial = &models.FinancialPayload{
		TotalPremium: f64Ptr(18500),
		DownPayment:  f64Ptr(3700),
	}
	req.Coverages = []models.CoveragePayload{
		{CoverageType: strPtr("Auto Liability"), Limits: strPtr("$1,000,000 CSL")},
		{CoverageType: strPtr("Motor Truck Cargo"), Deductible: f64Ptr(1000)},
	}

	p, err := repo.Create(ctx, testActor, req)
	require.NoError(t, err)
	require.NotNil(t, p.Financial)
	require.Len(t, p.Coverages, 2)

	require.NoError(t, repo.Delete(ctx, p.ID))

	var active bool
	require.NoError(t, db.GetContext(ctx, &active, "SELECT is_active FROM policies WHERE id = $1", p.ID))
	assert.False(t, active)

	var activeFinancials int
	require.NoError(t, db.GetContext(ctx, &activeFinancials,
		"SELECT COUNT(*) FROM policy_financials WHERE policy_id = $1 AND is_active", p.ID))
	assert.Zero(t, activeFinancials, "delete should cascade to the financial snapshot")

	var activeCoverages int
	require.NoError(t, db.GetContext(ctx, &activeCoverages,
		"SELECT COUNT(*) FROM coverages WHERE policy_id = $1 AND is_active", p.ID))
	assert.Zero(t, activeCoverages, "delete should cascade to coverages")
}
