package integration

import (
	"context"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/repositories/endorsement"
	"github.com/lowerzedo/ims-api/pkg/models"
)

func TestEndorsementWorkflowPersistence(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := endorsement.NewRepository(db, zap.NewNop())

	c := seedClient(t, db)
	p := seedPolicy(t, db, c.ID)

	created, err := repo.Create(ctx, testActor, models.CreateEndorsementRequest{
		PolicyID:      p.ID,
		PremiumChange: f64Ptr(250),
	})
	require.NoError(t, err)
	assert.Equal(t, models.EndorsementStatusDraft, created.Status)
	assert.Equal(t, models.EndorsementStageClient, created.Stage)

	started, err := repo.Start(ctx, testActor, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.EndorsementStatusInProgress, started.Status)

	advanced, err := repo.Advance(ctx, testActor, created.ID, "premium")
	require.NoError(t, err)
	assert.Equal(t, models.EndorsementStagePremium, advanced.Stage)
	assert.Equal(t, models.EndorsementStatusInProgress, advanced.Status)

	completed, err := repo.Complete(ctx, testActor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EndorsementStatusCompleted, completed.Status)
	assert.Equal(t, models.EndorsementStageFinal, completed.Stage)
	require.NotNil(t, completed.CompletedAt)

	// Fresh read, so the assertions hit the stored row rather than the value
	// returned by the transition.
	persisted, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EndorsementStatusCompleted, persisted.Status)
	assert.Equal(t, models.EndorsementStageFinal, persisted.Stage)
	require.NotNil(t, persisted.CompletedAt)

	_, err = repo.Complete(ctx, testActor, created.ID)
	require.Error(t, err)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Endorsement already completed.", httpErr.Message)
}
