package endorsement

import (
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowerzedo/ims-api/pkg/models"
)

func httpMessage(t *testing.T, err error) string {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Message.(string)
}

func TestDefaultName(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("should use the effective date when set", func(t *testing.T) {
		effective := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, "Endorsement 07/01/2025", DefaultName(&effective, now))
	})

	t.Run("should fall back to today when no effective date", func(t *testing.T) {
		assert.Equal(t, "Endorsement 03/14/2025", DefaultName(nil, now))
	})
}

func TestStart(t *testing.T) {
	t.Run("should move a draft into progress", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusDraft, Stage: models.EndorsementStageClient}

		err := Start(e, "")
		require.NoError(t, err)
		assert.Equal(t, models.EndorsementStatusInProgress, e.Status)
		assert.Equal(t, models.EndorsementStageClient, e.Stage)
	})

	t.Run("should position the wizard when a stage is given", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusDraft, Stage: models.EndorsementStageClient}

		err := Start(e, "vehicles")
		require.NoError(t, err)
		assert.Equal(t, models.EndorsementStageVehicles, e.Stage)
	})

	t.Run("should allow restarting an in-progress endorsement", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusInProgress, Stage: models.EndorsementStageDrivers}

		err := Start(e, "")
		require.NoError(t, err)
		assert.Equal(t, models.EndorsementStatusInProgress, e.Status)
	})

	t.Run("should reject starting a completed endorsement", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusCompleted}

		err := Start(e, "")
		assert.Equal(t, "Only draft endorsements can be started.", httpMessage(t, err))
	})

	t.Run("should reject an unknown stage", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusDraft}

		err := Start(e, "underwriting")
		assert.Equal(t, "Invalid stage supplied.", httpMessage(t, err))
	})
}

func TestAdvance(t *testing.T) {
	t.Run("should move to the given stage", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusInProgress, Stage: models.EndorsementStageClient}

		err := Advance(e, "premium")
		require.NoError(t, err)
		assert.Equal(t, models.EndorsementStagePremium, e.Stage)
		assert.Equal(t, models.EndorsementStatusInProgress, e.Status)
	})

	t.Run("should reopen a completed endorsement", func(t *testing.T) {
		completed := time.Now()
		e := &models.Endorsement{
			Status:      models.EndorsementStatusCompleted,
			Stage:       models.EndorsementStageFinal,
			CompletedAt: &completed,
		}

		err := Advance(e, "coverages")
		require.NoError(t, err)
		assert.Equal(t, models.EndorsementStatusInProgress, e.Status)
		assert.Equal(t, models.EndorsementStageCoverages, e.Stage)
	})

	t.Run("should reject an unknown stage", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusInProgress}

		err := Advance(e, "review")
		assert.Equal(t, "Invalid stage supplied.", httpMessage(t, err))
	})
}

func TestComplete(t *testing.T) {
	now := time.Date(2025, 5, 20, 16, 30, 0, 0, time.UTC)

	t.Run("should pin the final stage and completion time", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusInProgress, Stage: models.EndorsementStagePremium}

		err := Complete(e, now)
		require.NoError(t, err)
		assert.Equal(t, models.EndorsementStatusCompleted, e.Status)
		assert.Equal(t, models.EndorsementStageFinal, e.Stage)
		require.NotNil(t, e.CompletedAt)
		assert.Equal(t, now, *e.CompletedAt)
	})

	t.Run("should complete a cancelled endorsement", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusCancelled}

		err := Complete(e, now)
		require.NoError(t, err)
		assert.Equal(t, models.EndorsementStatusCompleted, e.Status)
	})

	t.Run("should reject completing twice", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusCompleted}

		err := Complete(e, now)
		assert.Equal(t, "Endorsement already completed.", httpMessage(t, err))
	})
}

func TestCancel(t *testing.T) {
	now := time.Date(2025, 5, 20, 16, 30, 0, 0, time.UTC)

	t.Run("should cancel and record the reason in the notes", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusInProgress, Notes: ""}

		err := Cancel(e, "  client withdrew the request  ", now)
		require.NoError(t, err)
		assert.Equal(t, models.EndorsementStatusCancelled, e.Status)
		assert.Equal(t, models.EndorsementStageFinal, e.Stage)
		assert.Equal(t, "client withdrew the request", e.Notes)
		require.NotNil(t, e.CompletedAt)
		assert.Equal(t, now, *e.CompletedAt)
	})

	t.Run("should append the reason to existing notes", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusDraft, Notes: "initial note"}

		err := Cancel(e, "duplicate entry", now)
		require.NoError(t, err)
		assert.Equal(t, "initial note\nduplicate entry", e.Notes)
	})

	t.Run("should leave notes untouched when the reason is blank", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusInProgress, Notes: "keep me"}

		err := Cancel(e, "   ", now)
		require.NoError(t, err)
		assert.Equal(t, "keep me", e.Notes)
	})

	t.Run("should reject cancelling twice", func(t *testing.T) {
		e := &models.Endorsement{Status: models.EndorsementStatusCancelled}

		err := Cancel(e, "again", now)
		assert.Equal(t, "Endorsement already cancelled.", httpMessage(t, err))
	})
}
