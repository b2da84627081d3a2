package endorsement

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lowerzedo/ims-api/pkg/models"
)

// DefaultName builds the default endorsement name from the effective date,
// falling back to today.
func DefaultName(effectiveDate *time.Time, now time.Time) string {
	date := now
	if effectiveDate != nil {
		date = *effectiveDate
	}
	return fmt.Sprintf("Endorsement %s", date.Format("01/02/2006"))
}

// Start moves the endorsement into progress. Only draft or already started
// endorsements can be (re)started; an optional stage positions the wizard.
func Start(e *models.Endorsement, stage string) error {
	if e.Status != models.EndorsementStatusDraft && e.Status != models.EndorsementStatusInProgress {
		return echo.NewHTTPError(http.StatusBadRequest, "Only draft endorsements can be started.")
	}
	if stage != "" {
		if !models.ValidStage(models.EndorsementStage(stage)) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid stage supplied.")
		}
		e.Stage = models.EndorsementStage(stage)
	}
	e.Status = models.EndorsementStatusInProgress
	return nil
}

// Advance moves the endorsement to the given stage and forces the status to
// in_progress without checking the current status, so a completed or
// cancelled endorsement can be reopened through this path. That matches the
// system's observed behavior and is kept as-is.
func Advance(e *models.Endorsement, stage string) error {
	if !models.ValidStage(models.EndorsementStage(stage)) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid stage supplied.")
	}
	e.Stage = models.EndorsementStage(stage)
	e.Status = models.EndorsementStatusInProgress
	return nil
}

// Complete finishes the endorsement, pinning the final stage and the
// completion time.
func Complete(e *models.Endorsement, now time.Time) error {
	if e.Status == models.EndorsementStatusCompleted {
		return echo.NewHTTPError(http.StatusBadRequest, "Endorsement already completed.")
	}
	e.Status = models.EndorsementStatusCompleted
	e.Stage = models.EndorsementStageFinal
	e.CompletedAt = &now
	return nil
}

// Cancel cancels the endorsement, appending the trimmed reason to the notes.
func Cancel(e *models.Endorsement, reason string, now time.Time) error {
	if e.Status == models.EndorsementStatusCancelled {
		return echo.NewHTTPError(http.StatusBadRequest, "Endorsement already cancelled.")
	}
	e.Status = models.EndorsementStatusCancelled
	e.Stage = models.EndorsementStageFinal
	e.CompletedAt = &now

	reason = strings.TrimSpace(reason)
	if reason != "" {
		if e.Notes == "" {
			e.Notes = reason
		} else {
			e.Notes = e.Notes + "\n" + reason
		}
	}
	return nil
}
