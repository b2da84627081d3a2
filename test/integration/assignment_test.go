package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/repositories/assignment"
	"github.com/lowerzedo/ims-api/pkg/models"
)

func TestPolicyVehicleDuplicateAssignment(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := assignment.NewVehicleRepository(db, zap.NewNop())

	c := seedClient(t, db)
	p := seedPolicy(t, db, c.ID)
	v := seedVehicle(t, db, c.ID)
	garage := seedAddress(t, db)

	req := models.CreatePolicyVehicleRequest{
		PolicyID:          p.ID,
		VehicleID:         v.ID,
		GaragingAddressID: garage.ID,
	}

	first, err := repo.Create(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	_, err = repo.Create(ctx, req)
	require.Error(t, err)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, "Vehicle is already assigned to this policy.", httpErr.Message)
}
