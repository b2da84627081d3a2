package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionTypeLabel(t *testing.T) {
	t.Run("should label known action types", func(t *testing.T) {
		assert.Equal(t, "Client Created", ActionClientCreated.Label())
		assert.Equal(t, "Vehicle Assigned to Policy", ActionVehicleAssigned.Label())
		assert.Equal(t, "Driver Removed from Policy", ActionDriverRemoved.Label())
		assert.Equal(t, "Endorsement Completed", ActionEndorsementCompleted.Label())
		assert.Equal(t, "User Action", ActionUserAction.Label())
	})

	t.Run("should fall back to the raw value for unknown types", func(t *testing.T) {
		assert.Equal(t, "something_else", ActionType("something_else").Label())
	})
}

func TestValidActionType(t *testing.T) {
	assert.True(t, ValidActionType(ActionPolicyBound))
	assert.True(t, ValidActionType(ActionCertificateUpdated))
	assert.False(t, ValidActionType("client_archived"))
	assert.False(t, ValidActionType(""))
}
