package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidStage(t *testing.T) {
	t.Run("should accept every wizard stage", func(t *testing.T) {
		for _, stage := range []EndorsementStage{
			EndorsementStageClient,
			EndorsementStageVehicles,
			EndorsementStageDrivers,
			EndorsementStageCoverages,
			EndorsementStagePremium,
			EndorsementStageFinal,
		} {
			assert.True(t, ValidStage(stage), string(stage))
		}
	})

	t.Run("should reject unknown stages", func(t *testing.T) {
		assert.False(t, ValidStage("underwriting"))
		assert.False(t, ValidStage(""))
	})
}

func TestChangeTypeLabel(t *testing.T) {
	t.Run("should label known change types", func(t *testing.T) {
		assert.Equal(t, "Client", ChangeTypeClient.Label())
		assert.Equal(t, "Vehicles", ChangeTypeVehicles.Label())
		assert.Equal(t, "Premium", ChangeTypePremium.Label())
		assert.Equal(t, "Other", ChangeTypeOther.Label())
	})

	t.Run("should fall back to the raw value for unknown types", func(t *testing.T) {
		assert.Equal(t, "mystery", ChangeType("mystery").Label())
	})
}

func TestEndorsementChangeTypes(t *testing.T) {
	change := func(ct ChangeType) EndorsementChange {
		return EndorsementChange{ChangeType: ct}
	}

	t.Run("should deduplicate and order by declaration order", func(t *testing.T) {
		e := &Endorsement{Changes: []EndorsementChange{
			change(ChangeTypePremium),
			change(ChangeTypeVehicles),
			change(ChangeTypePremium),
			change(ChangeTypeClient),
		}}

		options := e.ChangeTypes()
		require.Len(t, options, 3)
		assert.Equal(t, ChangeTypeClient, options[0].Value)
		assert.Equal(t, "Client", options[0].Label)
		assert.Equal(t, ChangeTypeVehicles, options[1].Value)
		assert.Equal(t, "Vehicles", options[1].Label)
		assert.Equal(t, ChangeTypePremium, options[2].Value)
		assert.Equal(t, "Premium", options[2].Label)
	})

	t.Run("should return an empty slice when there are no changes", func(t *testing.T) {
		e := &Endorsement{}
		assert.Empty(t, e.ChangeTypes())
	})
}

func TestChangeTypeIndex(t *testing.T) {
	assert.Equal(t, 0, ChangeTypeIndex(ChangeTypeClient))
	assert.Equal(t, 6, ChangeTypeIndex(ChangeTypeOther))
	assert.Equal(t, -1, ChangeTypeIndex("mystery"))
}

func TestValidChangeType(t *testing.T) {
	assert.True(t, ValidChangeType(ChangeTypeCoverages))
	assert.False(t, ValidChangeType("mystery"))
}
