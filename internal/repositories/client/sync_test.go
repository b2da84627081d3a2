package client

import (
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowerzedo/ims-api/pkg/models"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Message.(string)
}

func TestValidateChildren(t *testing.T) {
	t.Run("should accept empty collections", func(t *testing.T) {
		assert.NoError(t, validateChildren(nil, nil, nil))
	})

	t.Run("should accept well-formed children", func(t *testing.T) {
		dbas := []models.DBAPayload{{DBAName: strPtr("Acme West")}}
		contacts := []models.ContactPayload{{ContactTypeID: strPtr("ct-1"), FirstName: strPtr("Jo")}}
		addresses := []models.ClientAddressPayload{{
			Address:       &models.AddressPayload{StreetAddress: strPtr("1 Main St")},
			AddressTypeID: strPtr("at-1"),
		}}
		assert.NoError(t, validateChildren(dbas, contacts, addresses))
	})

	t.Run("should require dba_name on dbas", func(t *testing.T) {
		err := validateChildren([]models.DBAPayload{{DBAName: strPtr("")}}, nil, nil)
		assert.Equal(t, "dba_name is required for dbas.", validationMessage(t, err))

		err = validateChildren([]models.DBAPayload{{}}, nil, nil)
		assert.Equal(t, "dba_name is required for dbas.", validationMessage(t, err))
	})

	t.Run("should require contact_type_id on contacts", func(t *testing.T) {
		err := validateChildren(nil, []models.ContactPayload{{FirstName: strPtr("Jo")}}, nil)
		assert.Equal(t, "contact_type_id is required for contacts.", validationMessage(t, err))
	})

	t.Run("should require an address or id on addresses", func(t *testing.T) {
		err := validateChildren(nil, nil, []models.ClientAddressPayload{{AddressTypeID: strPtr("at-1")}})
		assert.Equal(t, "address is required for addresses.", validationMessage(t, err))
	})

	t.Run("should allow an id-only address item", func(t *testing.T) {
		items := []models.ClientAddressPayload{{ID: strPtr("link-1"), AddressTypeID: strPtr("at-1")}}
		assert.NoError(t, validateChildren(nil, nil, items))
	})

	t.Run("should require address_type_id on addresses", func(t *testing.T) {
		items := []models.ClientAddressPayload{{
			Address: &models.AddressPayload{StreetAddress: strPtr("1 Main St")},
		}}
		err := validateChildren(nil, nil, items)
		assert.Equal(t, "address_type_id is required for addresses.", validationMessage(t, err))
	})
}

func TestPayloadHelpers(t *testing.T) {
	t.Run("strOrEmpty", func(t *testing.T) {
		assert.Equal(t, "", strOrEmpty(nil))
		assert.Equal(t, "x", strOrEmpty(strPtr("x")))
	})

	t.Run("activeOrDefault", func(t *testing.T) {
		assert.True(t, activeOrDefault(nil))
		assert.True(t, activeOrDefault(boolPtr(true)))
		assert.False(t, activeOrDefault(boolPtr(false)))
	})
}
