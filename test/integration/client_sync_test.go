package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/repositories/client"
	"github.com/lowerzedo/ims-api/pkg/models"
)

func TestClientNestedSync(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := client.NewRepository(db, zap.NewNop())

	ownerType := lookupID(t, db, "lookup_contact_types", "Owner")
	mailingType := lookupID(t, db, "lookup_address_types", "Mailing")

	newClient := func(t *testing.T) *models.Client {
		c, err := repo.Create(ctx, testActor, models.CreateClientRequest{
			CompanyName: "Carrier " + uniqueSuffix(),
			DBAs: []models.DBAPayload{
				{DBAName: strPtr("Alpha")},
				{DBAName: strPtr("Beta")},
			},
			Contacts: []models.ContactPayload{
				{FirstName: strPtr("Rosa"), LastName: strPtr("Nguyen"), ContactTypeID: &ownerType},
			},
			Addresses: []models.ClientAddressPayload{
				{
					Address: &models.AddressPayload{
						StreetAddress: strPtr("12 Pier Rd"),
						City:          strPtr("Oakland"),
						State:         strPtr("CA"),
						ZipCode:       strPtr("94607"),
					},
					AddressTypeID: &mailingType,
				},
			},
		})
		require.NoError(t, err)
		require.Len(t, c.DBAs, 2)
		require.Len(t, c.Contacts, 1)
		require.Len(t, c.Addresses, 1)
		return c
	}

	t.Run("should merge collections by id and leave omitted collections untouched", func(t *testing.T) {
		c := newClient(t)

		var alphaID string
		for _, d := range c.DBAs {
			if d.DBAName == "Alpha" {
				alphaID = d.ID
			}
		}
		require.NotEmpty(t, alphaID)

		updated, err := repo.Update(ctx, testActor, c.ID, client.SyncMerge, models.UpdateClientRequest{
			DBAs: &[]models.DBAPayload{
				{ID: &alphaID, DBAName: strPtr("Alpha Renamed")},
				{DBAName: strPtr("Gamma")},
			},
		})
		require.NoError(t, err)

		names := make([]string, 0, len(updated.DBAs))
		for _, d := range updated.DBAs {
			names = append(names, d.DBAName)
		}
		assert.ElementsMatch(t, []string{"Alpha Renamed", "Beta", "Gamma"}, names)
		assert.Len(t, updated.Contacts, 1)
		assert.Len(t, updated.Addresses, 1)
	})

	t.Run("should clear a collection on an explicit empty list", func(t *testing.T) {
		c := newClient(t)

		updated, err := repo.Update(ctx, testActor, c.ID, client.SyncMerge, models.UpdateClientRequest{
			Contacts: &[]models.ContactPayload{},
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Contacts)
		assert.Len(t, updated.DBAs, 2)
		assert.Len(t, updated.Addresses, 1)
	})

	t.Run("should garbage-collect addresses orphaned by cleared links", func(t *testing.T) {
		c := newClient(t)
		addressID := c.Addresses[0].AddressID

		updated, err := repo.Update(ctx, testActor, c.ID, client.SyncMerge, models.UpdateClientRequest{
			Addresses: &[]models.ClientAddressPayload{},
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Addresses)

		var active bool
		require.NoError(t, db.GetContext(ctx, &active, "SELECT is_active FROM addresses WHERE id = $1", addressID))
		assert.False(t, active, "address with no remaining active links should be deactivated")
	})
}
