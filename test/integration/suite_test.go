// Package integration exercises the repositories against a real PostgreSQL
// database. The suite skips when DATABASE_URL is unset, so it is safe to run
// alongside the unit tests.
package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/database"
	"github.com/lowerzedo/ims-api/internal/repositories/address"
	"github.com/lowerzedo/ims-api/internal/repositories/client"
	"github.com/lowerzedo/ims-api/internal/repositories/policy"
	"github.com/lowerzedo/ims-api/internal/repositories/provider"
	"github.com/lowerzedo/ims-api/internal/repositories/vehicle"
	"github.com/lowerzedo/ims-api/pkg/models"
)

const testActor = "integration-tests"

var (
	dbOnce sync.Once
	dbInst *database.Instance
	dbErr  error
)

// testDB connects to the database named by DATABASE_URL and applies the
// migrations once per run.
func testDB(t *testing.T) *database.Instance {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}
	dbOnce.Do(func() {
		logger := zap.NewNop()
		dbInst, dbErr = database.Connect(context.Background(), database.Settings{URL: url}, logger)
		if dbErr != nil {
			return
		}
		dbErr = database.NewMigrationService("../../db/pg", logger).Migrate(dbInst, "ims")
	})
	require.NoError(t, dbErr)
	return dbInst
}

// lookupID resolves a seeded lookup row id by name. Lookup ids are generated
// by the database, so tests address them by their seeded names.
func lookupID(t *testing.T, db *database.Instance, table, name string) string {
	t.Helper()
	var id string
	err := db.GetContext(context.Background(), &id, fmt.Sprintf("SELECT id FROM %s WHERE name = $1", table), name)
	require.NoError(t, err, "lookup %s %q", table, name)
	return id
}

func uniqueSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}

// testVIN builds a unique 17-character VIN from uuid hex, which stays inside
// the allowed VIN alphabet.
func testVIN() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:17]
}

func seedClient(t *testing.T, db *database.Instance) *models.Client {
	t.Helper()
	c, err := client.NewRepository(db, zap.NewNop()).Create(context.Background(), testActor, models.CreateClientRequest{
		CompanyName: "Carrier " + uniqueSuffix(),
		DOTNumber:   "1234567",
	})
	require.NoError(t, err)
	return c
}

func seedCarrierProduct(t *testing.T, db *database.Instance) *models.CarrierProduct {
	t.Helper()
	p, err := provider.NewProductRepository(db, zap.NewNop()).Create(context.Background(), models.CreateCarrierProductRequest{
		LineOfBusiness:       "Commercial Auto",
		InsuranceCompanyName: "Mutual " + uniqueSuffix(),
	})
	require.NoError(t, err)
	return p
}

// policyRequest builds a minimal valid policy create request against the
// seeded lookups.
func policyRequest(t *testing.T, db *database.Instance, clientID string) models.CreatePolicyRequest {
	t.Helper()
	return models.CreatePolicyRequest{
		ClientID:         clientID,
		PolicyNumber:     "POL-" + uniqueSuffix(),
		StatusID:         lookupID(t, db, "lookup_policy_statuses", "Active"),
		BusinessTypeID:   lookupID(t, db, "lookup_business_types", "New Business"),
		InsuranceTypeID:  lookupID(t, db, "lookup_insurance_types", "Commercial Auto"),
		PolicyTypeID:     lookupID(t, db, "lookup_policy_types", "Annual"),
		EffectiveDate:    time.Now().UTC().Truncate(24 * time.Hour),
		CarrierProductID: seedCarrierProduct(t, db).ID,
	}
}

func seedPolicy(t *testing.T, db *database.Instance, clientID string) *models.Policy {
	t.Helper()
	p, err := policy.NewRepository(db, zap.NewNop()).Create(context.Background(), testActor, policyRequest(t, db, clientID))
	require.NoError(t, err)
	return p
}

func seedVehicle(t *testing.T, db *database.Instance, clientID string) *models.Vehicle {
	t.Helper()
	v, err := vehicle.NewRepository(db, zap.NewNop()).Create(context.Background(), models.CreateVehicleRequest{
		ClientID:      clientID,
		VIN:           testVIN(),
		VehicleTypeID: lookupID(t, db, "lookup_vehicle_types", "Tractor"),
		Year:          2022,
		Make:          "Freightliner",
		Model:         "Cascadia",
	})
	require.NoError(t, err)
	return v
}

func seedAddress(t *testing.T, db *database.Instance) *models.Address {
	t.Helper()
	a, err := address.NewRepository(db, zap.NewNop()).Create(context.Background(), models.CreateAddressRequest{
		StreetAddress: "500 Dock St",
		City:          "Tacoma",
		State:         "WA",
		ZipCode:       "98402",
	})
	require.NoError(t, err)
	return a
}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }
