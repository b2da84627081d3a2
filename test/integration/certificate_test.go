package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/repositories/certificate"
	"github.com/lowerzedo/ims-api/pkg/documents"
	"github.com/lowerzedo/ims-api/pkg/models"
)

const countByMaster = "SELECT COUNT(*) FROM certificates WHERE master_certificate_id = $1"

func TestCertificateIssuance(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	logger := zap.NewNop()

	c := seedClient(t, db)
	p := seedPolicy(t, db, c.ID)

	holder, err := certificate.NewHolderRepository(db, logger).Create(ctx, models.CreateCertificateHolderRequest{
		Name: "Port of Tacoma " + uniqueSuffix(),
	})
	require.NoError(t, err)

	master, err := certificate.NewMasterRepository(db, logger).Create(ctx, models.CreateMasterCertificateRequest{
		PolicyID: p.ID,
		Name:     "Standard " + uniqueSuffix(),
	})
	require.NoError(t, err)

	t.Run("should store the rendered document with the certificate", func(t *testing.T) {
		root := t.TempDir()
		repo := certificate.NewRepository(db, documents.NewStore(root), logger)
		v := seedVehicle(t, db, c.ID)

		cert, err := repo.Create(ctx, models.CreateCertificateRequest{
			MasterCertificateID: master.ID,
			CertificateHolderID: holder.ID,
			VehicleIDs:          []string{v.ID},
		})
		require.NoError(t, err)
		require.NotNil(t, cert.DocumentPath)
		assert.Len(t, cert.VerificationCode, 12)

		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(*cert.DocumentPath)))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "%PDF-1.4"))
	})

	t.Run("should not persist a certificate when the document cannot be stored", func(t *testing.T) {
		// Rooting the store at a regular file makes every Save fail.
		blocked := filepath.Join(t.TempDir(), "not-a-directory")
		require.NoError(t, os.WriteFile(blocked, []byte("occupied"), 0o644))
		repo := certificate.NewRepository(db, documents.NewStore(blocked), logger)

		var before int
		require.NoError(t, db.GetContext(ctx, &before, countByMaster, master.ID))

		_, err := repo.Create(ctx, models.CreateCertificateRequest{
			MasterCertificateID: master.ID,
			CertificateHolderID: holder.ID,
		})
		require.Error(t, err)

		var after int
		require.NoError(t, db.GetContext(ctx, &after, countByMaster, master.ID))
		assert.Equal(t, before, after, "a failed document write must not leave a certificate row")
	})
}
