package documents

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowerzedo/ims-api/pkg/models"
)

func certificateFixture() CertificateData {
	pd := 45000.0
	return CertificateData{
		Certificate: &models.Certificate{VerificationCode: "A1B2C3D4E5F6"},
		Holder: &models.CertificateHolder{
			Name:          "Port Authority",
			ContactPerson: "Dana Reyes",
			Email:         "dana@portauthority.example",
			PhoneNumber:   "555-0142",
			Address: &models.Address{
				StreetAddress: "1 Harbor Way",
				City:          "Oakland",
				State:         "CA",
				ZipCode:       "94607",
			},
		},
		Policy:   &models.Policy{PolicyNumber: "CA-2025-0017"},
		Client:   &models.Client{CompanyName: "Golden Gate Freight LLC"},
		IssuedAt: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		Vehicles: []models.Vehicle{
			{UnitNumber: "TRK-7", Year: 2021, Make: "Freightliner", Model: "Cascadia", PDAmount: &pd},
			{VIN: "1FUJGLDR2LLL8888A", Year: 2019, Make: "Kenworth", Model: "T680"},
		},
		Drivers: []models.Driver{
			{FirstName: "Maria", LastName: "Lopez", LicenseState: "CA", LicenseNumber: "D1234567"},
		},
	}
}

func TestDocumentPath(t *testing.T) {
	path := DocumentPath("client-1", "policy-2", "cert-3", "A1B2C3D4E5F6")
	assert.Equal(t, "certificates/client-1/policy-2/cert-3/certificate-A1B2C3D4E5F6.pdf", path)
}

func TestCertificateLines(t *testing.T) {
	t.Run("should include the certificate header and parties", func(t *testing.T) {
		lines := CertificateLines(certificateFixture())
		text := strings.Join(lines, "\n")

		assert.Equal(t, "Insurance Management System", lines[0])
		assert.Equal(t, "Certificate of Insurance", lines[1])
		assert.Contains(t, text, "Certificate #: A1B2C3D4E5F6")
		assert.Contains(t, text, "Issued: 06/15/2025")
		assert.Contains(t, text, "Policy: CA-2025-0017")
		assert.Contains(t, text, "Client: Golden Gate Freight LLC")
		assert.Contains(t, text, "Certificate Holder: Port Authority")
		assert.Contains(t, text, "Contact: Dana Reyes")
		assert.Contains(t, text, "1 Harbor Way, Oakland, CA 94607")
	})

	t.Run("should list vehicles by unit number, falling back to VIN", func(t *testing.T) {
		text := strings.Join(CertificateLines(certificateFixture()), "\n")

		assert.Contains(t, text, "  TRK-7 - 2021 Freightliner Cascadia (PD $45000.00)")
		assert.Contains(t, text, "  1FUJGLDR2LLL8888A - 2019 Kenworth T680")
	})

	t.Run("should list drivers with license details", func(t *testing.T) {
		text := strings.Join(CertificateLines(certificateFixture()), "\n")
		assert.Contains(t, text, "  Maria Lopez - License CA D1234567")
	})

	t.Run("should mark empty selections", func(t *testing.T) {
		data := certificateFixture()
		data.Vehicles = nil
		data.Drivers = nil
		data.Holder.ContactPerson = ""
		data.Holder.Address = nil

		lines := CertificateLines(data)
		text := strings.Join(lines, "\n")
		assert.Contains(t, text, "Vehicles\n  None selected")
		assert.Contains(t, text, "Drivers\n  None selected")
		assert.NotContains(t, text, "Contact:")
	})

	t.Run("should end with the verification notice", func(t *testing.T) {
		lines := CertificateLines(certificateFixture())
		require.True(t, len(lines) >= 2)
		assert.Equal(t, "Verification", lines[len(lines)-2])
		assert.Equal(t, "  Present this certificate along with the verification code for authenticity checks.", lines[len(lines)-1])
	})
}

func TestRenderCertificate(t *testing.T) {
	data := RenderCertificate(certificateFixture())
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "%PDF-1.4"))
	assert.Contains(t, text, "(Certificate of Insurance) Tj")
}
