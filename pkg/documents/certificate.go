package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/lowerzedo/ims-api/pkg/models"
)

// CertificateData is everything the certificate document needs, resolved by
// the caller before rendering.
type CertificateData struct {
	Certificate *models.Certificate
	Holder      *models.CertificateHolder
	Policy      *models.Policy
	Client      *models.Client
	Vehicles    []models.Vehicle
	Drivers     []models.Driver
	IssuedAt    time.Time
}

// DocumentPath returns the storage-relative path for a certificate document.
func DocumentPath(clientID, policyID, certificateID, verificationCode string) string {
	return fmt.Sprintf("certificates/%s/%s/%s/certificate-%s.pdf", clientID, policyID, certificateID, verificationCode)
}

// CertificateLines builds the text content of a certificate of insurance.
func CertificateLines(data CertificateData) []string {
	lines := []string{
		"Insurance Management System",
		"Certificate of Insurance",
		"",
		fmt.Sprintf("Certificate #: %s", data.Certificate.VerificationCode),
		fmt.Sprintf("Issued: %s", data.IssuedAt.Format("01/02/2006")),
		fmt.Sprintf("Policy: %s", data.Policy.PolicyNumber),
		fmt.Sprintf("Client: %s", data.Client.CompanyName),
		"",
		fmt.Sprintf("Certificate Holder: %s", data.Holder.Name),
	}

	if data.Holder.ContactPerson != "" {
		lines = append(lines, fmt.Sprintf("Contact: %s", data.Holder.ContactPerson))
	}
	if data.Holder.Email != "" {
		lines = append(lines, fmt.Sprintf("Email: %s", data.Holder.Email))
	}
	if data.Holder.PhoneNumber != "" {
		lines = append(lines, fmt.Sprintf("Phone: %s", data.Holder.PhoneNumber))
	}
	if data.Holder.Address != nil {
		a := data.Holder.Address
		lines = append(lines, fmt.Sprintf("%s, %s, %s %s", a.StreetAddress, a.City, a.State, a.ZipCode))
	}

	lines = append(lines, "", "Vehicles")
	if len(data.Vehicles) == 0 {
		lines = append(lines, "  None selected")
	}
	for _, v := range data.Vehicles {
		label := v.UnitNumber
		if label == "" {
			label = v.VIN
		}
		line := fmt.Sprintf("  %s - %d %s %s", label, v.Year, v.Make, v.Model)
		if v.PDAmount != nil {
			line += fmt.Sprintf(" (PD $%.2f)", *v.PDAmount)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "", "Drivers")
	if len(data.Drivers) == 0 {
		lines = append(lines, "  None selected")
	}
	for _, d := range data.Drivers {
		name := strings.TrimSpace(fmt.Sprintf("%s %s", d.FirstName, d.LastName))
		lines = append(lines, fmt.Sprintf("  %s - License %s %s", name, d.LicenseState, d.LicenseNumber))
	}

	lines = append(lines,
		"",
		"Verification",
		"  Present this certificate along with the verification code for authenticity checks.",
	)
	return lines
}

// RenderCertificate renders the certificate document for the given data.
func RenderCertificate(data CertificateData) []byte {
	return RenderPDF(CertificateLines(data))
}
