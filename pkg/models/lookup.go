package models

// Lookup is a reference/enumeration record shared across aggregates. All
// lookup tables share the same shape; policy statuses additionally carry a
// description.
type Lookup struct {
	Identity
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	Timestamps
	SoftDelete
}

// LookupKind names a lookup table exposed under /lookups.
type LookupKind string

const (
	LookupPolicyStatuses   LookupKind = "policy-statuses"
	LookupBusinessTypes    LookupKind = "business-types"
	LookupInsuranceTypes   LookupKind = "insurance-types"
	LookupPolicyTypes      LookupKind = "policy-types"
	LookupFinanceCompanies LookupKind = "finance-companies"
	LookupContactTypes     LookupKind = "contact-types"
	LookupAddressTypes     LookupKind = "address-types"
	LookupVehicleTypes     LookupKind = "vehicle-types"
	LookupLicenseClasses   LookupKind = "license-classes"
	LookupDocumentTypes    LookupKind = "document-types"
)

// LookupTables maps each exposed lookup kind to its table.
var LookupTables = map[LookupKind]string{
	LookupPolicyStatuses:   "lookup_policy_statuses",
	LookupBusinessTypes:    "lookup_business_types",
	LookupInsuranceTypes:   "lookup_insurance_types",
	LookupPolicyTypes:      "lookup_policy_types",
	LookupFinanceCompanies: "lookup_finance_companies",
	LookupContactTypes:     "lookup_contact_types",
	LookupAddressTypes:     "lookup_address_types",
	LookupVehicleTypes:     "lookup_vehicle_types",
	LookupLicenseClasses:   "lookup_license_classes",
	LookupDocumentTypes:    "lookup_document_types",
}

type LookupListResponse struct {
	Items      []Lookup `json:"items"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}
