package models

import "encoding/json"

// CertificateHolder is a party requesting proof of insurance.
type CertificateHolder struct {
	Identity
	Name          string  `json:"name" db:"name"`
	AddressID     *string `json:"address_id" db:"address_id"`
	Email         string  `json:"email" db:"email"`
	ContactPerson string  `json:"contact_person" db:"contact_person"`
	PhoneNumber   string  `json:"phone_number" db:"phone_number"`
	Timestamps
	SoftDelete

	Address *Address `json:"address,omitempty" db:"-"`
}

// MasterCertificate is a reusable certificate template for a policy. Unique
// per (policy, name).
type MasterCertificate struct {
	Identity
	PolicyID string          `json:"policy_id" db:"policy_id"`
	Name     string          `json:"name" db:"name"`
	Settings json.RawMessage `json:"settings" db:"settings"`
	Timestamps
	SoftDelete
}

// Certificate is an issued certificate of insurance. The verification code is
// assigned once at creation and never changes.
type Certificate struct {
	Identity
	MasterCertificateID string  `json:"master_certificate_id" db:"master_certificate_id"`
	CertificateHolderID string  `json:"certificate_holder_id" db:"certificate_holder_id"`
	VerificationCode    string  `json:"verification_code" db:"verification_code"`
	DocumentPath        *string `json:"document_path" db:"document_path"`
	Timestamps
	SoftDelete

	VehicleIDs []string `json:"vehicle_ids,omitempty" db:"-"`
	DriverIDs  []string `json:"driver_ids,omitempty" db:"-"`
}

type CreateCertificateHolderRequest struct {
	Name          string          `json:"name" validate:"required"`
	Address       *AddressPayload `json:"address"`
	Email         string          `json:"email" validate:"omitempty,email"`
	ContactPerson string          `json:"contact_person"`
	PhoneNumber   string          `json:"phone_number"`
}

type UpdateCertificateHolderRequest struct {
	Name          *string         `json:"name"`
	Address       *AddressPayload `json:"address"`
	Email         *string         `json:"email" validate:"omitempty,email"`
	ContactPerson *string         `json:"contact_person"`
	PhoneNumber   *string         `json:"phone_number"`
}

type CreateMasterCertificateRequest struct {
	PolicyID string          `json:"policy_id" validate:"required,uuid4"`
	Name     string          `json:"name" validate:"required"`
	Settings json.RawMessage `json:"settings"`
}

type UpdateMasterCertificateRequest struct {
	Name     *string         `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

type CreateCertificateRequest struct {
	MasterCertificateID string   `json:"master_certificate_id" validate:"required,uuid4"`
	CertificateHolderID string   `json:"certificate_holder_id" validate:"required,uuid4"`
	VehicleIDs          []string `json:"vehicle_ids" validate:"dive,uuid4"`
	DriverIDs           []string `json:"driver_ids" validate:"dive,uuid4"`
}

// UpdateCertificateRequest updates an issued certificate. Selection pointers
// distinguish an omitted key (leave untouched) from an empty list (clear).
type UpdateCertificateRequest struct {
	CertificateHolderID *string   `json:"certificate_holder_id" validate:"omitempty,uuid4"`
	VehicleIDs          *[]string `json:"vehicle_ids" validate:"omitempty,dive,uuid4"`
	DriverIDs           *[]string `json:"driver_ids" validate:"omitempty,dive,uuid4"`
}

type CertificateHolderResponse struct {
	CertificateHolder
}

type CertificateHolderListResponse struct {
	Items      []CertificateHolder `json:"items"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

type MasterCertificateResponse struct {
	MasterCertificate
}

type MasterCertificateListResponse struct {
	Items      []MasterCertificate `json:"items"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

type CertificateResponse struct {
	Certificate
}

type CertificateListResponse struct {
	Items      []Certificate `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}
