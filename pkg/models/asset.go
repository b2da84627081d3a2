package models

import (
	"regexp"
	"time"
)

// VINPattern is the 17-character VIN format, excluding I, O, and Q.
var VINPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// Loss payee contact preferences.
const (
	LossPayeePreferenceEmail = "EMAIL"
	LossPayeePreferenceFax   = "FAX"
)

// LossPayee is an entity with a financial interest in a vehicle.
type LossPayee struct {
	Identity
	Name              string `json:"name" db:"name"`
	Email             string `json:"email" db:"email"`
	ContactPersonName string `json:"contact_person_name" db:"contact_person_name"`
	Telephone         string `json:"telephone" db:"telephone"`
	Fax               string `json:"fax" db:"fax"`
	CellPhone         string `json:"cell_phone" db:"cell_phone"`
	Preference        string `json:"preference" db:"preference"`
	Remarks           string `json:"remarks" db:"remarks"`
	AddressID         string `json:"address_id" db:"address_id"`
	Timestamps
	SoftDelete

	Address *Address `json:"address,omitempty" db:"-"`
}

// Vehicle is a client-owned vehicle tracked for policy assignments.
type Vehicle struct {
	Identity
	ClientID      string   `json:"client_id" db:"client_id"`
	VIN           string   `json:"vin" db:"vin"`
	UnitNumber    string   `json:"unit_number" db:"unit_number"`
	VehicleTypeID string   `json:"vehicle_type_id" db:"vehicle_type_id"`
	Year          int      `json:"year" db:"year"`
	Make          string   `json:"make" db:"make"`
	Model         string   `json:"model" db:"model"`
	GVW           *int     `json:"gvw" db:"gvw"`
	PDAmount      *float64 `json:"pd_amount" db:"pd_amount"`
	Deductible    *float64 `json:"deductible" db:"deductible"`
	LossPayeeID   *string  `json:"loss_payee_id" db:"loss_payee_id"`
	Timestamps
	SoftDelete
}

// Driver is a client driver record used for assignments and compliance.
type Driver struct {
	Identity
	ClientID       string     `json:"client_id" db:"client_id"`
	FirstName      string     `json:"first_name" db:"first_name"`
	MiddleName     string     `json:"middle_name" db:"middle_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	DateOfBirth    time.Time  `json:"date_of_birth" db:"date_of_birth"`
	LicenseNumber  string     `json:"license_number" db:"license_number"`
	LicenseState   string     `json:"license_state" db:"license_state"`
	LicenseClassID string     `json:"license_class_id" db:"license_class_id"`
	IssueDate      *time.Time `json:"issue_date" db:"issue_date"`
	HireDate       *time.Time `json:"hire_date" db:"hire_date"`
	Violations     int        `json:"violations" db:"violations"`
	Accidents      int        `json:"accidents" db:"accidents"`
	Timestamps
	SoftDelete
}

// Policy vehicle assignment statuses.
const (
	PolicyVehicleStatusActive     = "active"
	PolicyVehicleStatusInactive   = "inactive"
	PolicyVehicleStatusUnassigned = "unassigned"
)

// Policy driver assignment statuses.
const (
	PolicyDriverStatusActive      = "active"
	PolicyDriverStatusInactive    = "inactive"
	PolicyDriverStatusNotAssigned = "not_assigned"
)

// PolicyVehicle assigns a vehicle to a policy. Unique per (policy, vehicle).
type PolicyVehicle struct {
	Identity
	PolicyID          string     `json:"policy_id" db:"policy_id"`
	VehicleID         string     `json:"vehicle_id" db:"vehicle_id"`
	Status            string     `json:"status" db:"status"`
	InceptionDate     *time.Time `json:"inception_date" db:"inception_date"`
	TerminationDate   *time.Time `json:"termination_date" db:"termination_date"`
	GaragingAddressID string     `json:"garaging_address_id" db:"garaging_address_id"`
	Timestamps
	SoftDelete
}

// PolicyDriver assigns a driver to a policy. Unique per (policy, driver).
type PolicyDriver struct {
	Identity
	PolicyID string `json:"policy_id" db:"policy_id"`
	DriverID string `json:"driver_id" db:"driver_id"`
	Status   string `json:"status" db:"status"`
	Timestamps
	SoftDelete
}

type CreateLossPayeeRequest struct {
	Name              string          `json:"name" validate:"required"`
	Email             string          `json:"email" validate:"omitempty,email"`
	ContactPersonName string          `json:"contact_person_name"`
	Telephone         string          `json:"telephone"`
	Fax               string          `json:"fax"`
	CellPhone         string          `json:"cell_phone"`
	Preference        string          `json:"preference" validate:"omitempty,oneof=EMAIL FAX"`
	Remarks           string          `json:"remarks"`
	Address           *AddressPayload `json:"address" validate:"required"`
}

type UpdateLossPayeeRequest struct {
	Name              *string         `json:"name"`
	Email             *string         `json:"email" validate:"omitempty,email"`
	ContactPersonName *string         `json:"contact_person_name"`
	Telephone         *string         `json:"telephone"`
	Fax               *string         `json:"fax"`
	CellPhone         *string         `json:"cell_phone"`
	Preference        *string         `json:"preference" validate:"omitempty,oneof=EMAIL FAX"`
	Remarks           *string         `json:"remarks"`
	Address           *AddressPayload `json:"address"`
}

type CreateVehicleRequest struct {
	ClientID      string   `json:"client_id" validate:"required,uuid4"`
	VIN           string   `json:"vin" validate:"required"`
	UnitNumber    string   `json:"unit_number"`
	VehicleTypeID string   `json:"vehicle_type_id" validate:"required,uuid4"`
	Year          int      `json:"year" validate:"required,min=1900,max=2100"`
	Make          string   `json:"make" validate:"required"`
	Model         string   `json:"model" validate:"required"`
	GVW           *int     `json:"gvw"`
	PDAmount      *float64 `json:"pd_amount"`
	Deductible    *float64 `json:"deductible"`
	LossPayeeID   *string  `json:"loss_payee_id" validate:"omitempty,uuid4"`
}

type UpdateVehicleRequest struct {
	VIN           *string  `json:"vin"`
	UnitNumber    *string  `json:"unit_number"`
	VehicleTypeID *string  `json:"vehicle_type_id" validate:"omitempty,uuid4"`
	Year          *int     `json:"year" validate:"omitempty,min=1900,max=2100"`
	Make          *string  `json:"make"`
	Model         *string  `json:"model"`
	GVW           *int     `json:"gvw"`
	PDAmount      *float64 `json:"pd_amount"`
	Deductible    *float64 `json:"deductible"`
	LossPayeeID   *string  `json:"loss_payee_id" validate:"omitempty,uuid4"`
}

type CreateDriverRequest struct {
	ClientID       string     `json:"client_id" validate:"required,uuid4"`
	FirstName      string     `json:"first_name" validate:"required"`
	MiddleName     string     `json:"middle_name"`
	LastName       string     `json:"last_name" validate:"required"`
	DateOfBirth    time.Time  `json:"date_of_birth" validate:"required"`
	LicenseNumber  string     `json:"license_number" validate:"required"`
	LicenseState   string     `json:"license_state" validate:"required,len=2"`
	LicenseClassID string     `json:"license_class_id" validate:"required,uuid4"`
	IssueDate      *time.Time `json:"issue_date"`
	HireDate       *time.Time `json:"hire_date"`
	Violations     int        `json:"violations" validate:"min=0"`
	Accidents      int        `json:"accidents" validate:"min=0"`
}

type UpdateDriverRequest struct {
	FirstName      *string    `json:"first_name"`
	MiddleName     *string    `json:"middle_name"`
	LastName       *string    `json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	LicenseNumber  *string    `json:"license_number"`
	LicenseState   *string    `json:"license_state" validate:"omitempty,len=2"`
	LicenseClassID *string    `json:"license_class_id" validate:"omitempty,uuid4"`
	IssueDate      *time.Time `json:"issue_date"`
	HireDate       *time.Time `json:"hire_date"`
	Violations     *int       `json:"violations" validate:"omitempty,min=0"`
	Accidents      *int       `json:"accidents" validate:"omitempty,min=0"`
}

type CreatePolicyVehicleRequest struct {
	PolicyID          string     `json:"policy_id" validate:"required,uuid4"`
	VehicleID         string     `json:"vehicle_id" validate:"required,uuid4"`
	Status            string     `json:"status" validate:"omitempty,oneof=active inactive unassigned"`
	InceptionDate     *time.Time `json:"inception_date"`
	TerminationDate   *time.Time `json:"termination_date"`
	GaragingAddressID string     `json:"garaging_address_id" validate:"required,uuid4"`
}

type UpdatePolicyVehicleRequest struct {
	Status            *string    `json:"status" validate:"omitempty,oneof=active inactive unassigned"`
	InceptionDate     *time.Time `json:"inception_date"`
	TerminationDate   *time.Time `json:"termination_date"`
	GaragingAddressID *string    `json:"garaging_address_id" validate:"omitempty,uuid4"`
}

type CreatePolicyDriverRequest struct {
	PolicyID string `json:"policy_id" validate:"required,uuid4"`
	DriverID string `json:"driver_id" validate:"required,uuid4"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive not_assigned"`
}

type UpdatePolicyDriverRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=active inactive not_assigned"`
}

type LossPayeeResponse struct {
	LossPayee
}

type LossPayeeListResponse struct {
	Items      []LossPayee `json:"items"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}

type VehicleResponse struct {
	Vehicle
}

type VehicleListResponse struct {
	Items      []Vehicle `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

type DriverResponse struct {
	Driver
}

type DriverListResponse struct {
	Items      []Driver `json:"items"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

type PolicyVehicleResponse struct {
	PolicyVehicle
}

type PolicyVehicleListResponse struct {
	Items      []PolicyVehicle `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

type PolicyDriverResponse struct {
	PolicyDriver
}

type PolicyDriverListResponse struct {
	Items      []PolicyDriver `json:"items"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}
