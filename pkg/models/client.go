package models

import "time"

// Client is a company record aggregating trade names, contacts, and address
// links.
type Client struct {
	Identity
	CompanyName      string     `json:"company_name" db:"company_name"`
	DOTNumber        string     `json:"dot_number" db:"dot_number"`
	FEIN             string     `json:"fein" db:"fein"`
	DateOfAuthority  *time.Time `json:"date_of_authority" db:"date_of_authority"`
	ReferralSource   string     `json:"referral_source" db:"referral_source"`
	FactoringCompany string     `json:"factoring_company" db:"factoring_company"`
	CreatedBy        *string    `json:"created_by" db:"created_by"`
	UpdatedBy        *string    `json:"updated_by" db:"updated_by"`
	Timestamps
	SoftDelete

	DBAs      []ClientDBA     `json:"dbas" db:"-"`
	Contacts  []Contact       `json:"contacts" db:"-"`
	Addresses []ClientAddress `json:"addresses" db:"-"`
}

// ClientDBA is a trade name ("doing business as") for a client.
type ClientDBA struct {
	Identity
	ClientID string `json:"client_id" db:"client_id"`
	DBAName  string `json:"dba_name" db:"dba_name"`
	Timestamps
	SoftDelete
}

// Contact is a typed person attached to a client.
type Contact struct {
	Identity
	ClientID      string `json:"client_id" db:"client_id"`
	FirstName     string `json:"first_name" db:"first_name"`
	LastName      string `json:"last_name" db:"last_name"`
	Email         string `json:"email" db:"email"`
	PhoneNumber   string `json:"phone_number" db:"phone_number"`
	Nickname      string `json:"nickname" db:"nickname"`
	ContactTypeID string `json:"contact_type_id" db:"contact_type_id"`
	Timestamps
	SoftDelete
}

// Address is a standalone address value entity, shared by client links, loss
// payees, certificate holders, and garaging assignments.
type Address struct {
	Identity
	StreetAddress string `json:"street_address" db:"street_address"`
	City          string `json:"city" db:"city"`
	State         string `json:"state" db:"state"`
	ZipCode       string `json:"zip_code" db:"zip_code"`
	Timestamps
	SoftDelete
}

// ClientAddress links a client to an address with a type and an optional 1-5
// rating (used for garaging addresses).
type ClientAddress struct {
	Identity
	ClientID      string `json:"client_id" db:"client_id"`
	AddressID     string `json:"address_id" db:"address_id"`
	AddressTypeID string `json:"address_type_id" db:"address_type_id"`
	Rating        *int   `json:"rating" db:"rating"`
	Timestamps
	SoftDelete

	Address *Address `json:"address,omitempty" db:"-"`
}

// AddressPayload is the nested address body used when creating or updating
// linked addresses.
type AddressPayload struct {
	StreetAddress *string `json:"street_address"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	ZipCode       *string `json:"zip_code"`
}

// DBAPayload is one item of a client's nested dbas collection.
type DBAPayload struct {
	ID       *string `json:"id"`
	DBAName  *string `json:"dba_name"`
	IsActive *bool   `json:"is_active"`
}

// ContactPayload is one item of a client's nested contacts collection.
type ContactPayload struct {
	ID            *string `json:"id"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Email         *string `json:"email"`
	PhoneNumber   *string `json:"phone_number"`
	Nickname      *string `json:"nickname"`
	ContactTypeID *string `json:"contact_type_id"`
	IsActive      *bool   `json:"is_active"`
}

// ClientAddressPayload is one item of a client's nested addresses collection.
type ClientAddressPayload struct {
	ID            *string         `json:"id"`
	Address       *AddressPayload `json:"address"`
	AddressTypeID *string         `json:"address_type_id"`
	Rating        *int            `json:"rating"`
	IsActive      *bool           `json:"is_active"`
}

type CreateClientRequest struct {
	CompanyName      string     `json:"company_name" validate:"required"`
	DOTNumber        string     `json:"dot_number"`
	FEIN             string     `json:"fein"`
	DateOfAuthority  *time.Time `json:"date_of_authority"`
	ReferralSource   string     `json:"referral_source"`
	FactoringCompany string     `json:"factoring_company"`

	DBAs      []DBAPayload           `json:"dbas"`
	Contacts  []ContactPayload       `json:"contacts"`
	Addresses []ClientAddressPayload `json:"addresses"`
}

// UpdateClientRequest updates a client. Nested collection pointers distinguish
// an omitted key (nil, leave untouched) from an empty list (clear).
type UpdateClientRequest struct {
	CompanyName      *string    `json:"company_name"`
	DOTNumber        *string    `json:"dot_number"`
	FEIN             *string    `json:"fein"`
	DateOfAuthority  *time.Time `json:"date_of_authority"`
	ReferralSource   *string    `json:"referral_source"`
	FactoringCompany *string    `json:"factoring_company"`

	DBAs      *[]DBAPayload           `json:"dbas"`
	Contacts  *[]ContactPayload       `json:"contacts"`
	Addresses *[]ClientAddressPayload `json:"addresses"`
}

type CreateAddressRequest struct {
	StreetAddress string `json:"street_address" validate:"required"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required,len=2"`
	ZipCode       string `json:"zip_code" validate:"required"`
}

type UpdateAddressRequest struct {
	StreetAddress *string `json:"street_address"`
	City          *string `json:"city"`
	State         *string `json:"state" validate:"omitempty,len=2"`
	ZipCode       *string `json:"zip_code"`
}

type ClientResponse struct {
	Client
}

type ClientListResponse struct {
	Items      []Client `json:"items"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

type AddressResponse struct {
	Address
}

type AddressListResponse struct {
	Items      []Address `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}
