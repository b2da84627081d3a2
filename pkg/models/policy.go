package models

import "time"

// GeneralAgent is a wholesale intermediary carrying a default agency
// commission percentage.
type GeneralAgent struct {
	Identity
	Name             string   `json:"name" db:"name"`
	AgencyCommission *float64 `json:"agency_commission" db:"agency_commission"`
	Timestamps
	SoftDelete
}

// CarrierProduct is an insurance product offered by a carrier through a
// general agent. Unique per (insurance_company_name, line_of_business).
type CarrierProduct struct {
	Identity
	LineOfBusiness       string   `json:"line_of_business" db:"line_of_business"`
	GeneralAgentID       *string  `json:"general_agent_id" db:"general_agent_id"`
	InsuranceCompanyName string   `json:"insurance_company_name" db:"insurance_company_name"`
	Abbreviation         string   `json:"abbreviation" db:"abbreviation"`
	NewCommissionPct     *float64 `json:"new_commission_pct" db:"new_commission_pct"`
	RenewalCommissionPct *float64 `json:"renewal_commission_pct" db:"renewal_commission_pct"`
	IsAdmitted           bool     `json:"is_admitted" db:"is_admitted"`
	IsDirectAppointment  bool     `json:"is_direct_appointment" db:"is_direct_appointment"`
	HasOnlinePortal      bool     `json:"has_online_portal" db:"has_online_portal"`
	AcceptsEPay          bool     `json:"accepts_epay" db:"accepts_epay"`
	IsPreferred          bool     `json:"is_preferred" db:"is_preferred"`
	NAICCode             string   `json:"naic_code" db:"naic_code"`
	AMBestNumber         string   `json:"am_best_number" db:"am_best_number"`
	AMBestRating         string   `json:"am_best_rating" db:"am_best_rating"`
	Timestamps
	SoftDelete
}

// ReferralCompany is a referral source with a commission rate.
type ReferralCompany struct {
	Identity
	Name string   `json:"name" db:"name"`
	Rate *float64 `json:"rate" db:"rate"`
	Timestamps
	SoftDelete
}

// Policy is an insurance policy issued to a client. Policy numbers are unique
// per client.
type Policy struct {
	Identity
	ClientID           string     `json:"client_id" db:"client_id"`
	PolicyNumber       string     `json:"policy_number" db:"policy_number"`
	StatusID           string     `json:"status_id" db:"status_id"`
	BusinessTypeID     string     `json:"business_type_id" db:"business_type_id"`
	InsuranceTypeID    string     `json:"insurance_type_id" db:"insurance_type_id"`
	PolicyTypeID       string     `json:"policy_type_id" db:"policy_type_id"`
	EffectiveDate      time.Time  `json:"effective_date" db:"effective_date"`
	MaturityDate       *time.Time `json:"maturity_date" db:"maturity_date"`
	CarrierProductID   string     `json:"carrier_product_id" db:"carrier_product_id"`
	FinanceCompanyID   *string    `json:"finance_company_id" db:"finance_company_id"`
	Producer           *string    `json:"producer" db:"producer"`
	ProducerRate       *float64   `json:"producer_rate" db:"producer_rate"`
	AccountManager     *string    `json:"account_manager" db:"account_manager"`
	AccountManagerRate *float64   `json:"account_manager_rate" db:"account_manager_rate"`
	ReferralCompanyID  *string    `json:"referral_company_id" db:"referral_company_id"`
	CreatedBy          *string    `json:"created_by" db:"created_by"`
	UpdatedBy          *string    `json:"updated_by" db:"updated_by"`
	Timestamps
	SoftDelete

	Financial *PolicyFinancial `json:"financial,omitempty" db:"-"`
	Coverages []Coverage       `json:"coverages,omitempty" db:"-"`
}

// PolicyFinancial is the one-per-policy premium breakdown.
type PolicyFinancial struct {
	Identity
	PolicyID                 string   `json:"policy_id" db:"policy_id"`
	OriginalPurePremium      *float64 `json:"original_pure_premium" db:"original_pure_premium"`
	LatestPurePremium        *float64 `json:"latest_pure_premium" db:"latest_pure_premium"`
	BrokerFee                *float64 `json:"broker_fee" db:"broker_fee"`
	Taxes                    *float64 `json:"taxes" db:"taxes"`
	AgencyFee                *float64 `json:"agency_fee" db:"agency_fee"`
	TotalPremium             *float64 `json:"total_premium" db:"total_premium"`
	DownPayment              *float64 `json:"down_payment" db:"down_payment"`
	AcctManagerCommissionAmt *float64 `json:"acct_manager_commission_amt" db:"acct_manager_commission_amt"`
	ReferralCommissionAmt    *float64 `json:"referral_commission_amt" db:"referral_commission_amt"`
	Timestamps
	SoftDelete
}

// Coverage is a coverage line on a policy.
type Coverage struct {
	Identity
	PolicyID     string   `json:"policy_id" db:"policy_id"`
	CoverageType string   `json:"coverage_type" db:"coverage_type"`
	Limits       string   `json:"limits" db:"limits"`
	Deductible   *float64 `json:"deductible" db:"deductible"`
	Timestamps
	SoftDelete
}

// FinancialPayload is the nested financial body on policy writes.
type FinancialPayload struct {
	OriginalPurePremium      *float64 `json:"original_pure_premium"`
	LatestPurePremium        *float64 `json:"latest_pure_premium"`
	BrokerFee                *float64 `json:"broker_fee"`
	Taxes                    *float64 `json:"taxes"`
	AgencyFee                *float64 `json:"agency_fee"`
	TotalPremium             *float64 `json:"total_premium"`
	DownPayment              *float64 `json:"down_payment"`
	AcctManagerCommissionAmt *float64 `json:"acct_manager_commission_amt"`
	ReferralCommissionAmt    *float64 `json:"referral_commission_amt"`
}

// CoveragePayload is one item of a policy's nested coverages collection.
type CoveragePayload struct {
	ID           *string  `json:"id"`
	CoverageType *string  `json:"coverage_type"`
	Limits       *string  `json:"limits"`
	Deductible   *float64 `json:"deductible"`
	IsActive     *bool    `json:"is_active"`
}

type CreateGeneralAgentRequest struct {
	Name             string   `json:"name" validate:"required"`
	AgencyCommission *float64 `json:"agency_commission"`
}

type UpdateGeneralAgentRequest struct {
	Name             *string  `json:"name"`
	AgencyCommission *float64 `json:"agency_commission"`
}

type CreateCarrierProductRequest struct {
	LineOfBusiness       string   `json:"line_of_business" validate:"required"`
	GeneralAgentID       *string  `json:"general_agent_id" validate:"omitempty,uuid4"`
	InsuranceCompanyName string   `json:"insurance_company_name" validate:"required"`
	Abbreviation         string   `json:"abbreviation"`
	NewCommissionPct     *float64 `json:"new_commission_pct"`
	RenewalCommissionPct *float64 `json:"renewal_commission_pct"`
	IsAdmitted           bool     `json:"is_admitted"`
	IsDirectAppointment  bool     `json:"is_direct_appointment"`
	HasOnlinePortal      bool     `json:"has_online_portal"`
	AcceptsEPay          bool     `json:"accepts_epay"`
	IsPreferred          bool     `json:"is_preferred"`
	NAICCode             string   `json:"naic_code"`
	AMBestNumber         string   `json:"am_best_number"`
	AMBestRating         string   `json:"am_best_rating"`
}

type UpdateCarrierProductRequest struct {
	LineOfBusiness       *string  `json:"line_of_business"`
	GeneralAgentID       *string  `json:"general_agent_id" validate:"omitempty,uuid4"`
	InsuranceCompanyName *string  `json:"insurance_company_name"`
	Abbreviation         *string  `json:"abbreviation"`
	NewCommissionPct     *float64 `json:"new_commission_pct"`
	RenewalCommissionPct *float64 `json:"renewal_commission_pct"`
	IsAdmitted           *bool    `json:"is_admitted"`
	IsDirectAppointment  *bool    `json:"is_direct_appointment"`
	HasOnlinePortal      *bool    `json:"has_online_portal"`
	AcceptsEPay          *bool    `json:"accepts_epay"`
	IsPreferred          *bool    `json:"is_preferred"`
	NAICCode             *string  `json:"naic_code"`
	AMBestNumber         *string  `json:"am_best_number"`
	AMBestRating         *string  `json:"am_best_rating"`
}

type CreateReferralCompanyRequest struct {
	Name string   `json:"name" validate:"required"`
	Rate *float64 `json:"rate"`
}

type UpdateReferralCompanyRequest struct {
	Name *string  `json:"name"`
	Rate *float64 `json:"rate"`
}

type CreatePolicyRequest struct {
	ClientID           string     `json:"client_id" validate:"required,uuid4"`
	PolicyNumber       string     `json:"policy_number" validate:"required"`
	StatusID           string     `json:"status_id" validate:"required,uuid4"`
	BusinessTypeID     string     `json:"business_type_id" validate:"required,uuid4"`
	InsuranceTypeID    string     `json:"insurance_type_id" validate:"required,uuid4"`
	PolicyTypeID       string     `json:"policy_type_id" validate:"required,uuid4"`
	EffectiveDate      time.Time  `json:"effective_date" validate:"required"`
	MaturityDate       *time.Time `json:"maturity_date"`
	CarrierProductID   string     `json:"carrier_product_id" validate:"required,uuid4"`
	FinanceCompanyID   *string    `json:"finance_company_id" validate:"omitempty,uuid4"`
	Producer           *string    `json:"producer"`
	ProducerRate       *float64   `json:"producer_rate"`
	AccountManager     *string    `json:"account_manager"`
	AccountManagerRate *float64   `json:"account_manager_rate"`
	ReferralCompanyID  *string    `json:"referral_company_id" validate:"omitempty,uuid4"`

	Financial *FinancialPayload `json:"financial"`
	Coverages []CoveragePayload `json:"coverages"`
}

// UpdatePolicyRequest updates a policy. The coverages pointer distinguishes an
// omitted key (nil, leave untouched) from an empty list (clear).
type UpdatePolicyRequest struct {
	PolicyNumber       *string    `json:"policy_number"`
	StatusID           *string    `json:"status_id" validate:"omitempty,uuid4"`
	BusinessTypeID     *string    `json:"business_type_id" validate:"omitempty,uuid4"`
	InsuranceTypeID    *string    `json:"insurance_type_id" validate:"omitempty,uuid4"`
	PolicyTypeID       *string    `json:"policy_type_id" validate:"omitempty,uuid4"`
	EffectiveDate      *time.Time `json:"effective_date"`
	MaturityDate       *time.Time `json:"maturity_date"`
	CarrierProductID   *string    `json:"carrier_product_id" validate:"omitempty,uuid4"`
	FinanceCompanyID   *string    `json:"finance_company_id" validate:"omitempty,uuid4"`
	Producer           *string    `json:"producer"`
	ProducerRate       *float64   `json:"producer_rate"`
	AccountManager     *string    `json:"account_manager"`
	AccountManagerRate *float64   `json:"account_manager_rate"`
	ReferralCompanyID  *string    `json:"referral_company_id" validate:"omitempty,uuid4"`

	Financial *FinancialPayload  `json:"financial"`
	Coverages *[]CoveragePayload `json:"coverages"`
}

type GeneralAgentResponse struct {
	GeneralAgent
}

type GeneralAgentListResponse struct {
	Items      []GeneralAgent `json:"items"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

type CarrierProductResponse struct {
	CarrierProduct
}

type CarrierProductListResponse struct {
	Items      []CarrierProduct `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

type ReferralCompanyResponse struct {
	ReferralCompany
}

type ReferralCompanyListResponse struct {
	Items      []ReferralCompany `json:"items"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

type PolicyResponse struct {
	Policy
}

type PolicyListResponse struct {
	Items      []Policy `json:"items"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

type CoverageResponse struct {
	Coverage
}

type CoverageListResponse struct {
	Items      []Coverage `json:"items"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}
