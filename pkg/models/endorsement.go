package models

import (
	"encoding/json"
	"time"
)

// EndorsementStatus is the lifecycle status of a mid-term policy change.
type EndorsementStatus string

const (
	EndorsementStatusDraft      EndorsementStatus = "draft"
	EndorsementStatusInProgress EndorsementStatus = "in_progress"
	EndorsementStatusCompleted  EndorsementStatus = "completed"
	EndorsementStatusCancelled  EndorsementStatus = "cancelled"
)

// EndorsementStage is the step of the endorsement wizard the record is on.
type EndorsementStage string

const (
	EndorsementStageClient    EndorsementStage = "client"
	EndorsementStageVehicles  EndorsementStage = "vehicles"
	EndorsementStageDrivers   EndorsementStage = "drivers"
	EndorsementStageCoverages EndorsementStage = "coverages"
	EndorsementStagePremium   EndorsementStage = "premium"
	EndorsementStageFinal     EndorsementStage = "final"
)

// endorsementStages lists the valid stages in wizard order.
var endorsementStages = []EndorsementStage{
	EndorsementStageClient,
	EndorsementStageVehicles,
	EndorsementStageDrivers,
	EndorsementStageCoverages,
	EndorsementStagePremium,
	EndorsementStageFinal,
}

// ValidStage reports whether s names a known wizard stage.
func ValidStage(s EndorsementStage) bool {
	for _, stage := range endorsementStages {
		if s == stage {
			return true
		}
	}
	return false
}

// ChangeType classifies what an endorsement change touched.
type ChangeType string

const (
	ChangeTypeClient    ChangeType = "client"
	ChangeTypeAddress   ChangeType = "address"
	ChangeTypeVehicles  ChangeType = "vehicles"
	ChangeTypeDrivers   ChangeType = "drivers"
	ChangeTypeCoverages ChangeType = "coverages"
	ChangeTypePremium   ChangeType = "premium"
	ChangeTypeOther     ChangeType = "other"
)

// changeTypeOrder fixes the declaration order used when listing distinct
// change types for an endorsement.
var changeTypeOrder = []ChangeType{
	ChangeTypeClient,
	ChangeTypeAddress,
	ChangeTypeVehicles,
	ChangeTypeDrivers,
	ChangeTypeCoverages,
	ChangeTypePremium,
	ChangeTypeOther,
}

var changeTypeLabels = map[ChangeType]string{
	ChangeTypeClient:    "Client",
	ChangeTypeAddress:   "Address",
	ChangeTypeVehicles:  "Vehicles",
	ChangeTypeDrivers:   "Drivers",
	ChangeTypeCoverages: "Coverages",
	ChangeTypePremium:   "Premium",
	ChangeTypeOther:     "Other",
}

// ChangeTypeIndex returns the declaration position of t, or -1 when unknown.
func ChangeTypeIndex(t ChangeType) int {
	for i, ct := range changeTypeOrder {
		if ct == t {
			return i
		}
	}
	return -1
}

// Label returns the display label for the change type, falling back to the
// raw value for unknown types.
func (t ChangeType) Label() string {
	if label, ok := changeTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ValidChangeType reports whether t names a known change type.
func ValidChangeType(t ChangeType) bool {
	_, ok := changeTypeLabels[t]
	return ok
}

// Endorsement is a mid-term change workflow on a policy.
type Endorsement struct {
	Identity
	PolicyID           string            `json:"policy_id" db:"policy_id"`
	Name               string            `json:"name" db:"name"`
	Status             EndorsementStatus `json:"status" db:"status"`
	Stage              EndorsementStage  `json:"stage" db:"current_stage"`
	EffectiveDate      *time.Time        `json:"effective_date" db:"effective_date"`
	PremiumChange      float64           `json:"premium_change" db:"premium_change"`
	FeesChange         float64           `json:"fees_change" db:"fees_change"`
	TaxesChange        float64           `json:"taxes_change" db:"taxes_change"`
	AgencyFeeChange    float64           `json:"agency_fee_change" db:"agency_fee_change"`
	TotalPremiumChange float64           `json:"total_premium_change" db:"total_premium_change"`
	Notes              string            `json:"notes" db:"notes"`
	CreatedBy          *string           `json:"created_by" db:"created_by"`
	UpdatedBy          *string           `json:"updated_by" db:"updated_by"`
	CompletedAt        *time.Time        `json:"completed_at" db:"completed_at"`
	Timestamps
	SoftDelete

	Changes []EndorsementChange `json:"changes,omitempty" db:"-"`
}

// EndorsementChange records one change captured during an endorsement.
type EndorsementChange struct {
	Identity
	EndorsementID string           `json:"endorsement_id" db:"endorsement_id"`
	Stage         EndorsementStage `json:"stage" db:"stage"`
	ChangeType    ChangeType       `json:"change_type" db:"change_type"`
	Summary       string           `json:"summary" db:"summary"`
	Details       json.RawMessage  `json:"details" db:"details"`
	CreatedBy     *string          `json:"created_by" db:"created_by"`
	Timestamps
	SoftDelete
}

// ChangeTypeOption is one distinct change type on an endorsement, keyed by
// first occurrence and labeled for display.
type ChangeTypeOption struct {
	Value ChangeType `json:"value"`
	Label string     `json:"label"`
}

type CreateEndorsementRequest struct {
	PolicyID           string     `json:"policy_id" validate:"required,uuid4"`
	Name               string     `json:"name"`
	EffectiveDate      *time.Time `json:"effective_date"`
	PremiumChange      *float64   `json:"premium_change"`
	FeesChange         *float64   `json:"fees_change"`
	TaxesChange        *float64   `json:"taxes_change"`
	AgencyFeeChange    *float64   `json:"agency_fee_change"`
	TotalPremiumChange *float64   `json:"total_premium_change"`
	Notes              string     `json:"notes"`
}

type UpdateEndorsementRequest struct {
	Name               *string    `json:"name"`
	EffectiveDate      *time.Time `json:"effective_date"`
	PremiumChange      *float64   `json:"premium_change"`
	FeesChange         *float64   `json:"fees_change"`
	TaxesChange        *float64   `json:"taxes_change"`
	AgencyFeeChange    *float64   `json:"agency_fee_change"`
	TotalPremiumChange *float64   `json:"total_premium_change"`
	Notes              *string    `json:"notes"`
}

type StartEndorsementRequest struct {
	Stage string `json:"stage"`
}

type AdvanceEndorsementRequest struct {
	Stage string `json:"stage" validate:"required"`
}

type CancelEndorsementRequest struct {
	Reason string `json:"reason"`
}

type CreateEndorsementChangeRequest struct {
	EndorsementID string          `json:"endorsement_id" validate:"required,uuid4"`
	Stage         string          `json:"stage" validate:"required"`
	ChangeType    string          `json:"change_type" validate:"required"`
	Summary       string          `json:"summary" validate:"required"`
	Details       json.RawMessage `json:"details"`
}

// ChangeFilter narrows an endorsement change listing.
type ChangeFilter struct {
	EndorsementID string
	ChangeType    string
	Stage         string
	Page          int
	PageSize      int
}

// ChangeTypes returns the distinct change types captured on the endorsement,
// labeled for display and ordered by change-type declaration order.
func (e *Endorsement) ChangeTypes() []ChangeTypeOption {
	seen := make(map[ChangeType]bool, len(e.Changes))
	for _, c := range e.Changes {
		seen[c.ChangeType] = true
	}

	options := make([]ChangeTypeOption, 0, len(seen))
	for _, ct := range changeTypeOrder {
		if seen[ct] {
			options = append(options, ChangeTypeOption{Value: ct, Label: ct.Label()})
			delete(seen, ct)
		}
	}
	// Unknown values land after the known set, preserving nothing in
	// particular; the column check constraint should make this unreachable.
	for ct := range seen {
		options = append(options, ChangeTypeOption{Value: ct, Label: ct.Label()})
	}
	return options
}

type EndorsementResponse struct {
	Endorsement
	ChangeTypes []ChangeTypeOption `json:"change_types"`
}

type EndorsementListResponse struct {
	Items      []Endorsement `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}

type EndorsementChangeListResponse struct {
	Items      []EndorsementChange `json:"items"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}
