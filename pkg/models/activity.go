package models

import (
	"encoding/json"
	"time"
)

// ActionType classifies an activity log entry.
type ActionType string

const (
	ActionClientCreated        ActionType = "client_created"
	ActionClientUpdated        ActionType = "client_updated"
	ActionPolicyCreated        ActionType = "policy_created"
	ActionPolicyUpdated        ActionType = "policy_updated"
	ActionPolicyBound          ActionType = "policy_bound"
	ActionPolicyCancelled      ActionType = "policy_cancelled"
	ActionVehicleCreated       ActionType = "vehicle_created"
	ActionVehicleUpdated       ActionType = "vehicle_updated"
	ActionVehicleAssigned      ActionType = "vehicle_assigned"
	ActionVehicleRemoved       ActionType = "vehicle_removed"
	ActionDriverCreated        ActionType = "driver_created"
	ActionDriverUpdated        ActionType = "driver_updated"
	ActionDriverAssigned       ActionType = "driver_assigned"
	ActionDriverRemoved        ActionType = "driver_removed"
	ActionEndorsementCreated   ActionType = "endorsement_created"
	ActionEndorsementStarted   ActionType = "endorsement_started"
	ActionEndorsementCompleted ActionType = "endorsement_completed"
	ActionEndorsementCancelled ActionType = "endorsement_cancelled"
	ActionEndorsementUpdated   ActionType = "endorsement_updated"
	ActionCertificateCreated   ActionType = "certificate_created"
	ActionCertificateUpdated   ActionType = "certificate_updated"
	ActionUserAction           ActionType = "user_action"
)

var actionTypeLabels = map[ActionType]string{
	ActionClientCreated:        "Client Created",
	ActionClientUpdated:        "Client Updated",
	ActionPolicyCreated:        "Policy Created",
	ActionPolicyUpdated:        "Policy Updated",
	ActionPolicyBound:          "Policy Bound",
	ActionPolicyCancelled:      "Policy Cancelled",
	ActionVehicleCreated:       "Vehicle Created",
	ActionVehicleUpdated:       "Vehicle Updated",
	ActionVehicleAssigned:      "Vehicle Assigned to Policy",
	ActionVehicleRemoved:       "Vehicle Removed from Policy",
	ActionDriverCreated:        "Driver Created",
	ActionDriverUpdated:        "Driver Updated",
	ActionDriverAssigned:       "Driver Assigned to Policy",
	ActionDriverRemoved:        "Driver Removed from Policy",
	ActionEndorsementCreated:   "Endorsement Created",
	ActionEndorsementStarted:   "Endorsement Started",
	ActionEndorsementCompleted: "Endorsement Completed",
	ActionEndorsementCancelled: "Endorsement Cancelled",
	ActionEndorsementUpdated:   "Endorsement Updated",
	ActionCertificateCreated:   "Certificate Created",
	ActionCertificateUpdated:   "Certificate Updated",
	ActionUserAction:           "User Action",
}

// Label returns the display label for the action type, falling back to the
// raw value for unknown types.
func (t ActionType) Label() string {
	if label, ok := actionTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ValidActionType reports whether t names a known action type.
func ValidActionType(t ActionType) bool {
	_, ok := actionTypeLabels[t]
	return ok
}

// ActivityLog is an append-only audit record. Entries are never updated or
// deleted.
type ActivityLog struct {
	Identity
	ActionType      ActionType      `json:"action_type" db:"action_type"`
	TransactionName string          `json:"transaction_name" db:"transaction_name"`
	Description     string          `json:"description" db:"description"`
	Notes           string          `json:"notes" db:"notes"`
	Timestamp       time.Time       `json:"timestamp" db:"timestamp"`
	ClientID        *string         `json:"client_id" db:"client_id"`
	PolicyID        *string         `json:"policy_id" db:"policy_id"`
	EndorsementID   *string         `json:"endorsement_id" db:"endorsement_id"`
	VehicleID       *string         `json:"vehicle_id" db:"vehicle_id"`
	DriverID        *string         `json:"driver_id" db:"driver_id"`
	PerformedBy     *string         `json:"performed_by" db:"performed_by"`
	Metadata        json.RawMessage `json:"metadata" db:"metadata"`
}

type CreateActivityLogRequest struct {
	ActionType      string          `json:"action_type" validate:"required"`
	TransactionName string          `json:"transaction_name"`
	Description     string          `json:"description" validate:"required"`
	Notes           string          `json:"notes"`
	ClientID        *string         `json:"client_id" validate:"omitempty,uuid4"`
	PolicyID        *string         `json:"policy_id" validate:"omitempty,uuid4"`
	EndorsementID   *string         `json:"endorsement_id" validate:"omitempty,uuid4"`
	VehicleID       *string         `json:"vehicle_id" validate:"omitempty,uuid4"`
	DriverID        *string         `json:"driver_id" validate:"omitempty,uuid4"`
	Metadata        json.RawMessage `json:"metadata"`
}

// ActivityFilter narrows activity feed reads.
type ActivityFilter struct {
	ClientID      string
	PolicyID      string
	EndorsementID string
	ActionType    string
	PerformedBy   string
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}

type ActivityLogResponse struct {
	ActivityLog
	ActionLabel string `json:"action_label"`
}

type ActivityLogListResponse struct {
	Items      []ActivityLogResponse `json:"items"`
	TotalCount int                   `json:"total_count"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
}
