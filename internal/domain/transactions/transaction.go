package transactions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transaction is the mutable aggregate root of a real-estate deal.
//
// Status, CurrentActionCode, LastActionAt, ActionCount and Version are owned by
// the action engine. CompletedSteps/CompletedActions belong to the guided-steps
// checklist and are independent of the engine's history.
type Transaction struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;column:owner_user_id;index" json:"owner_user_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`

	PropertyAddress    string  `gorm:"column:property_address" json:"property_address"`
	PropertyCity       string  `gorm:"column:property_city" json:"property_city"`
	PropertyPostalCode string  `gorm:"column:property_postal_code" json:"property_postal_code"`
	ListingPrice       float64 `gorm:"column:listing_price" json:"listing_price"`
	OfferedPrice       float64 `gorm:"column:offered_price" json:"offered_price"`
	CounterOfferPrice  float64 `gorm:"column:counter_offer_price" json:"counter_offer_price"`
	FinalPrice         float64 `gorm:"column:final_price" json:"final_price"`

	Buyers  datatypes.JSONSlice[string] `gorm:"column:buyers" json:"buyers"`
	Sellers datatypes.JSONSlice[string] `gorm:"column:sellers" json:"sellers"`

	PromiseToPurchaseDate *time.Time `gorm:"column:promise_to_purchase_date" json:"promise_to_purchase_date,omitempty"`
	PromiseAcceptanceDate *time.Time `gorm:"column:promise_acceptance_date" json:"promise_acceptance_date,omitempty"`
	InspectionDate        *time.Time `gorm:"column:inspection_date" json:"inspection_date,omitempty"`
	InspectionDeadline    *time.Time `gorm:"column:inspection_deadline" json:"inspection_deadline,omitempty"`
	FinancingApprovalDate *time.Time `gorm:"column:financing_approval_date" json:"financing_approval_date,omitempty"`
	FinancingDeadline     *time.Time `gorm:"column:financing_deadline" json:"financing_deadline,omitempty"`
	SigningDate           *time.Time `gorm:"column:signing_date" json:"signing_date,omitempty"`
	PossessionDate        *time.Time `gorm:"column:possession_date" json:"possession_date,omitempty"`
	ExpectedClosingDate   *time.Time `gorm:"column:expected_closing_date" json:"expected_closing_date,omitempty"`
	CancellationReason    string     `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`

	Status            Status     `gorm:"column:status;not null;index" json:"status"`
	CurrentActionCode *string    `gorm:"column:current_action_code;index" json:"current_action_code,omitempty"`
	LastActionAt      *time.Time `gorm:"column:last_action_at" json:"last_action_at,omitempty"`
	ActionCount       int        `gorm:"column:action_count;not null;default:0" json:"action_count"`
	Version           int        `gorm:"column:version;not null;default:0" json:"version"`

	CompletedSteps   datatypes.JSONSlice[string] `gorm:"column:completed_steps" json:"completed_steps"`
	CompletedActions datatypes.JSONSlice[string] `gorm:"column:completed_actions" json:"completed_actions"`
	TransactionData  datatypes.JSON              `gorm:"column:transaction_data" json:"transaction_data"`

	Documents []TransactionDocument `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.Status == "" {
		t.Status = DefaultStatus
	}
	if t.Buyers == nil {
		t.Buyers = datatypes.JSONSlice[string]{}
	}
	if t.Sellers == nil {
		t.Sellers = datatypes.JSONSlice[string]{}
	}
	if t.CompletedSteps == nil {
		t.CompletedSteps = datatypes.JSONSlice[string]{}
	}
	if t.CompletedActions == nil {
		t.CompletedActions = datatypes.JSONSlice[string]{}
	}
	if len(t.TransactionData) == 0 {
		t.TransactionData = datatypes.JSON([]byte("{}"))
	}
	return nil
}

// TransactionDocument is an attached file; DocumentType is the tag matched by
// ActionDefinition.RequiredDocuments.
type TransactionDocument struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID uint       `gorm:"column:transaction_id;not null;index:idx_transaction_document_type,priority:1" json:"transaction_id"`
	DocumentType  string     `gorm:"column:document_type;not null;index:idx_transaction_document_type,priority:2" json:"document_type"`
	FileName      string     `gorm:"column:file_name" json:"file_name"`
	StorageKey    string     `gorm:"column:storage_key" json:"storage_key,omitempty"`
	UploadedBy    *uuid.UUID `gorm:"type:uuid;column:uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
}

func (TransactionDocument) TableName() string { return "transaction_document" }
