package transactions

import (
	"time"

	"gorm.io/datatypes"
)

type IntentKind string

const (
	IntentNotification IntentKind = "notification"
	IntentDocument     IntentKind = "document"
)

type IntentStatus string

const (
	IntentPending    IntentStatus = "pending"
	IntentDispatched IntentStatus = "dispatched"
	IntentFailed     IntentStatus = "failed"
)

// ActionIntent is an outbox row written in the same database transaction as
// the ActionCompletion that produced it. The relay delivers it afterwards;
// delivery failure never rolls back the completion.
type ActionIntent struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID uint           `gorm:"column:transaction_id;not null;index" json:"transaction_id"`
	CompletionID  uint           `gorm:"column:completion_id;not null;index" json:"completion_id"`
	ActionCode    string         `gorm:"column:action_code;not null" json:"action_code"`
	Kind          IntentKind     `gorm:"column:kind;not null" json:"kind"`
	Payload       datatypes.JSON `gorm:"column:payload" json:"payload"`

	Status        IntentStatus `gorm:"column:status;not null;index:idx_action_intent_claim,priority:1" json:"status"`
	Attempts      int          `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError     string       `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	NextAttemptAt time.Time    `gorm:"column:next_attempt_at;not null;index:idx_action_intent_claim,priority:2" json:"next_attempt_at"`
	DispatchedAt  *time.Time   `gorm:"column:dispatched_at" json:"dispatched_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ActionIntent) TableName() string { return "action_intent" }

// NotificationPayload is the body of a notification intent.
type NotificationPayload struct {
	TransactionID uint     `json:"transaction_id"`
	ActionCode    string   `json:"action_code"`
	Recipients    []string `json:"recipients"`
	NewStatus     Status   `json:"new_status"`
}

// DocumentPayload is the body of a document-generation intent.
type DocumentPayload struct {
	TransactionID uint   `json:"transaction_id"`
	ActionCode    string `json:"action_code"`
	Template      string `json:"template"`
}
