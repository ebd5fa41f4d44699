package transactions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActionCompletion is an append-only ledger row recording one successful
// execution. Rows are never updated or deleted by the engine.
type ActionCompletion struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID uint      `gorm:"column:transaction_id;not null;index:idx_action_completion_tx_time,priority:1" json:"transaction_id"`
	ActionCode    string    `gorm:"column:action_code;not null;index" json:"action_code"`
	CompletedBy   uuid.UUID `gorm:"type:uuid;column:completed_by;not null;index" json:"completed_by"`
	CompletedAt   time.Time `gorm:"column:completed_at;not null;index:idx_action_completion_tx_time,priority:2" json:"completed_at"`

	Data           datatypes.JSON `gorm:"column:data" json:"data"`
	Notes          *string        `gorm:"column:notes;type:text" json:"notes,omitempty"`
	PreviousStatus Status         `gorm:"column:previous_status;not null" json:"previous_status"`
	NewStatus      Status         `gorm:"column:new_status;not null" json:"new_status"`

	IPAddress *string `gorm:"column:ip_address" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ActionCompletion) TableName() string { return "action_completion" }
