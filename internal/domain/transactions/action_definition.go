package transactions

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ActionDefinition is one catalog entry. Code is the stable identity across
// re-seeds.
type ActionDefinition struct {
	Code        string `gorm:"column:code;primaryKey" json:"code"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
	FromStatus  Status `gorm:"column:from_status;not null;index" json:"from_status"`
	ToStatus    Status `gorm:"column:to_status;not null" json:"to_status"`

	RequiredDocuments datatypes.JSONSlice[string] `gorm:"column:required_documents" json:"required_documents"`
	RequiredRoles     datatypes.JSONSlice[string] `gorm:"column:required_roles" json:"required_roles"`
	RequiredFields    datatypes.JSONSlice[string] `gorm:"column:required_fields" json:"required_fields"`

	CreatesDeadline bool   `gorm:"column:creates_deadline;not null;default:false" json:"creates_deadline"`
	DeadlineType    string `gorm:"column:deadline_type" json:"deadline_type"`
	DeadlineDays    *int   `gorm:"column:deadline_days" json:"deadline_days"`

	GeneratesDocument      bool                        `gorm:"column:generates_document;not null;default:false" json:"generates_document"`
	DocumentTemplate       string                      `gorm:"column:document_template" json:"document_template"`
	SendsNotification      bool                        `gorm:"column:sends_notification;not null;default:false" json:"sends_notification"`
	NotificationRecipients datatypes.JSONSlice[string] `gorm:"column:notification_recipients" json:"notification_recipients"`

	IsActive   bool `gorm:"column:is_active;not null" json:"is_active"`
	OrderIndex int  `gorm:"column:order_index;not null;default:0;index" json:"order_index"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ActionDefinition) TableName() string { return "action_definition" }

// AllowsRole reports whether an actor holding roles may execute the action.
// An empty RequiredRoles list allows everyone.
func (d *ActionDefinition) AllowsRole(roles []string) bool {
	if d == nil || len(d.RequiredRoles) == 0 {
		return true
	}
	for _, want := range d.RequiredRoles {
		want = strings.TrimSpace(want)
		for _, have := range roles {
			if strings.EqualFold(want, strings.TrimSpace(have)) {
				return true
			}
		}
	}
	return false
}

// Normalize replaces nil lists with empty ones so they serialize as [].
func (d *ActionDefinition) Normalize() {
	if d == nil {
		return
	}
	if d.RequiredDocuments == nil {
		d.RequiredDocuments = datatypes.JSONSlice[string]{}
	}
	if d.RequiredRoles == nil {
		d.RequiredRoles = datatypes.JSONSlice[string]{}
	}
	if d.RequiredFields == nil {
		d.RequiredFields = datatypes.JSONSlice[string]{}
	}
	if d.NotificationRecipients == nil {
		d.NotificationRecipients = datatypes.JSONSlice[string]{}
	}
}

// HasDeadline reports whether executing the action yields a deadline.
func (d *ActionDefinition) HasDeadline() bool {
	return d != nil && d.CreatesDeadline && d.DeadlineDays != nil
}
