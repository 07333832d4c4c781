package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusOpen    = "OPEN"
	StatusPending = "PENDING"
	StatusClosed  = "CLOSED"
)

const (
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

type Case struct {
	ID             int64             `json:"id" gorm:"primaryKey"`
	OrgID          int64             `json:"organization_id" gorm:"column:org_id;not null;index:ix_cases_org"`
	AccountID      *int64            `json:"account_id,omitempty" gorm:"index:ix_cases_account"`
	ContactID      *int64            `json:"contact_id,omitempty"`
	Subject        string            `json:"subject" gorm:"type:text;not null"`
	Description    *string           `json:"description,omitempty" gorm:"type:text"`
	Priority       string            `json:"priority" gorm:"type:text;not null;default:NORMAL"`
	Status         string            `json:"status" gorm:"type:text;not null;default:OPEN"`
	AssigneeUserID *int64            `json:"assignee_user_id,omitempty"`
	ClosedAt       *time.Time        `json:"closed_at,omitempty"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Case) TableName() string { return "cases" }

func IsValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
