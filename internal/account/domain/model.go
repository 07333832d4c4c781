package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
)

type Account struct {
	ID             int64             `json:"id" gorm:"primaryKey"`
	OrgID          int64             `json:"organization_id" gorm:"column:org_id;not null;index:ix_accounts_org"`
	Name           string            `json:"name" gorm:"type:text;not null"`
	Industry       *string           `json:"industry,omitempty" gorm:"type:text"`
	Website        *string           `json:"website,omitempty" gorm:"type:text"`
	Phone          *string           `json:"phone,omitempty" gorm:"type:text"`
	BillingAddress *string           `json:"billing_address,omitempty" gorm:"type:text"`
	OwnerUserID    *int64            `json:"owner_user_id,omitempty"`
	Status         string            `json:"status" gorm:"type:text;not null;default:ACTIVE"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Account) TableName() string { return "accounts" }
