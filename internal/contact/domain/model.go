package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Contact struct {
	ID        int64             `json:"id" gorm:"primaryKey"`
	OrgID     int64             `json:"organization_id" gorm:"column:org_id;not null;index:ix_contacts_org"`
	AccountID *int64            `json:"account_id,omitempty" gorm:"index:ix_contacts_account"`
	FirstName string            `json:"first_name" gorm:"type:text;not null"`
	LastName  string            `json:"last_name" gorm:"type:text"`
	Email     *string           `json:"email,omitempty" gorm:"type:text"`
	Phone     *string           `json:"phone,omitempty" gorm:"type:text"`
	Title     *string           `json:"title,omitempty" gorm:"type:text"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Contact) TableName() string { return "contacts" }
