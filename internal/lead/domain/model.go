package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Lead struct {
	ID        int64   `json:"id" gorm:"primaryKey"`
	OrgID     int64   `json:"organization_id" gorm:"column:org_id;not null;index:ix_leads_org"`
	FirstName string  `json:"first_name" gorm:"type:text;not null"`
	LastName  string  `json:"last_name" gorm:"type:text"`
	Company   *string `json:"company,omitempty" gorm:"type:text"`
	Email     *string `json:"email,omitempty" gorm:"type:text"`
	Phone     *string `json:"phone,omitempty" gorm:"type:text"`
	Status    string  `json:"status" gorm:"type:text;not null;default:NEW"`
	Source    *string `json:"source,omitempty" gorm:"type:text"`

	// Set once by Convert; a converted lead is read-only afterwards.
	ConvertedAt            *time.Time `json:"converted_at,omitempty"`
	ConvertedAccountID     *int64     `json:"converted_account_id,omitempty"`
	ConvertedContactID     *int64     `json:"converted_contact_id,omitempty"`
	ConvertedOpportunityID *int64     `json:"converted_opportunity_id,omitempty"`

	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Lead) TableName() string { return "leads" }
