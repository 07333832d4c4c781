package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Opportunity struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	OrgID       int64             `json:"organization_id" gorm:"column:org_id;not null;index:ix_opportunities_org"`
	AccountID   *int64            `json:"account_id,omitempty" gorm:"index:ix_opportunities_account"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	AmountCents int64             `json:"amount_cents" gorm:"not null;default:0"`
	Currency    string            `json:"currency" gorm:"type:text;not null;default:USD"`
	Stage       string            `json:"stage" gorm:"type:text;not null"`
	Probability int               `json:"probability" gorm:"not null;default:0"`
	CloseDate   *time.Time        `json:"close_date,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Opportunity) TableName() string { return "opportunities" }
