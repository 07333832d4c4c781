package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Board struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrgID     int64     `json:"organization_id" gorm:"column:org_id;not null;index:ix_boards_org"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Board) TableName() string { return "boards" }

type Column struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrgID     int64     `json:"organization_id" gorm:"column:org_id;not null"`
	BoardID   int64     `json:"board_id" gorm:"not null;index:ix_columns_board"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Column) TableName() string { return "board_columns" }

// Task position is dense within its column: 0..n-1 with no gaps. Moves
// reindex both affected columns inside one transaction.
type Task struct {
	ID             int64             `json:"id" gorm:"primaryKey"`
	OrgID          int64             `json:"organization_id" gorm:"column:org_id;not null"`
	BoardID        int64             `json:"board_id" gorm:"not null;index:ix_tasks_board"`
	ColumnID       int64             `json:"column_id" gorm:"not null;index:ix_tasks_column"`
	Title          string            `json:"title" gorm:"type:text;not null"`
	Description    *string           `json:"description,omitempty" gorm:"type:text"`
	AssigneeUserID *int64            `json:"assignee_user_id,omitempty"`
	DueDate        *time.Time        `json:"due_date,omitempty"`
	Position       int               `json:"position" gorm:"not null;default:0"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Task) TableName() string { return "tasks" }
