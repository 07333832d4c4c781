package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	CreateBoard(ctx context.Context, req CreateBoardRequest) (*BoardResponse, error)
	GetBoard(ctx context.Context, id string) (*BoardDetail, error)
	ListBoards(ctx context.Context) ([]BoardResponse, error)

	CreateColumn(ctx context.Context, req CreateColumnRequest) (*ColumnResponse, error)

	CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, id string) error
	// MoveTask places the task in the target column at the given
	// position, reindexing both columns atomically.
	MoveTask(ctx context.Context, req MoveTaskRequest) (*TaskResponse, error)
}

type CreateBoardRequest struct {
	Name string `json:"name"`
	// Columns seeds the board; empty means the default TODO/DOING/DONE.
	Columns []string `json:"columns"`
}

type CreateColumnRequest struct {
	BoardID string `json:"-"`
	Name    string `json:"name"`
}

type CreateTaskRequest struct {
	BoardID        string         `json:"-"`
	ColumnID       string         `json:"column_id"`
	Title          string         `json:"title"`
	Description    *string        `json:"description"`
	AssigneeUserID *string        `json:"assignee_user_id"`
	DueDate        *time.Time     `json:"due_date"`
	Metadata       map[string]any `json:"metadata"`
}

type UpdateTaskRequest struct {
	ID             string         `json:"-"`
	Title          *string        `json:"title"`
	Description    *string        `json:"description"`
	AssigneeUserID *string        `json:"assignee_user_id"`
	DueDate        *time.Time     `json:"due_date"`
	Metadata       map[string]any `json:"metadata"`
}

type MoveTaskRequest struct {
	ID       string `json:"-"`
	ColumnID string `json:"column_id"`
	Position int    `json:"position"`
}

type BoardResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ColumnResponse struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type TaskResponse struct {
	ID             string         `json:"id"`
	BoardID        string         `json:"board_id"`
	ColumnID       string         `json:"column_id"`
	Title          string         `json:"title"`
	Description    *string        `json:"description,omitempty"`
	AssigneeUserID *string        `json:"assignee_user_id,omitempty"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	Position       int            `json:"position"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// BoardDetail is the board with its columns and their ordered tasks.
type BoardDetail struct {
	Board   BoardResponse  `json:"board"`
	Columns []ColumnDetail `json:"columns"`
}

type ColumnDetail struct {
	Column ColumnResponse `json:"column"`
	Tasks  []TaskResponse `json:"tasks"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidTitle        = errors.New("invalid_title")
	ErrInvalidPosition     = errors.New("invalid_position")
	ErrInvalidID           = errors.New("invalid_id")
	ErrBoardNotFound       = errors.New("board_not_found")
	ErrColumnNotFound      = errors.New("column_not_found")
	ErrTaskNotFound        = errors.New("task_not_found")
)
