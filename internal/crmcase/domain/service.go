package domain

import (
	"context"
	"errors"
	"time"

	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListQuery) ([]Response, *pagination.PageInfo, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Close(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	AccountID      *string        `json:"account_id"`
	ContactID      *string        `json:"contact_id"`
	Subject        string         `json:"subject"`
	Description    *string        `json:"description"`
	Priority       string         `json:"priority"`
	AssigneeUserID *string        `json:"assignee_user_id"`
	Metadata       map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID             string         `json:"-"`
	AccountID      *string        `json:"account_id"`
	ContactID      *string        `json:"contact_id"`
	Subject        *string        `json:"subject"`
	Description    *string        `json:"description"`
	Priority       *string        `json:"priority"`
	Status         *string        `json:"status"`
	AssigneeUserID *string        `json:"assignee_user_id"`
	Metadata       map[string]any `json:"metadata"`
}

type ListQuery struct {
	AccountID  string
	Status     string
	Priority   string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}

type Response struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	AccountID      *string        `json:"account_id,omitempty"`
	ContactID      *string        `json:"contact_id,omitempty"`
	Subject        string         `json:"subject"`
	Description    *string        `json:"description,omitempty"`
	Priority       string         `json:"priority"`
	Status         string         `json:"status"`
	AssigneeUserID *string        `json:"assignee_user_id,omitempty"`
	ClosedAt       *time.Time     `json:"closed_at,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidSubject      = errors.New("invalid_subject")
	ErrInvalidPriority     = errors.New("invalid_priority")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrAlreadyClosed       = errors.New("case_already_closed")
)
