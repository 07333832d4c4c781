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
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	AccountID *string        `json:"account_id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     *string        `json:"email"`
	Phone     *string        `json:"phone"`
	Title     *string        `json:"title"`
	Metadata  map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID        string         `json:"-"`
	AccountID *string        `json:"account_id"`
	FirstName *string        `json:"first_name"`
	LastName  *string        `json:"last_name"`
	Email     *string        `json:"email"`
	Phone     *string        `json:"phone"`
	Title     *string        `json:"title"`
	Metadata  map[string]any `json:"metadata"`
}

type ListQuery struct {
	AccountID  string
	Query      string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}

type Response struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	AccountID      *string        `json:"account_id,omitempty"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name,omitempty"`
	Email          *string        `json:"email,omitempty"`
	Phone          *string        `json:"phone,omitempty"`
	Title          *string        `json:"title,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
