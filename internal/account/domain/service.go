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
	List(ctx context.Context, req ListRequest) ([]Response, *pagination.PageInfo, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	Name           string         `json:"name"`
	Industry       *string        `json:"industry"`
	Website        *string        `json:"website"`
	Phone          *string        `json:"phone"`
	BillingAddress *string        `json:"billing_address"`
	OwnerUserID    *string        `json:"owner_user_id"`
	Metadata       map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID             string         `json:"-"`
	Name           *string        `json:"name"`
	Industry       *string        `json:"industry"`
	Website        *string        `json:"website"`
	Phone          *string        `json:"phone"`
	BillingAddress *string        `json:"billing_address"`
	OwnerUserID    *string        `json:"owner_user_id"`
	Metadata       map[string]any `json:"metadata"`
}

type Response struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	Name           string         `json:"name"`
	Industry       *string        `json:"industry,omitempty"`
	Website        *string        `json:"website,omitempty"`
	Phone          *string        `json:"phone,omitempty"`
	BillingAddress *string        `json:"billing_address,omitempty"`
	OwnerUserID    *string        `json:"owner_user_id,omitempty"`
	Status         string         `json:"status"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
