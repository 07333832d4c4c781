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
	// Convert turns the lead into an account, a contact, and an open
	// opportunity in one transaction, then marks the lead converted.
	Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error)
}

type CreateRequest struct {
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Company   *string        `json:"company"`
	Email     *string        `json:"email"`
	Phone     *string        `json:"phone"`
	Status    string         `json:"status"`
	Source    *string        `json:"source"`
	Metadata  map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID        string         `json:"-"`
	FirstName *string        `json:"first_name"`
	LastName  *string        `json:"last_name"`
	Company   *string        `json:"company"`
	Email     *string        `json:"email"`
	Phone     *string        `json:"phone"`
	Status    *string        `json:"status"`
	Source    *string        `json:"source"`
	Metadata  map[string]any `json:"metadata"`
}

type ConvertRequest struct {
	ID string `json:"-"`
	// OpportunityName defaults to the account name when empty.
	OpportunityName string `json:"opportunity_name"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
}

type ConvertResult struct {
	Lead          Response `json:"lead"`
	AccountID     string   `json:"account_id"`
	ContactID     string   `json:"contact_id"`
	OpportunityID string   `json:"opportunity_id"`
}

type ListQuery struct {
	Status     string
	Query      string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}

type Response struct {
	ID                     string         `json:"id"`
	OrganizationID         string         `json:"organization_id"`
	FirstName              string         `json:"first_name"`
	LastName               string         `json:"last_name,omitempty"`
	Company                *string        `json:"company,omitempty"`
	Email                  *string        `json:"email,omitempty"`
	Phone                  *string        `json:"phone,omitempty"`
	Status                 string         `json:"status"`
	Source                 *string        `json:"source,omitempty"`
	ConvertedAt            *time.Time     `json:"converted_at,omitempty"`
	ConvertedAccountID     *string        `json:"converted_account_id,omitempty"`
	ConvertedContactID     *string        `json:"converted_contact_id,omitempty"`
	ConvertedOpportunityID *string        `json:"converted_opportunity_id,omitempty"`
	Metadata               map[string]any `json:"metadata,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrAlreadyConverted    = errors.New("lead_already_converted")
)
