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
	// MoveStage transitions the deal to the named pipeline stage and
	// stamps the stage's default probability.
	MoveStage(ctx context.Context, id string, stage string) (*Response, error)
}

type CreateRequest struct {
	AccountID   *string        `json:"account_id"`
	Name        string         `json:"name"`
	AmountCents int64          `json:"amount_cents"`
	Currency    string         `json:"currency"`
	Stage       string         `json:"stage"`
	CloseDate   *time.Time     `json:"close_date"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID          string         `json:"-"`
	AccountID   *string        `json:"account_id"`
	Name        *string        `json:"name"`
	AmountCents *int64         `json:"amount_cents"`
	Currency    *string        `json:"currency"`
	CloseDate   *time.Time     `json:"close_date"`
	Probability *int           `json:"probability"`
	Metadata    map[string]any `json:"metadata"`
}

type ListQuery struct {
	AccountID  string
	Stage      string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}

type Response struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	AccountID      *string        `json:"account_id,omitempty"`
	Name           string         `json:"name"`
	AmountCents    int64          `json:"amount_cents"`
	Currency       string         `json:"currency"`
	Stage          string         `json:"stage"`
	Probability    int            `json:"probability"`
	Won            bool           `json:"won"`
	Lost           bool           `json:"lost"`
	CloseDate      *time.Time     `json:"close_date,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidStage        = errors.New("invalid_stage")
	ErrClosedStage         = errors.New("opportunity_closed")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
