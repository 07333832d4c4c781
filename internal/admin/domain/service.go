package domain

import (
	"context"
	"errors"
	"time"

	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
)

// Service backs the /admin surface. Every operation assumes the route
// guard has already verified the caller is a site admin.
type Service interface {
	ListUsers(ctx context.Context, req ListUsersRequest) ([]UserRow, *pagination.PageInfo, error)
	SetUserActive(ctx context.Context, userID string, active bool) (*UserRow, error)
	ListOrganizations(ctx context.Context, req ListOrganizationsRequest) ([]OrganizationRow, *pagination.PageInfo, error)
}

type ListUsersRequest struct {
	Query      string
	Pagination pagination.Pagination
}

type ListOrganizationsRequest struct {
	Query      string
	Pagination pagination.Pagination
}

type UserRow struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	IsActive    bool       `json:"is_active"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   time.Time  `json:"created_at"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

type OrganizationRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrUserNotFound = errors.New("user_not_found")
	ErrSelfDisable  = errors.New("cannot_deactivate_self")
)
