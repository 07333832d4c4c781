package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER" // Read-only / limited
)

func IsValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*OrganizationResponse, error)
	ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListResponseItem, error)
	// ResolveMembership returns the membership for (org, user), or nil
	// when the user is not a member. A store failure is returned as an
	// error, never folded into the nil case.
	ResolveMembership(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (*Membership, error)
	InviteMembers(ctx context.Context, userID snowflake.ID, orgID snowflake.ID, invites []InviteRequest) error
	AcceptInvite(ctx context.Context, userID snowflake.ID, userEmail string, inviteID snowflake.ID) error
}

type CreateOrganizationRequest struct {
	Name string
}

type InviteRequest struct {
	Email string
	Role  string
}

type OrganizationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type OrganizationListResponseItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrInviteNotFound      = errors.New("invite_not_found")
	ErrForbidden           = errors.New("forbidden")
)
