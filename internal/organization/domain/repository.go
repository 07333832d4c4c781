package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type OrganizationListItem struct {
	ID        snowflake.ID
	Name      string
	Slug      string
	Role      string
	CreatedAt time.Time
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, orgID snowflake.ID) (*Organization, error)
	AddMember(ctx context.Context, member Membership) error
	GetMembership(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (*Membership, error)
	ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListItem, error)
	CreateInvites(ctx context.Context, invites []Invite) error
	GetInvite(ctx context.Context, inviteID snowflake.ID) (*Invite, error)
	UpdateInvite(ctx context.Context, invite Invite) error
}
