package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/organization/domain"
	"github.com/seb-lewis/startupcrm/internal/organization/repository"
	"github.com/seb-lewis/startupcrm/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupOrgTest(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Organization{}, &domain.Membership{}, &domain.Invite{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(zap.NewNop(), conn, repository.NewRepository(conn), node), conn, node
}

func TestCreateGrantsOwnerMembership(t *testing.T) {
	svc, _, node := setupOrgTest(t)
	userID := node.Generate()

	org, err := svc.Create(context.Background(), userID, domain.CreateOrganizationRequest{Name: "Acme Rockets"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Rockets", org.Name)
	assert.Contains(t, org.Slug, "acme-rockets")

	orgID, err := snowflake.ParseString(org.ID)
	require.NoError(t, err)

	membership, err := svc.ResolveMembership(context.Background(), orgID, userID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, domain.RoleOwner, membership.Role)
}

func TestResolveMembershipReturnsNilForNonMember(t *testing.T) {
	svc, _, node := setupOrgTest(t)

	org, err := svc.Create(context.Background(), node.Generate(), domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	orgID, err := snowflake.ParseString(org.ID)
	require.NoError(t, err)

	membership, err := svc.ResolveMembership(context.Background(), orgID, node.Generate())
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestAcceptInviteAddsMember(t *testing.T) {
	svc, conn, node := setupOrgTest(t)
	owner := node.Generate()
	invitee := node.Generate()

	org, err := svc.Create(context.Background(), owner, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	orgID, err := snowflake.ParseString(org.ID)
	require.NoError(t, err)

	err = svc.InviteMembers(context.Background(), owner, orgID, []domain.InviteRequest{
		{Email: "bob@example.com", Role: domain.RoleMember},
	})
	require.NoError(t, err)

	var invite domain.Invite
	require.NoError(t, conn.Where("org_id = ?", orgID).First(&invite).Error)
	assert.Equal(t, domain.InviteStatusPending, invite.Status)

	require.NoError(t, svc.AcceptInvite(context.Background(), invitee, "Bob@Example.com", invite.ID))

	membership, err := svc.ResolveMembership(context.Background(), orgID, invitee)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, domain.RoleMember, membership.Role)

	require.NoError(t, conn.First(&invite, "id = ?", invite.ID).Error)
	assert.Equal(t, domain.InviteStatusAccepted, invite.Status)
}

func TestAcceptInviteRejectsWrongEmail(t *testing.T) {
	svc, conn, node := setupOrgTest(t)
	owner := node.Generate()

	org, err := svc.Create(context.Background(), owner, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	orgID, err := snowflake.ParseString(org.ID)
	require.NoError(t, err)

	err = svc.InviteMembers(context.Background(), owner, orgID, []domain.InviteRequest{
		{Email: "bob@example.com", Role: domain.RoleMember},
	})
	require.NoError(t, err)

	var invite domain.Invite
	require.NoError(t, conn.Where("org_id = ?", orgID).First(&invite).Error)

	err = svc.AcceptInvite(context.Background(), node.Generate(), "mallory@example.com", invite.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInviteRequiresManagerRole(t *testing.T) {
	svc, _, node := setupOrgTest(t)
	owner := node.Generate()
	outsider := node.Generate()

	org, err := svc.Create(context.Background(), owner, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	orgID, err := snowflake.ParseString(org.ID)
	require.NoError(t, err)

	err = svc.InviteMembers(context.Background(), outsider, orgID, []domain.InviteRequest{
		{Email: "bob@example.com", Role: domain.RoleMember},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
