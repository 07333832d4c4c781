package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/authorization"
	orgdomain "github.com/seb-lewis/startupcrm/internal/organization/domain"
)

func (s *Server) ListOrganizations(c *gin.Context) {
	identity, _ := authctx.FromContext(c.Request.Context())

	items, err := s.organizationService.ListOrganizationsByUser(c.Request.Context(), identity.User().ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

type createOrganizationRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	identity, _ := authctx.FromContext(c.Request.Context())

	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationService.Create(c.Request.Context(), identity.User().ID, orgdomain.CreateOrganizationRequest{
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UseOrganization sets the session's active organization after
// validating the caller's membership. The hint is the only per-session
// state that changes; the next request's resolver chain picks it up.
func (s *Server) UseOrganization(c *gin.Context) {
	identity, _ := authctx.FromContext(c.Request.Context())

	orgID, err := snowflake.ParseString(strings.TrimSpace(c.Param("orgId")))
	if err != nil {
		AbortWithError(c, orgdomain.ErrInvalidOrganization)
		return
	}

	membership, err := s.organizationService.ResolveMembership(c.Request.Context(), orgID, identity.User().ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if membership == nil {
		AbortWithError(c, orgdomain.ErrForbidden)
		return
	}

	active := orgID.Int64()
	if err := s.authService.SetActiveOrg(c.Request.Context(), identity.Session().ID, &active); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"active_org_id": orgID.String()}})
}

type inviteMembersRequest struct {
	OrgID   string `json:"org_id"`
	Invites []struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"invites"`
}

func (s *Server) InviteMembers(c *gin.Context) {
	identity, _ := authctx.FromContext(c.Request.Context())

	var req inviteMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, err := snowflake.ParseString(strings.TrimSpace(req.OrgID))
	if err != nil {
		AbortWithError(c, orgdomain.ErrInvalidOrganization)
		return
	}

	// The target org comes from the body, not the active-org context,
	// so the policy check runs here rather than as route middleware.
	if err := s.authorizationService.Authorize(c.Request.Context(), identity.User().ID, orgID, authorization.ObjectMember, authorization.ActionMemberInvite); err != nil {
		AbortWithError(c, err)
		return
	}

	invites := make([]orgdomain.InviteRequest, 0, len(req.Invites))
	for _, invite := range req.Invites {
		invites = append(invites, orgdomain.InviteRequest{
			Email: strings.TrimSpace(invite.Email),
			Role:  strings.TrimSpace(invite.Role),
		})
	}

	if err := s.organizationService.InviteMembers(c.Request.Context(), identity.User().ID, orgID, invites); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"invited": len(invites)}})
}

func (s *Server) AcceptInvite(c *gin.Context) {
	identity, _ := authctx.FromContext(c.Request.Context())

	inviteID, err := snowflake.ParseString(strings.TrimSpace(c.Param("inviteId")))
	if err != nil {
		AbortWithError(c, orgdomain.ErrInviteNotFound)
		return
	}

	if err := s.organizationService.AcceptInvite(c.Request.Context(), identity.User().ID, identity.User().Email, inviteID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"accepted": true}})
}
