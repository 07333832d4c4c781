package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/seb-lewis/startupcrm/internal/auth/session"
	"github.com/seb-lewis/startupcrm/internal/authorization"
	"github.com/seb-lewis/startupcrm/internal/config"
	"github.com/seb-lewis/startupcrm/internal/observability/metrics"
	orgdomain "github.com/seb-lewis/startupcrm/internal/organization/domain"
	"go.uber.org/zap"
)

type fakeAuthzService struct {
	err error

	calls      int
	lastOrgID  snowflake.ID
	lastObject string
	lastAction string
}

func (f *fakeAuthzService) Authorize(ctx context.Context, userID snowflake.ID, orgID snowflake.ID, object string, action string) error {
	f.calls++
	f.lastOrgID = orgID
	f.lastObject = object
	f.lastAction = action
	_ = ctx
	_ = userID
	return f.err
}

func newOrgRouter(auth *fakeAuthService, org *fakeOrgService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	s := &Server{
		cfg:                 config.Config{},
		log:                 zap.NewNop(),
		metrics:             metrics.HTTP(),
		sessions:            session.NewManager(config.Config{}),
		authService:         auth,
		organizationService: org,
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Use(s.ResolveSession(), s.ResolveOrganization(), s.RouteGuard())
	router.POST("/org/use/:orgId", s.UseOrganization)

	return router
}

func newInviteRouter(auth *fakeAuthService, org *fakeOrgService, authz *fakeAuthzService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	s := &Server{
		cfg:                  config.Config{},
		log:                  zap.NewNop(),
		metrics:              metrics.HTTP(),
		sessions:             session.NewManager(config.Config{}),
		authService:          auth,
		organizationService:  org,
		authorizationService: authz,
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Use(s.ResolveSession(), s.ResolveOrganization(), s.RouteGuard())
	router.POST("/org/invites", s.InviteMembers)

	return router
}

func postInvites(router *gin.Engine) *httptest.ResponseRecorder {
	body := `{"org_id":"100","invites":[{"email":"bob@example.com","role":"MEMBER"}]}`
	req := httptest.NewRequest(http.MethodPost, "/org/invites", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "session-token"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestInviteMembersDeniedByPolicy(t *testing.T) {
	auth := &fakeAuthService{session: testSession(nil), user: testUser(false)}
	org := &fakeOrgService{}
	authz := &fakeAuthzService{err: authorization.ErrForbidden}
	router := newInviteRouter(auth, org, authz)

	resp := postInvites(router)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", resp.Code, resp.Body.String())
	}
	if org.inviteCalls != 0 {
		t.Fatalf("expected no invite creation when the policy denies, got %d", org.inviteCalls)
	}
	if authz.lastObject != authorization.ObjectMember || authz.lastAction != authorization.ActionMemberInvite {
		t.Fatalf("expected member invite policy check, got %s/%s", authz.lastObject, authz.lastAction)
	}
	if authz.lastOrgID != snowflake.ID(100) {
		t.Fatalf("expected policy check against org 100, got %s", authz.lastOrgID)
	}
}

func TestInviteMembersAllowedByPolicy(t *testing.T) {
	auth := &fakeAuthService{session: testSession(nil), user: testUser(false)}
	org := &fakeOrgService{}
	authz := &fakeAuthzService{}
	router := newInviteRouter(auth, org, authz)

	resp := postInvites(router)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if authz.calls != 1 {
		t.Fatalf("expected one policy check, got %d", authz.calls)
	}
	if org.inviteCalls != 1 {
		t.Fatalf("expected one invite creation, got %d", org.inviteCalls)
	}
}

func TestUseOrganizationUpdatesSessionHint(t *testing.T) {
	auth := &fakeAuthService{session: testSession(nil), user: testUser(false)}
	org := &fakeOrgService{
		membership: &orgdomain.Membership{
			OrgID:  snowflake.ID(100),
			UserID: snowflake.ID(200),
			Role:   orgdomain.RoleMember,
		},
	}
	router := newOrgRouter(auth, org)

	req := httptest.NewRequest(http.MethodPost, "/org/use/100", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "session-token"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if auth.setActiveOrgCalls != 1 {
		t.Fatalf("expected one session update, got %d", auth.setActiveOrgCalls)
	}
	if auth.lastActiveOrgID == nil || *auth.lastActiveOrgID != 100 {
		t.Fatalf("expected active org 100, got %v", auth.lastActiveOrgID)
	}
}

func TestUseOrganizationRejectsNonMember(t *testing.T) {
	auth := &fakeAuthService{session: testSession(nil), user: testUser(false)}
	org := &fakeOrgService{membership: nil}
	router := newOrgRouter(auth, org)

	req := httptest.NewRequest(http.MethodPost, "/org/use/100", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "session-token"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", resp.Code, resp.Body.String())
	}
	if auth.setActiveOrgCalls != 0 {
		t.Fatalf("expected no session update for a non-member, got %d", auth.setActiveOrgCalls)
	}
}
