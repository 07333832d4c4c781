package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/auth/session"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/config"
	"github.com/seb-lewis/startupcrm/internal/observability/metrics"
	orgdomain "github.com/seb-lewis/startupcrm/internal/organization/domain"
	"go.uber.org/zap"
)

type fakeAuthService struct {
	session *authdomain.Session
	user    *authdomain.User
	authErr error

	authenticateCalls int
	setActiveOrgCalls int
	lastActiveOrgID   *int64
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	_ = ctx
	_ = req
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	_ = ctx
	_ = req
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, *authdomain.User, error) {
	f.authenticateCalls++
	_ = ctx
	_ = rawToken
	if f.authErr != nil {
		return nil, nil, f.authErr
	}
	return f.session, f.user, nil
}

func (f *fakeAuthService) SetActiveOrg(ctx context.Context, sessionID snowflake.ID, activeOrgID *int64) error {
	f.setActiveOrgCalls++
	f.lastActiveOrgID = activeOrgID
	_ = ctx
	_ = sessionID
	return nil
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID snowflake.ID, newPassword string) error {
	_ = ctx
	_ = userID
	_ = newPassword
	return nil
}

type fakeOrgService struct {
	membership    *orgdomain.Membership
	membershipErr error
	org           *orgdomain.OrganizationResponse

	resolveMembershipCalls int
	inviteCalls            int
}

func (f *fakeOrgService) Create(ctx context.Context, userID snowflake.ID, req orgdomain.CreateOrganizationRequest) (*orgdomain.OrganizationResponse, error) {
	_ = ctx
	_ = userID
	_ = req
	return f.org, nil
}

func (f *fakeOrgService) GetByID(ctx context.Context, id snowflake.ID) (*orgdomain.OrganizationResponse, error) {
	_ = ctx
	_ = id
	if f.org == nil {
		return nil, orgdomain.ErrInvalidOrganization
	}
	return f.org, nil
}

func (f *fakeOrgService) ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]orgdomain.OrganizationListResponseItem, error) {
	_ = ctx
	_ = userID
	return nil, nil
}

func (f *fakeOrgService) ResolveMembership(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (*orgdomain.Membership, error) {
	f.resolveMembershipCalls++
	_ = ctx
	_ = orgID
	_ = userID
	if f.membershipErr != nil {
		return nil, f.membershipErr
	}
	return f.membership, nil
}

func (f *fakeOrgService) InviteMembers(ctx context.Context, userID snowflake.ID, orgID snowflake.ID, invites []orgdomain.InviteRequest) error {
	f.inviteCalls++
	_ = ctx
	_ = userID
	_ = orgID
	_ = invites
	return nil
}

func (f *fakeOrgService) AcceptInvite(ctx context.Context, userID snowflake.ID, userEmail string, inviteID snowflake.ID) error {
	_ = ctx
	_ = userID
	_ = userEmail
	_ = inviteID
	return nil
}

func activeOrg(id int64) *int64 {
	return &id
}

func testUser(isAdmin bool) *authdomain.User {
	return &authdomain.User{
		ID:       snowflake.ID(200),
		Email:    "alice@example.com",
		IsActive: true,
		IsAdmin:  isAdmin,
	}
}

func testSession(activeOrgID *int64) *authdomain.Session {
	return &authdomain.Session{
		ID:          snowflake.ID(300),
		UserID:      snowflake.ID(200),
		ActiveOrgID: activeOrgID,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func newResolverRouter(auth *fakeAuthService, org *fakeOrgService) (*gin.Engine, *Server) {
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

	router.GET("/public", func(c *gin.Context) {
		identity, _ := authctx.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"authenticated": identity.IsAuthenticated()})
	})
	router.GET("/app/dashboard", func(c *gin.Context) {
		identity, _ := authctx.FromContext(c.Request.Context())
		org := identity.Org()
		c.JSON(http.StatusOK, gin.H{
			"org_id":   org.ID.String(),
			"org_name": org.Name,
			"role":     c.GetString(orgRoleKey),
			"user_id":  identity.User().ID.String(),
		})
	})
	router.GET("/org", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"picker": true})
	})
	router.GET("/admin/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": true})
	})

	return router, s
}

func doRequest(router *gin.Engine, path string, withCookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "session-token"})
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestPublicRouteAllowsAnonymous(t *testing.T) {
	auth := &fakeAuthService{}
	router, _ := newResolverRouter(auth, &fakeOrgService{})

	resp := doRequest(router, "/public", false)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if auth.authenticateCalls != 0 {
		t.Fatalf("expected no authenticate call without a cookie, got %d", auth.authenticateCalls)
	}
}

func TestPublicRouteContinuesAfterExpiredSession(t *testing.T) {
	auth := &fakeAuthService{authErr: authdomain.ErrSessionExpired}
	router, _ := newResolverRouter(auth, &fakeOrgService{})

	resp := doRequest(router, "/public", true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if auth.authenticateCalls != 1 {
		t.Fatalf("expected one authenticate call, got %d", auth.authenticateCalls)
	}
}

func TestSessionStoreFailureFailsClosed(t *testing.T) {
	auth := &fakeAuthService{authErr: errors.New("connection refused")}
	router, _ := newResolverRouter(auth, &fakeOrgService{})

	resp := doRequest(router, "/public", true)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestAppRedirectsAnonymousToLogin(t *testing.T) {
	router, _ := newResolverRouter(&fakeAuthService{}, &fakeOrgService{})

	resp := doRequest(router, "/app/dashboard", false)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestAppRedirectsToOrgPickerWithoutActiveOrg(t *testing.T) {
	auth := &fakeAuthService{session: testSession(nil), user: testUser(false)}
	org := &fakeOrgService{}
	router, _ := newResolverRouter(auth, org)

	resp := doRequest(router, "/app/dashboard", true)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/org" {
		t.Fatalf("expected redirect to /org, got %q", loc)
	}
	if org.resolveMembershipCalls != 0 {
		t.Fatalf("expected no membership lookup without a hint, got %d", org.resolveMembershipCalls)
	}
}

func TestStaleOrgHintIsDiscardedNotAutoSelected(t *testing.T) {
	auth := &fakeAuthService{session: testSession(activeOrg(100)), user: testUser(false)}
	org := &fakeOrgService{membership: nil}
	router, _ := newResolverRouter(auth, org)

	resp := doRequest(router, "/app/dashboard", true)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/org" {
		t.Fatalf("expected redirect to /org, got %q", loc)
	}
	if org.resolveMembershipCalls != 1 {
		t.Fatalf("expected exactly one membership lookup, got %d", org.resolveMembershipCalls)
	}
	if auth.setActiveOrgCalls != 0 {
		t.Fatalf("expected no session mutation on a stale hint, got %d", auth.setActiveOrgCalls)
	}
}

func TestMembershipStoreFailureFailsClosed(t *testing.T) {
	auth := &fakeAuthService{session: testSession(activeOrg(100)), user: testUser(false)}
	org := &fakeOrgService{membershipErr: errors.New("connection refused")}
	router, _ := newResolverRouter(auth, org)

	resp := doRequest(router, "/app/dashboard", true)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestAppAllowsValidatedMember(t *testing.T) {
	auth := &fakeAuthService{session: testSession(activeOrg(100)), user: testUser(false)}
	org := &fakeOrgService{
		membership: &orgdomain.Membership{
			OrgID:  snowflake.ID(100),
			UserID: snowflake.ID(200),
			Role:   orgdomain.RoleAdmin,
		},
		org: &orgdomain.OrganizationResponse{
			ID:   snowflake.ID(100).String(),
			Name: "Acme",
			Slug: "acme",
		},
	}
	router, _ := newResolverRouter(auth, org)

	resp := doRequest(router, "/app/dashboard", true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	want := `{"org_id":"100","org_name":"Acme","role":"ADMIN","user_id":"200"}`
	if resp.Body.String() != want {
		t.Fatalf("expected resolved projection %s, got %s", want, resp.Body.String())
	}
	if org.resolveMembershipCalls != 1 {
		t.Fatalf("expected exactly one membership lookup per request, got %d", org.resolveMembershipCalls)
	}

	again := doRequest(router, "/app/dashboard", true)

	if again.Code != http.StatusOK {
		t.Fatalf("expected status 200 on repeat, got %d: %s", again.Code, again.Body.String())
	}
	if again.Body.String() != resp.Body.String() {
		t.Fatalf("expected identical resolution for the same credential and hint, got %s then %s", resp.Body.String(), again.Body.String())
	}
	if org.resolveMembershipCalls != 2 {
		t.Fatalf("expected one membership lookup per request, got %d after two requests", org.resolveMembershipCalls)
	}
}

func TestOrgPickerRequiresLogin(t *testing.T) {
	router, _ := newResolverRouter(&fakeAuthService{}, &fakeOrgService{})

	resp := doRequest(router, "/org", false)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestOrgPickerAllowsAuthenticatedWithoutOrg(t *testing.T) {
	auth := &fakeAuthService{session: testSession(nil), user: testUser(false)}
	router, _ := newResolverRouter(auth, &fakeOrgService{})

	resp := doRequest(router, "/org", true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestAdminRedirectsNonAdminToApp(t *testing.T) {
	auth := &fakeAuthService{session: testSession(nil), user: testUser(false)}
	router, _ := newResolverRouter(auth, &fakeOrgService{})

	resp := doRequest(router, "/admin/users", true)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/app" {
		t.Fatalf("expected redirect to /app, got %q", loc)
	}
}

func TestAdminAllowsAdminWithoutActiveOrg(t *testing.T) {
	auth := &fakeAuthService{session: testSession(nil), user: testUser(true)}
	router, _ := newResolverRouter(auth, &fakeOrgService{})

	resp := doRequest(router, "/admin/users", true)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestAdminRedirectsAnonymousToLogin(t *testing.T) {
	router, _ := newResolverRouter(&fakeAuthService{}, &fakeOrgService{})

	resp := doRequest(router, "/admin/users", false)

	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}
