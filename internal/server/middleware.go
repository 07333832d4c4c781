package server

import (
	"crypto/rand"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/observability/metrics"
	orgdomain "github.com/seb-lewis/startupcrm/internal/organization/domain"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	orgRoleKey      = "org_role"
)

// RequestIDMiddleware assigns a ULID to every request and echoes it in
// the response header so log lines can be correlated with responses.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func LoggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func MetricsMiddleware(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// ResolveSession authenticates the session cookie, if present, and
// stores the resulting identity in the request context. It never
// terminates the request for bad credentials: a missing, malformed,
// expired, or revoked token resolves to an unauthenticated identity
// and the chain continues. Only a store failure aborts, with a 500,
// so a flaky session store cannot silently downgrade requests to
// anonymous.
func (s *Server) ResolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := authctx.Unauthenticated()
		outcome := metrics.AuthOutcomeUnauthenticated

		if token, ok := s.sessions.ReadToken(c); ok {
			session, user, err := s.authService.Authenticate(c.Request.Context(), token)
			switch {
			case err == nil:
				identity = authctx.Authenticated(user, session)
				outcome = metrics.AuthOutcomeAuthenticated
			case isCredentialError(err):
				// Stale cookie, keep going unauthenticated.
			default:
				s.metrics.IncAuthResolution(metrics.AuthOutcomeStoreError)
				s.log.Error("session resolution failed", zap.Error(err))
				AbortWithError(c, err)
				return
			}
		}

		s.metrics.IncAuthResolution(outcome)
		c.Request = c.Request.WithContext(authctx.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func isCredentialError(err error) bool {
	return errors.Is(err, authdomain.ErrInvalidSession) ||
		errors.Is(err, authdomain.ErrSessionNotFound) ||
		errors.Is(err, authdomain.ErrSessionExpired) ||
		errors.Is(err, authdomain.ErrSessionRevoked) ||
		errors.Is(err, authdomain.ErrUserNotFound) ||
		errors.Is(err, authdomain.ErrUserInactive)
}

// ResolveOrganization validates the session's active-organization hint
// with a membership lookup and attaches the organization to the
// identity. A hint to an organization the user is no longer a member
// of is silently discarded; the user keeps an authenticated identity
// with no active organization. No fallback organization is ever
// auto-selected.
func (s *Server) ResolveOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authctx.FromContext(c.Request.Context())
		if !ok || !identity.IsAuthenticated() {
			c.Next()
			return
		}

		hint := identity.Session().ActiveOrgID
		if hint == nil {
			c.Next()
			return
		}

		orgID := snowflake.ID(*hint)
		membership, err := s.organizationService.ResolveMembership(c.Request.Context(), orgID, identity.User().ID)
		if err != nil {
			s.log.Error("membership resolution failed", zap.Error(err))
			AbortWithError(c, err)
			return
		}
		if membership == nil {
			c.Next()
			return
		}

		org, err := s.organizationService.GetByID(c.Request.Context(), orgID)
		if err != nil {
			if errors.Is(err, orgdomain.ErrInvalidOrganization) {
				c.Next()
				return
			}
			s.log.Error("organization lookup failed", zap.Error(err))
			AbortWithError(c, err)
			return
		}
		if org == nil {
			c.Next()
			return
		}

		ref := &authctx.OrgRef{ID: orgID, Name: org.Name, Slug: org.Slug}
		identity = identity.WithOrg(ref)
		c.Set(orgRoleKey, membership.Role)
		c.Request = c.Request.WithContext(authctx.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RouteGuard applies the access table by path prefix. Redirects are
// temporary (307) and terminate the chain.
func (s *Server) RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := authctx.FromContext(c.Request.Context())
		path := c.Request.URL.Path

		switch {
		case matchesPrefix(path, "/app"):
			if !identity.IsAuthenticated() {
				s.redirect(c, "/login")
				return
			}
			if identity.Org() == nil {
				s.redirect(c, "/org")
				return
			}
		case matchesPrefix(path, "/admin"):
			if !identity.IsAuthenticated() {
				s.redirect(c, "/login")
				return
			}
			if !identity.IsAdmin() {
				s.redirect(c, "/app")
				return
			}
		case matchesPrefix(path, "/org"):
			if !identity.IsAuthenticated() {
				s.redirect(c, "/login")
				return
			}
		}

		c.Next()
	}
}

func (s *Server) redirect(c *gin.Context, target string) {
	s.metrics.IncGuardRedirect(target)
	c.Redirect(http.StatusTemporaryRedirect, target)
	c.Abort()
}

func matchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// RequireRole gates a route on the caller's role in the active
// organization. Roles are ordered MEMBER < ADMIN < OWNER.
func (s *Server) RequireRole(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(orgRoleKey)
		if roleRank(role) < roleRank(minRole) {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func roleRank(role string) int {
	switch role {
	case orgdomain.RoleOwner:
		return 3
	case orgdomain.RoleAdmin:
		return 2
	case orgdomain.RoleMember:
		return 1
	default:
		return 0
	}
}

// authorizeOrgAction checks the policy engine for (object, action) in
// the caller's active organization before the handler runs.
func (s *Server) authorizeOrgAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authctx.FromContext(c.Request.Context())
		if !ok || !identity.IsAuthenticated() || identity.Org() == nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if err := s.authorizationService.Authorize(c.Request.Context(), identity.User().ID, identity.Org().ID, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// loginThrottle rate-limits login attempts per client IP. When no
// limiter backend is configured the limiter is nil and everything is
// allowed.
func (s *Server) loginThrottle() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.loginLimiter.Allow(c.Request.Context(), "login:"+c.ClientIP(), s.cfg.LoginRatePerSecond, s.cfg.LoginBurst)
		if err != nil {
			s.log.Warn("login throttle check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
