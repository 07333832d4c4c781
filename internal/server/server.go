package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seb-lewis/startupcrm/internal/account"
	accountdomain "github.com/seb-lewis/startupcrm/internal/account/domain"
	"github.com/seb-lewis/startupcrm/internal/admin"
	admindomain "github.com/seb-lewis/startupcrm/internal/admin/domain"
	"github.com/seb-lewis/startupcrm/internal/auth"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/auth/session"
	"github.com/seb-lewis/startupcrm/internal/authorization"
	"github.com/seb-lewis/startupcrm/internal/config"
	"github.com/seb-lewis/startupcrm/internal/contact"
	contactdomain "github.com/seb-lewis/startupcrm/internal/contact/domain"
	"github.com/seb-lewis/startupcrm/internal/crmcase"
	crmcasedomain "github.com/seb-lewis/startupcrm/internal/crmcase/domain"
	"github.com/seb-lewis/startupcrm/internal/lead"
	leaddomain "github.com/seb-lewis/startupcrm/internal/lead/domain"
	"github.com/seb-lewis/startupcrm/internal/observability/metrics"
	"github.com/seb-lewis/startupcrm/internal/opportunity"
	opportunitydomain "github.com/seb-lewis/startupcrm/internal/opportunity/domain"
	"github.com/seb-lewis/startupcrm/internal/organization"
	orgdomain "github.com/seb-lewis/startupcrm/internal/organization/domain"
	"github.com/seb-lewis/startupcrm/internal/ratelimit"
	"github.com/seb-lewis/startupcrm/internal/task"
	taskdomain "github.com/seb-lewis/startupcrm/internal/task/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module assembles the HTTP surface: every domain service plus the gin
// engine, middleware chain, and route registration.
var Module = fx.Module("http.server",
	auth.Module,
	session.Module,
	authorization.Module,
	organization.Module,
	account.Module,
	contact.Module,
	lead.Module,
	opportunity.Module,
	crmcase.Module,
	task.Module,
	admin.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the ambient middleware stack.
// Health and metrics endpoints are registered here, before the resolver
// chain is installed, so they stay outside it.
func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	httpMetrics := metrics.HTTPWithConfig(metrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	engine.Use(LoggingMiddleware(log))
	engine.Use(MetricsMiddleware(httpMetrics))
	engine.Use(ErrorHandlingMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return engine
}

type ServerParams struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Engine *gin.Engine

	Sessions     *session.Manager
	LoginLimiter *ratelimit.TokenBucket `optional:"true"`

	AuthService          authdomain.Service
	OrganizationService  orgdomain.Service
	AuthorizationService authorization.Service
	AccountService       accountdomain.Service
	ContactService       contactdomain.Service
	LeadService          leaddomain.Service
	OpportunityService   opportunitydomain.Service
	CaseService          crmcasedomain.Service
	TaskService          taskdomain.Service
	AdminService         admindomain.Service
}

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	engine  *gin.Engine
	metrics *metrics.HTTPMetrics

	sessions     *session.Manager
	loginLimiter *ratelimit.TokenBucket

	authService          authdomain.Service
	organizationService  orgdomain.Service
	authorizationService authorization.Service
	accountService       accountdomain.Service
	contactService       contactdomain.Service
	leadService          leaddomain.Service
	opportunityService   opportunitydomain.Service
	caseService          crmcasedomain.Service
	taskService          taskdomain.Service
	adminService         admindomain.Service
}

// NewServer installs the resolver chain and registers all routes. The
// chain order is load-bearing: session resolution, then organization
// resolution, then the route guard, before any handler runs.
func NewServer(p ServerParams) *Server {
	s := &Server{
		cfg:                  p.Config,
		log:                  p.Log.Named("server"),
		engine:               p.Engine,
		metrics:              metrics.HTTP(),
		sessions:             p.Sessions,
		loginLimiter:         p.LoginLimiter,
		authService:          p.AuthService,
		organizationService:  p.OrganizationService,
		authorizationService: p.AuthorizationService,
		accountService:       p.AccountService,
		contactService:       p.ContactService,
		leadService:          p.LeadService,
		opportunityService:   p.OpportunityService,
		caseService:          p.CaseService,
		taskService:          p.TaskService,
		adminService:         p.AdminService,
	}

	s.engine.Use(s.ResolveSession(), s.ResolveOrganization(), s.RouteGuard())

	s.registerAuthRoutes()
	s.registerOrganizationRoutes()
	s.registerAppRoutes()
	s.registerAdminRoutes()

	return s
}

func (s *Server) registerAuthRoutes() {
	group := s.engine.Group("/auth")
	group.POST("/signup", s.Signup)
	group.POST("/login", s.loginThrottle(), s.Login)
	group.POST("/logout", s.Logout)
	group.GET("/me", s.Me)
	group.POST("/change-password", s.ChangePassword)
}

func (s *Server) registerOrganizationRoutes() {
	group := s.engine.Group("/org")
	group.GET("", s.ListOrganizations)
	group.POST("", s.CreateOrganization)
	group.POST("/use/:orgId", s.UseOrganization)
	group.POST("/invites", s.InviteMembers)
	group.POST("/invites/:inviteId/accept", s.AcceptInvite)
}

func (s *Server) registerAppRoutes() {
	app := s.engine.Group("/app", s.RequireRole(orgdomain.RoleMember))

	accounts := app.Group("/accounts")
	accounts.GET("", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionView), s.ListAccounts)
	accounts.POST("", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionCreate), s.CreateAccount)
	accounts.GET("/:id", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionView), s.GetAccount)
	accounts.PATCH("/:id", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionUpdate), s.UpdateAccount)
	accounts.POST("/:id/archive", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionUpdate), s.ArchiveAccount)

	contacts := app.Group("/contacts")
	contacts.GET("", s.authorizeOrgAction(authorization.ObjectContact, authorization.ActionView), s.ListContacts)
	contacts.POST("", s.authorizeOrgAction(authorization.ObjectContact, authorization.ActionCreate), s.CreateContact)
	contacts.GET("/:id", s.authorizeOrgAction(authorization.ObjectContact, authorization.ActionView), s.GetContact)
	contacts.PATCH("/:id", s.authorizeOrgAction(authorization.ObjectContact, authorization.ActionUpdate), s.UpdateContact)
	contacts.DELETE("/:id", s.authorizeOrgAction(authorization.ObjectContact, authorization.ActionDelete), s.DeleteContact)

	leads := app.Group("/leads")
	leads.GET("", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionView), s.ListLeads)
	leads.POST("", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionCreate), s.CreateLead)
	leads.GET("/:id", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionView), s.GetLead)
	leads.PATCH("/:id", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionUpdate), s.UpdateLead)
	leads.DELETE("/:id", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionDelete), s.DeleteLead)
	leads.POST("/:id/convert", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionLeadConvert), s.ConvertLead)

	opportunities := app.Group("/opportunities")
	opportunities.GET("", s.authorizeOrgAction(authorization.ObjectOpportunity, authorization.ActionView), s.ListOpportunities)
	opportunities.POST("", s.authorizeOrgAction(authorization.ObjectOpportunity, authorization.ActionCreate), s.CreateOpportunity)
	opportunities.GET("/:id", s.authorizeOrgAction(authorization.ObjectOpportunity, authorization.ActionView), s.GetOpportunity)
	opportunities.PATCH("/:id", s.authorizeOrgAction(authorization.ObjectOpportunity, authorization.ActionUpdate), s.UpdateOpportunity)
	opportunities.POST("/:id/stage", s.authorizeOrgAction(authorization.ObjectOpportunity, authorization.ActionUpdate), s.MoveOpportunityStage)

	cases := app.Group("/cases")
	cases.GET("", s.authorizeOrgAction(authorization.ObjectCase, authorization.ActionView), s.ListCases)
	cases.POST("", s.authorizeOrgAction(authorization.ObjectCase, authorization.ActionCreate), s.CreateCase)
	cases.GET("/:id", s.authorizeOrgAction(authorization.ObjectCase, authorization.ActionView), s.GetCase)
	cases.PATCH("/:id", s.authorizeOrgAction(authorization.ObjectCase, authorization.ActionUpdate), s.UpdateCase)
	cases.POST("/:id/close", s.authorizeOrgAction(authorization.ObjectCase, authorization.ActionCaseClose), s.CloseCase)

	boards := app.Group("/boards")
	boards.GET("", s.authorizeOrgAction(authorization.ObjectBoard, authorization.ActionView), s.ListBoards)
	boards.POST("", s.authorizeOrgAction(authorization.ObjectBoard, authorization.ActionBoardCreate), s.CreateBoard)
	boards.GET("/:id", s.authorizeOrgAction(authorization.ObjectBoard, authorization.ActionView), s.GetBoard)
	boards.POST("/:id/columns", s.authorizeOrgAction(authorization.ObjectBoard, authorization.ActionBoardCreate), s.CreateColumn)

	tasks := app.Group("/tasks")
	tasks.POST("", s.authorizeOrgAction(authorization.ObjectBoard, authorization.ActionUpdate), s.CreateTask)
	tasks.PATCH("/:id", s.authorizeOrgAction(authorization.ObjectBoard, authorization.ActionUpdate), s.UpdateTask)
	tasks.DELETE("/:id", s.authorizeOrgAction(authorization.ObjectBoard, authorization.ActionDelete), s.DeleteTask)
	tasks.POST("/:id/move", s.authorizeOrgAction(authorization.ObjectBoard, authorization.ActionBoardReorder), s.MoveTask)
}

func (s *Server) registerAdminRoutes() {
	group := s.engine.Group("/admin")
	group.GET("/users", s.AdminListUsers)
	group.POST("/users/:id/activate", s.AdminActivateUser)
	group.POST("/users/:id/deactivate", s.AdminDeactivateUser)
	group.GET("/organizations", s.AdminListOrganizations)
}

func run(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			log.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server terminated", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
