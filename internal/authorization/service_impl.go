package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectAccount     = "account"
	ObjectContact     = "contact"
	ObjectLead        = "lead"
	ObjectOpportunity = "opportunity"
	ObjectCase        = "case"
	ObjectBoard       = "board"
	ObjectMember      = "member"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionLeadConvert  = "lead.convert"
	ActionCaseClose    = "case.close"
	ActionMemberInvite = "member.invite"
	ActionBoardCreate  = "board.create"
	ActionBoardReorder = "board.reorder"
)

var (
	ErrInvalidActor        = errors.New("invalid_actor")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidObject       = errors.New("invalid_object")
	ErrInvalidAction       = errors.New("invalid_action")
	ErrForbidden           = errors.New("authorization_forbidden")
)

// Service answers "may this user perform this action on this object
// within this organization". Role membership comes from the memberships
// table; grants come from the seeded casbin policy.
type Service interface {
	Authorize(ctx context.Context, userID snowflake.ID, orgID snowflake.ID, object string, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, userID snowflake.ID, orgID snowflake.ID, object string, action string) error {
	if userID == 0 {
		return ErrInvalidActor
	}
	if orgID == 0 {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	role, err := s.roleForUser(ctx, orgID, userID)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("user:%s", userID.String())
	roleName := fmt.Sprintf("role:%s", strings.ToLower(role))
	domain := fmt.Sprintf("org:%s", orgID.String())
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) roleForUser(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM memberships
		 WHERE org_id = ? AND user_id = ?
		 LIMIT 1`,
		orgID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	crudObjects := []string{
		ObjectAccount,
		ObjectContact,
		ObjectLead,
		ObjectOpportunity,
		ObjectCase,
		ObjectBoard,
	}

	policies := [][]string{
		{"role:member", "*", ObjectCase, ActionCreate},
		{"role:member", "*", ObjectCase, ActionUpdate},
		{"role:member", "*", ObjectBoard, ActionBoardReorder},

		{"role:admin", "*", ObjectLead, ActionLeadConvert},
		{"role:admin", "*", ObjectCase, ActionCaseClose},
		{"role:admin", "*", ObjectBoard, ActionBoardCreate},
		{"role:admin", "*", ObjectBoard, ActionBoardReorder},
		{"role:admin", "*", ObjectMember, ActionMemberInvite},

		{"role:owner", "*", ObjectLead, ActionLeadConvert},
		{"role:owner", "*", ObjectCase, ActionCaseClose},
		{"role:owner", "*", ObjectBoard, ActionBoardCreate},
		{"role:owner", "*", ObjectBoard, ActionBoardReorder},
		{"role:owner", "*", ObjectMember, ActionMemberInvite},
	}

	for _, object := range crudObjects {
		policies = append(policies,
			[]string{"role:member", "*", object, ActionView},
			[]string{"role:admin", "*", object, ActionView},
			[]string{"role:admin", "*", object, ActionCreate},
			[]string{"role:admin", "*", object, ActionUpdate},
			[]string{"role:owner", "*", object, ActionView},
			[]string{"role:owner", "*", object, ActionCreate},
			[]string{"role:owner", "*", object, ActionUpdate},
			[]string{"role:owner", "*", object, ActionDelete},
		)
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy[0], policy[1], policy[2], policy[3])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2], policy[3]); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
