package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/crmcase/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("case.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, domain.ErrInvalidSubject
	}

	priority := strings.ToUpper(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !domain.IsValidPriority(priority) {
		return nil, domain.ErrInvalidPriority
	}

	accountID, err := parseOptionalID(req.AccountID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	contactID, err := parseOptionalID(req.ContactID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	assigneeID, err := parseOptionalID(req.AssigneeUserID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	now := s.clock.Now()
	c := &domain.Case{
		ID:             s.genID.Generate().Int64(),
		OrgID:          orgID.Int64(),
		AccountID:      accountID,
		ContactID:      contactID,
		Subject:        subject,
		Description:    trimPtr(req.Description),
		Priority:       priority,
		Status:         domain.StatusOpen,
		AssigneeUserID: assigneeID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Metadata != nil {
		c.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, c); err != nil {
		return nil, err
	}
	resp := toResponse(c)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	caseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), caseID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuery) ([]domain.Response, *pagination.PageInfo, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, nil, domain.ErrInvalidOrganization
	}

	filter := domain.ListRequest{
		Status:     strings.ToUpper(strings.TrimSpace(req.Status)),
		Priority:   strings.ToUpper(strings.TrimSpace(req.Priority)),
		SortBy:     strings.TrimSpace(req.SortBy),
		OrderBy:    strings.TrimSpace(req.OrderBy),
		Pagination: req.Pagination,
	}
	if accountID := strings.TrimSpace(req.AccountID); accountID != "" {
		parsed, err := snowflake.ParseString(accountID)
		if err != nil {
			return nil, nil, domain.ErrInvalidID
		}
		filter.AccountID = parsed.Int64()
	}

	items, total, err := s.repo.List(ctx, s.db, orgID.Int64(), filter)
	if err != nil {
		return nil, nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	pageInfo := pagination.BuildPageInfo(filter.Pagination, total)
	return resp, &pageInfo, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	caseID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), caseID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.Status == domain.StatusClosed {
		return nil, domain.ErrAlreadyClosed
	}

	if req.Subject != nil {
		subject := strings.TrimSpace(*req.Subject)
		if subject == "" {
			return nil, domain.ErrInvalidSubject
		}
		item.Subject = subject
	}
	if req.Description != nil {
		item.Description = trimPtr(req.Description)
	}
	if req.Priority != nil {
		priority := strings.ToUpper(strings.TrimSpace(*req.Priority))
		if !domain.IsValidPriority(priority) {
			return nil, domain.ErrInvalidPriority
		}
		item.Priority = priority
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if status != domain.StatusOpen && status != domain.StatusPending {
			return nil, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	if req.AccountID != nil {
		accountID, err := parseOptionalID(req.AccountID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		item.AccountID = accountID
	}
	if req.ContactID != nil {
		contactID, err := parseOptionalID(req.ContactID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		item.ContactID = contactID
	}
	if req.AssigneeUserID != nil {
		assigneeID, err := parseOptionalID(req.AssigneeUserID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		item.AssigneeUserID = assigneeID
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Close(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	caseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), caseID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.Status == domain.StatusClosed {
		return nil, domain.ErrAlreadyClosed
	}

	now := s.clock.Now()
	item.Status = domain.StatusClosed
	item.ClosedAt = &now
	item.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func toResponse(c *domain.Case) domain.Response {
	resp := domain.Response{
		ID:             snowflake.ID(c.ID).String(),
		OrganizationID: snowflake.ID(c.OrgID).String(),
		Subject:        c.Subject,
		Description:    c.Description,
		Priority:       c.Priority,
		Status:         c.Status,
		ClosedAt:       c.ClosedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.AccountID != nil {
		id := snowflake.ID(*c.AccountID).String()
		resp.AccountID = &id
	}
	if c.ContactID != nil {
		id := snowflake.ID(*c.ContactID).String()
		resp.ContactID = &id
	}
	if c.AssigneeUserID != nil {
		id := snowflake.ID(*c.AssigneeUserID).String()
		resp.AssigneeUserID = &id
	}
	if len(c.Metadata) > 0 {
		resp.Metadata = map[string]any(c.Metadata)
	}
	return resp
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseOptionalID(value *string) (*int64, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	parsed := id.Int64()
	return &parsed, nil
}
