package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/contact/domain"
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
		log:   p.Log.Named("contact.service"),
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

	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, domain.ErrInvalidName
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	accountID, err := parseOptionalID(req.AccountID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	now := s.clock.Now()
	c := &domain.Contact{
		ID:        s.genID.Generate().Int64(),
		OrgID:     orgID.Int64(),
		AccountID: accountID,
		FirstName: firstName,
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Phone:     trimPtr(req.Phone),
		Title:     trimPtr(req.Title),
		CreatedAt: now,
		UpdatedAt: now,
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

	contactID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), contactID.Int64())
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
		Query:      strings.TrimSpace(req.Query),
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

	contactID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), contactID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.FirstName != nil {
		firstName := strings.TrimSpace(*req.FirstName)
		if firstName == "" {
			return nil, domain.ErrInvalidName
		}
		item.FirstName = firstName
	}
	if req.LastName != nil {
		item.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		email, err := normalizeEmail(req.Email)
		if err != nil {
			return nil, err
		}
		item.Email = email
	}
	if req.Phone != nil {
		item.Phone = trimPtr(req.Phone)
	}
	if req.Title != nil {
		item.Title = trimPtr(req.Title)
	}
	if req.AccountID != nil {
		accountID, err := parseOptionalID(req.AccountID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		item.AccountID = accountID
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

func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	contactID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), contactID.Int64())
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, orgID.Int64(), contactID.Int64())
}

func toResponse(c *domain.Contact) domain.Response {
	resp := domain.Response{
		ID:             snowflake.ID(c.ID).String(),
		OrganizationID: snowflake.ID(c.OrgID).String(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		Title:          c.Title,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.AccountID != nil {
		accountID := snowflake.ID(*c.AccountID).String()
		resp.AccountID = &accountID
	}
	if len(c.Metadata) > 0 {
		resp.Metadata = map[string]any(c.Metadata)
	}
	return resp
}

func normalizeEmail(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(strings.ToLower(*value))
	if trimmed == "" {
		return nil, nil
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	return &trimmed, nil
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
