package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/account/domain"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
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
		log:   p.Log.Named("account.service"),
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

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	ownerID, err := parseOptionalID(req.OwnerUserID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	now := s.clock.Now()
	a := &domain.Account{
		ID:             s.genID.Generate().Int64(),
		OrgID:          orgID.Int64(),
		Name:           name,
		Industry:       trimPtr(req.Industry),
		Website:        trimPtr(req.Website),
		Phone:          trimPtr(req.Phone),
		BillingAddress: trimPtr(req.BillingAddress),
		OwnerUserID:    ownerID,
		Status:         domain.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Metadata != nil {
		a.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, a); err != nil {
		return nil, err
	}
	resp := toResponse(a)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	accountID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), accountID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.PageInfo, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, nil, domain.ErrInvalidOrganization
	}

	filter := domain.ListRequest{
		Name:       strings.TrimSpace(req.Name),
		Status:     strings.TrimSpace(req.Status),
		SortBy:     strings.TrimSpace(req.SortBy),
		OrderBy:    strings.TrimSpace(req.OrderBy),
		Pagination: req.Pagination,
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

	accountID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), accountID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Industry != nil {
		item.Industry = trimPtr(req.Industry)
	}
	if req.Website != nil {
		item.Website = trimPtr(req.Website)
	}
	if req.Phone != nil {
		item.Phone = trimPtr(req.Phone)
	}
	if req.BillingAddress != nil {
		item.BillingAddress = trimPtr(req.BillingAddress)
	}
	if req.OwnerUserID != nil {
		ownerID, err := parseOptionalID(req.OwnerUserID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		item.OwnerUserID = ownerID
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

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	accountID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), accountID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Status = domain.StatusArchived
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func toResponse(a *domain.Account) domain.Response {
	resp := domain.Response{
		ID:             snowflake.ID(a.ID).String(),
		OrganizationID: snowflake.ID(a.OrgID).String(),
		Name:           a.Name,
		Industry:       a.Industry,
		Website:        a.Website,
		Phone:          a.Phone,
		BillingAddress: a.BillingAddress,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.OwnerUserID != nil {
		owner := snowflake.ID(*a.OwnerUserID).String()
		resp.OwnerUserID = &owner
	}
	if len(a.Metadata) > 0 {
		resp.Metadata = map[string]any(a.Metadata)
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
