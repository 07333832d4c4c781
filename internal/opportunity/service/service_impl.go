package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/config"
	"github.com/seb-lewis/startupcrm/internal/opportunity/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Pipeline *config.PipelineConfigHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	genID    *snowflake.Node
	clock    clock.Clock
	pipeline *config.PipelineConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("opportunity.service"),
		repo:     p.Repo,
		genID:    p.GenID,
		clock:    p.Clock,
		pipeline: p.Pipeline,
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
	if req.AmountCents < 0 {
		return nil, domain.ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	stageName := strings.TrimSpace(req.Stage)
	if stageName == "" {
		stageName = s.pipeline.Get().OpportunityStages[0].Name
	}
	stage, ok := s.pipeline.FindStage(stageName)
	if !ok {
		return nil, domain.ErrInvalidStage
	}

	accountID, err := parseOptionalID(req.AccountID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	now := s.clock.Now()
	o := &domain.Opportunity{
		ID:          s.genID.Generate().Int64(),
		OrgID:       orgID.Int64(),
		AccountID:   accountID,
		Name:        name,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Stage:       stage.Name,
		Probability: stage.Probability,
		CloseDate:   req.CloseDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		o.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, o); err != nil {
		return nil, err
	}
	resp := s.toResponse(o)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	opportunityID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), opportunityID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuery) ([]domain.Response, *pagination.PageInfo, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, nil, domain.ErrInvalidOrganization
	}

	filter := domain.ListRequest{
		Stage:      strings.TrimSpace(req.Stage),
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
		resp = append(resp, s.toResponse(&items[i]))
	}
	pageInfo := pagination.BuildPageInfo(filter.Pagination, total)
	return resp, &pageInfo, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	opportunityID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), opportunityID.Int64())
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
	if req.AmountCents != nil {
		if *req.AmountCents < 0 {
			return nil, domain.ErrInvalidAmount
		}
		item.AmountCents = *req.AmountCents
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if len(currency) != 3 {
			return nil, domain.ErrInvalidCurrency
		}
		item.Currency = currency
	}
	if req.AccountID != nil {
		accountID, err := parseOptionalID(req.AccountID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		item.AccountID = accountID
	}
	if req.CloseDate != nil {
		item.CloseDate = req.CloseDate
	}
	if req.Probability != nil {
		if *req.Probability < 0 || *req.Probability > 100 {
			return nil, domain.ErrInvalidAmount
		}
		item.Probability = *req.Probability
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) MoveStage(ctx context.Context, id string, stageName string) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	opportunityID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	stage, ok := s.pipeline.FindStage(strings.TrimSpace(stageName))
	if !ok {
		return nil, domain.ErrInvalidStage
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), opportunityID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	// Deals in a won or lost stage stay there.
	if current, ok := s.pipeline.FindStage(item.Stage); ok && (current.Won || current.Lost) {
		return nil, domain.ErrClosedStage
	}

	item.Stage = stage.Name
	item.Probability = stage.Probability
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("opportunity stage moved",
		zap.String("opportunity_id", opportunityID.String()),
		zap.String("stage", stage.Name),
	)

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) toResponse(o *domain.Opportunity) domain.Response {
	resp := domain.Response{
		ID:             snowflake.ID(o.ID).String(),
		OrganizationID: snowflake.ID(o.OrgID).String(),
		Name:           o.Name,
		AmountCents:    o.AmountCents,
		Currency:       o.Currency,
		Stage:          o.Stage,
		Probability:    o.Probability,
		CloseDate:      o.CloseDate,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if stage, ok := s.pipeline.FindStage(o.Stage); ok {
		resp.Won = stage.Won
		resp.Lost = stage.Lost
	}
	if o.AccountID != nil {
		accountID := snowflake.ID(*o.AccountID).String()
		resp.AccountID = &accountID
	}
	if len(o.Metadata) > 0 {
		resp.Metadata = map[string]any(o.Metadata)
	}
	return resp
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
