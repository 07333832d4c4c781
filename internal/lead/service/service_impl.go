package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/seb-lewis/startupcrm/internal/account/domain"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/config"
	contactdomain "github.com/seb-lewis/startupcrm/internal/contact/domain"
	"github.com/seb-lewis/startupcrm/internal/lead/domain"
	opportunitydomain "github.com/seb-lewis/startupcrm/internal/opportunity/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Repo            domain.Repository
	AccountRepo     accountdomain.Repository
	ContactRepo     contactdomain.Repository
	OpportunityRepo opportunitydomain.Repository
	Pipeline        *config.PipelineConfigHolder
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	repo            domain.Repository
	accountRepo     accountdomain.Repository
	contactRepo     contactdomain.Repository
	opportunityRepo opportunitydomain.Repository
	genID           *snowflake.Node
	clock           clock.Clock
	pipeline        *config.PipelineConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("lead.service"),
		repo:            p.Repo,
		accountRepo:     p.AccountRepo,
		contactRepo:     p.ContactRepo,
		opportunityRepo: p.OpportunityRepo,
		genID:           p.GenID,
		clock:           p.Clock,
		pipeline:        p.Pipeline,
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

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = s.pipeline.Get().LeadStatuses[0]
	}
	if !s.pipeline.IsLeadStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	l := &domain.Lead{
		ID:        s.genID.Generate().Int64(),
		OrgID:     orgID.Int64(),
		FirstName: firstName,
		LastName:  strings.TrimSpace(req.LastName),
		Company:   trimPtr(req.Company),
		Email:     email,
		Phone:     trimPtr(req.Phone),
		Status:    status,
		Source:    trimPtr(req.Source),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Metadata != nil {
		l.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, l); err != nil {
		return nil, err
	}
	resp := toResponse(l)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	leadID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), leadID.Int64())
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
		Status:     strings.TrimSpace(req.Status),
		Query:      strings.TrimSpace(req.Query),
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

	leadID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), leadID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.ConvertedAt != nil {
		return nil, domain.ErrAlreadyConverted
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
	if req.Company != nil {
		item.Company = trimPtr(req.Company)
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
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !s.pipeline.IsLeadStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	if req.Source != nil {
		item.Source = trimPtr(req.Source)
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

	leadID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), leadID.Int64())
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, orgID.Int64(), leadID.Int64())
}

func (s *Service) Convert(ctx context.Context, req domain.ConvertRequest) (*domain.ConvertResult, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	leadID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	lead, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), leadID.Int64())
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	if lead.ConvertedAt != nil {
		return nil, domain.ErrAlreadyConverted
	}

	accountName := strings.TrimSpace(ptrToString(lead.Company))
	if accountName == "" {
		accountName = strings.TrimSpace(lead.FirstName + " " + lead.LastName)
	}
	opportunityName := strings.TrimSpace(req.OpportunityName)
	if opportunityName == "" {
		opportunityName = accountName
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	openingStage := s.pipeline.Get().OpportunityStages[0]
	now := s.clock.Now()

	account := &accountdomain.Account{
		ID:        s.genID.Generate().Int64(),
		OrgID:     orgID.Int64(),
		Name:      accountName,
		Phone:     lead.Phone,
		Status:    accountdomain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	contact := &contactdomain.Contact{
		ID:        s.genID.Generate().Int64(),
		OrgID:     orgID.Int64(),
		AccountID: &account.ID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	opportunity := &opportunitydomain.Opportunity{
		ID:          s.genID.Generate().Int64(),
		OrgID:       orgID.Int64(),
		AccountID:   &account.ID,
		Name:        opportunityName,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Stage:       openingStage.Name,
		Probability: openingStage.Probability,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}
		if err := s.contactRepo.Create(ctx, tx, contact); err != nil {
			return err
		}
		if err := s.opportunityRepo.Create(ctx, tx, opportunity); err != nil {
			return err
		}

		lead.ConvertedAt = &now
		lead.ConvertedAccountID = &account.ID
		lead.ConvertedContactID = &contact.ID
		lead.ConvertedOpportunityID = &opportunity.ID
		lead.UpdatedAt = now
		return s.repo.Update(ctx, tx, lead)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("lead converted",
		zap.String("lead_id", leadID.String()),
		zap.String("account_id", snowflake.ID(account.ID).String()),
	)

	return &domain.ConvertResult{
		Lead:          toResponse(lead),
		AccountID:     snowflake.ID(account.ID).String(),
		ContactID:     snowflake.ID(contact.ID).String(),
		OpportunityID: snowflake.ID(opportunity.ID).String(),
	}, nil
}

func toResponse(l *domain.Lead) domain.Response {
	resp := domain.Response{
		ID:             snowflake.ID(l.ID).String(),
		OrganizationID: snowflake.ID(l.OrgID).String(),
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		Company:        l.Company,
		Email:          l.Email,
		Phone:          l.Phone,
		Status:         l.Status,
		Source:         l.Source,
		ConvertedAt:    l.ConvertedAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	if l.ConvertedAccountID != nil {
		id := snowflake.ID(*l.ConvertedAccountID).String()
		resp.ConvertedAccountID = &id
	}
	if l.ConvertedContactID != nil {
		id := snowflake.ID(*l.ConvertedContactID).String()
		resp.ConvertedContactID = &id
	}
	if l.ConvertedOpportunityID != nil {
		id := snowflake.ID(*l.ConvertedOpportunityID).String()
		resp.ConvertedOpportunityID = &id
	}
	if len(l.Metadata) > 0 {
		resp.Metadata = map[string]any(l.Metadata)
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

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
