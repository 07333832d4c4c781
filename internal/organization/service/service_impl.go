package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/seb-lewis/startupcrm/internal/organization/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	log   *zap.Logger
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(log *zap.Logger, db *gorm.DB, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("organization.service"),
		db:    db,
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	orgID := s.genID.Generate()
	org := domain.Organization{
		ID:        orgID,
		Name:      name,
		Slug:      slug.Make(name) + "-" + orgID.String(),
		CreatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}

		member := domain.Membership{
			ID:        s.genID.Generate(),
			OrgID:     orgID,
			UserID:    userID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}

		return repo.AddMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", orgID.String()),
		zap.String("user_id", userID.String()),
	)

	return &domain.OrganizationResponse{
		ID:   orgID.String(),
		Name: name,
		Slug: org.Slug,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.OrganizationResponse, error) {
	if id == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrInvalidOrganization
	}

	return &domain.OrganizationResponse{
		ID:   org.ID.String(),
		Name: org.Name,
		Slug: org.Slug,
	}, nil
}

func (s *service) ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]domain.OrganizationListResponseItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.ListOrganizationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.OrganizationListResponseItem, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.OrganizationListResponseItem{
			ID:        item.ID.String(),
			Name:      item.Name,
			Slug:      item.Slug,
			Role:      item.Role,
			CreatedAt: item.CreatedAt,
		})
	}

	return resp, nil
}

func (s *service) ResolveMembership(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (*domain.Membership, error) {
	if orgID == 0 || userID == 0 {
		return nil, nil
	}
	return s.repo.GetMembership(ctx, orgID, userID)
}

func (s *service) InviteMembers(ctx context.Context, userID snowflake.ID, orgID snowflake.ID, invites []domain.InviteRequest) error {
	member, err := s.repo.GetMembership(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member == nil || (member.Role != domain.RoleOwner && member.Role != domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	now := time.Now().UTC()
	rows := make([]domain.Invite, 0, len(invites))
	for _, invite := range invites {
		email := strings.ToLower(strings.TrimSpace(invite.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.ErrInvalidEmail
		}
		if !domain.IsValidRole(invite.Role) || invite.Role == domain.RoleOwner {
			return domain.ErrInvalidRole
		}
		rows = append(rows, domain.Invite{
			ID:        s.genID.Generate(),
			OrgID:     orgID,
			Email:     email,
			Role:      invite.Role,
			Status:    domain.InviteStatusPending,
			InvitedBy: userID,
			CreatedAt: now,
		})
	}

	return s.repo.CreateInvites(ctx, rows)
}

func (s *service) AcceptInvite(ctx context.Context, userID snowflake.ID, userEmail string, inviteID snowflake.ID) error {
	invite, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.Status != domain.InviteStatusPending {
		return domain.ErrInviteNotFound
	}
	if !strings.EqualFold(invite.Email, strings.TrimSpace(userEmail)) {
		return domain.ErrForbidden
	}

	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.GetMembership(ctx, invite.OrgID, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			member := domain.Membership{
				ID:        s.genID.Generate(),
				OrgID:     invite.OrgID,
				UserID:    userID,
				Role:      invite.Role,
				CreatedAt: now,
			}
			if err := repo.AddMember(ctx, member); err != nil {
				return err
			}
		}

		invite.Status = domain.InviteStatusAccepted
		return repo.UpdateInvite(ctx, *invite)
	})
}
