package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	admindomain "github.com/seb-lewis/startupcrm/internal/admin/domain"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p Params) admindomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("admin.service"),
		clock: p.Clock,
	}
}

type userRow struct {
	ID          int64      `gorm:"column:id"`
	Email       string     `gorm:"column:email"`
	DisplayName string     `gorm:"column:display_name"`
	IsActive    bool       `gorm:"column:is_active"`
	IsAdmin     bool       `gorm:"column:is_admin"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	LastSeenAt  *time.Time `gorm:"column:last_seen_at"`
}

func (s *Service) ListUsers(ctx context.Context, req admindomain.ListUsersRequest) ([]admindomain.UserRow, *pagination.PageInfo, error) {
	stmt := s.db.WithContext(ctx).Table("users")
	if query := strings.TrimSpace(req.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		stmt = stmt.Where("LOWER(email) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var rows []userRow
	err := req.Pagination.Apply(stmt.
		Select("users.id, users.email, users.display_name, users.is_active, users.is_admin, users.created_at, s.last_seen_at").
		Joins(`LEFT JOIN (
			SELECT user_id, MAX(last_seen_at) AS last_seen_at
			FROM sessions WHERE revoked_at IS NULL GROUP BY user_id
		) s ON s.user_id = users.id`).
		Order("users.created_at ASC")).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	items := make([]admindomain.UserRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, admindomain.UserRow{
			ID:          snowflake.ID(row.ID).String(),
			Email:       row.Email,
			DisplayName: row.DisplayName,
			IsActive:    row.IsActive,
			IsAdmin:     row.IsAdmin,
			CreatedAt:   row.CreatedAt,
			LastSeenAt:  row.LastSeenAt,
		})
	}
	pageInfo := pagination.BuildPageInfo(req.Pagination, total)
	return items, &pageInfo, nil
}

func (s *Service) SetUserActive(ctx context.Context, userID string, active bool) (*admindomain.UserRow, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil {
		return nil, admindomain.ErrInvalidID
	}

	// An admin cannot lock themselves out.
	if identity, ok := authctx.FromContext(ctx); ok && identity.IsAuthenticated() {
		if !active && identity.User().ID == id {
			return nil, admindomain.ErrSelfDisable
		}
	}

	result := s.db.WithContext(ctx).Exec(
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active,
		s.clock.Now(),
		id.Int64(),
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, admindomain.ErrUserNotFound
	}

	if !active {
		// Deactivation revokes every live session so the user drops out
		// on their next request.
		now := s.clock.Now()
		if err := s.db.WithContext(ctx).Exec(
			`UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
			now,
			id.Int64(),
		).Error; err != nil {
			return nil, err
		}
	}

	var row userRow
	if err := s.db.WithContext(ctx).Raw(
		`SELECT id, email, display_name, is_active, is_admin, created_at, NULL AS last_seen_at
		 FROM users WHERE id = ?`,
		id.Int64(),
	).Scan(&row).Error; err != nil {
		return nil, err
	}

	s.log.Info("user active flag changed",
		zap.String("user_id", id.String()),
		zap.Bool("active", active),
	)

	return &admindomain.UserRow{
		ID:          snowflake.ID(row.ID).String(),
		Email:       row.Email,
		DisplayName: row.DisplayName,
		IsActive:    row.IsActive,
		IsAdmin:     row.IsAdmin,
		CreatedAt:   row.CreatedAt,
	}, nil
}

type organizationRow struct {
	ID          int64     `gorm:"column:id"`
	Name        string    `gorm:"column:name"`
	Slug        string    `gorm:"column:slug"`
	MemberCount int64     `gorm:"column:member_count"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (s *Service) ListOrganizations(ctx context.Context, req admindomain.ListOrganizationsRequest) ([]admindomain.OrganizationRow, *pagination.PageInfo, error) {
	stmt := s.db.WithContext(ctx).Table("organizations")
	if query := strings.TrimSpace(req.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", like, like)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var rows []organizationRow
	err := req.Pagination.Apply(stmt.
		Select(`organizations.id, organizations.name, organizations.slug, organizations.created_at,
			(SELECT COUNT(*) FROM memberships m WHERE m.org_id = organizations.id) AS member_count`).
		Order("organizations.created_at ASC")).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	items := make([]admindomain.OrganizationRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, admindomain.OrganizationRow{
			ID:          snowflake.ID(row.ID).String(),
			Name:        row.Name,
			Slug:        row.Slug,
			MemberCount: row.MemberCount,
			CreatedAt:   row.CreatedAt,
		})
	}
	pageInfo := pagination.BuildPageInfo(req.Pagination, total)
	return items, &pageInfo, nil
}
