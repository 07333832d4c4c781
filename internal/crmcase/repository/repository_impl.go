package repository

import (
	"context"

	"github.com/seb-lewis/startupcrm/internal/crmcase/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, c *domain.Case) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Case, error) {
	var c domain.Case
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, account_id, contact_id, subject, description, priority, status, assignee_user_id, closed_at, metadata, created_at, updated_at
		 FROM cases WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ListRequest) ([]domain.Case, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Case{}).
		Where("org_id = ?", orgID)

	if filter.AccountID != 0 {
		stmt = stmt.Where("account_id = ?", filter.AccountID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		stmt = stmt.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"priority":   true,
		"status":     true,
	})).Apply(stmt)
	stmt = filter.Pagination.Apply(stmt)

	var items []domain.Case
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *domain.Case) error {
	if c == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE cases
		 SET account_id = ?, contact_id = ?, subject = ?, description = ?, priority = ?, status = ?, assignee_user_id = ?, closed_at = ?, metadata = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		c.AccountID,
		c.ContactID,
		c.Subject,
		c.Description,
		c.Priority,
		c.Status,
		c.AssigneeUserID,
		c.ClosedAt,
		c.Metadata,
		c.UpdatedAt,
		c.OrgID,
		c.ID,
	).Error
}
