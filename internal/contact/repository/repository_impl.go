package repository

import (
	"context"

	"github.com/seb-lewis/startupcrm/internal/contact/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, contact *domain.Contact) error {
	return db.WithContext(ctx).Create(contact).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Contact, error) {
	var c domain.Contact
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, account_id, first_name, last_name, email, phone, title, metadata, created_at, updated_at
		 FROM contacts WHERE org_id = ? AND id = ?`,
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

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ListRequest) ([]domain.Contact, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("org_id = ?", orgID)

	if filter.AccountID != 0 {
		stmt = stmt.Where("account_id = ?", filter.AccountID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		stmt = stmt.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"first_name": true,
		"last_name":  true,
	})).Apply(stmt)
	stmt = filter.Pagination.Apply(stmt)

	var items []domain.Contact
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, contact *domain.Contact) error {
	if contact == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE contacts
		 SET account_id = ?, first_name = ?, last_name = ?, email = ?, phone = ?, title = ?, metadata = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		contact.AccountID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Title,
		contact.Metadata,
		contact.UpdatedAt,
		contact.OrgID,
		contact.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id int64) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM contacts WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}
