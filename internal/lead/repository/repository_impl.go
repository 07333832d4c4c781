package repository

import (
	"context"

	"github.com/seb-lewis/startupcrm/internal/lead/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, lead *domain.Lead) error {
	return db.WithContext(ctx).Create(lead).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Lead, error) {
	var l domain.Lead
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, first_name, last_name, company, email, phone, status, source,
		        converted_at, converted_account_id, converted_contact_id, converted_opportunity_id,
		        metadata, created_at, updated_at
		 FROM leads WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&l).Error
	if err != nil {
		return nil, err
	}
	if l.ID == 0 {
		return nil, nil
	}
	return &l, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ListRequest) ([]domain.Lead, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("org_id = ?", orgID)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		stmt = stmt.Where("first_name LIKE ? OR last_name LIKE ? OR company LIKE ? OR email LIKE ?", like, like, like, like)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"first_name": true,
		"company":    true,
		"status":     true,
	})).Apply(stmt)
	stmt = filter.Pagination.Apply(stmt)

	var items []domain.Lead
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, lead *domain.Lead) error {
	if lead == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE leads
		 SET first_name = ?, last_name = ?, company = ?, email = ?, phone = ?, status = ?, source = ?,
		     converted_at = ?, converted_account_id = ?, converted_contact_id = ?, converted_opportunity_id = ?,
		     metadata = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		lead.FirstName,
		lead.LastName,
		lead.Company,
		lead.Email,
		lead.Phone,
		lead.Status,
		lead.Source,
		lead.ConvertedAt,
		lead.ConvertedAccountID,
		lead.ConvertedContactID,
		lead.ConvertedOpportunityID,
		lead.Metadata,
		lead.UpdatedAt,
		lead.OrgID,
		lead.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id int64) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM leads WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}
