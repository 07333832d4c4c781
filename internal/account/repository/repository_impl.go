package repository

import (
	"context"

	"github.com/seb-lewis/startupcrm/internal/account/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, industry, website, phone, billing_address, owner_user_id, status, metadata, created_at, updated_at
		 FROM accounts WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == 0 {
		return nil, nil
	}
	return &a, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ListRequest) ([]domain.Account, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("org_id = ?", orgID)

	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	})).Apply(stmt)
	stmt = filter.Pagination.Apply(stmt)

	var items []domain.Account
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	if account == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE accounts
		 SET name = ?, industry = ?, website = ?, phone = ?, billing_address = ?, owner_user_id = ?, status = ?, metadata = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		account.Name,
		account.Industry,
		account.Website,
		account.Phone,
		account.BillingAddress,
		account.OwnerUserID,
		account.Status,
		account.Metadata,
		account.UpdatedAt,
		account.OrgID,
		account.ID,
	).Error
}
