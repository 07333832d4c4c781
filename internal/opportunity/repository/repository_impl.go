package repository

import (
	"context"

	"github.com/seb-lewis/startupcrm/internal/opportunity/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, opportunity *domain.Opportunity) error {
	return db.WithContext(ctx).Create(opportunity).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Opportunity, error) {
	var o domain.Opportunity
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, account_id, name, amount_cents, currency, stage, probability, close_date, metadata, created_at, updated_at
		 FROM opportunities WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ListRequest) ([]domain.Opportunity, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Opportunity{}).
		Where("org_id = ?", orgID)

	if filter.AccountID != 0 {
		stmt = stmt.Where("account_id = ?", filter.AccountID)
	}
	if filter.Stage != "" {
		stmt = stmt.Where("stage = ?", filter.Stage)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"name":         true,
		"amount_cents": true,
		"close_date":   true,
	})).Apply(stmt)
	stmt = filter.Pagination.Apply(stmt)

	var items []domain.Opportunity
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, opportunity *domain.Opportunity) error {
	if opportunity == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE opportunities
		 SET account_id = ?, name = ?, amount_cents = ?, currency = ?, stage = ?, probability = ?, close_date = ?, metadata = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		opportunity.AccountID,
		opportunity.Name,
		opportunity.AmountCents,
		opportunity.Currency,
		opportunity.Stage,
		opportunity.Probability,
		opportunity.CloseDate,
		opportunity.Metadata,
		opportunity.UpdatedAt,
		opportunity.OrgID,
		opportunity.ID,
	).Error
}
