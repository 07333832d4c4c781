package domain

import (
	"context"

	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, opportunity *Opportunity) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Opportunity, error)
	List(ctx context.Context, db *gorm.DB, orgID int64, filter ListRequest) ([]Opportunity, int64, error)
	Update(ctx context.Context, db *gorm.DB, opportunity *Opportunity) error
}

type ListRequest struct {
	AccountID  int64
	Stage      string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}
