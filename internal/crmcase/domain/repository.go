package domain

import (
	"context"

	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, c *Case) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Case, error)
	List(ctx context.Context, db *gorm.DB, orgID int64, filter ListRequest) ([]Case, int64, error)
	Update(ctx context.Context, db *gorm.DB, c *Case) error
}

type ListRequest struct {
	AccountID  int64
	Status     string
	Priority   string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}
