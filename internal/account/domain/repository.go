package domain

import (
	"context"

	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Account, error)
	List(ctx context.Context, db *gorm.DB, orgID int64, filter ListRequest) ([]Account, int64, error)
	Update(ctx context.Context, db *gorm.DB, account *Account) error
}

type ListRequest struct {
	Name       string
	Status     string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}
