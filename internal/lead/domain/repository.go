package domain

import (
	"context"

	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, lead *Lead) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Lead, error)
	List(ctx context.Context, db *gorm.DB, orgID int64, filter ListRequest) ([]Lead, int64, error)
	Update(ctx context.Context, db *gorm.DB, lead *Lead) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id int64) error
}

type ListRequest struct {
	Status     string
	Query      string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}
