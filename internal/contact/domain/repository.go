package domain

import (
	"context"

	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, contact *Contact) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Contact, error)
	List(ctx context.Context, db *gorm.DB, orgID int64, filter ListRequest) ([]Contact, int64, error)
	Update(ctx context.Context, db *gorm.DB, contact *Contact) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id int64) error
}

type ListRequest struct {
	AccountID  int64
	Query      string
	SortBy     string
	OrderBy    string
	Pagination pagination.Pagination
}
