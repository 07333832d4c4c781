package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Option mutates a gorm statement. Options compose left to right.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type optionFunc func(stmt *gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

type SortBy struct {
	Column string
	Desc   bool
}

// WithQuerySortBy builds a SortBy from raw query params, restricted to the
// allowed column set. Unknown columns fall back to created_at.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) SortBy {
	column := strings.TrimSpace(strings.ToLower(sortBy))
	if column == "" || !allowed[column] {
		column = "created_at"
	}
	desc := strings.EqualFold(strings.TrimSpace(orderBy), "desc")
	return SortBy{Column: column, Desc: desc}
}

func WithSortBy(sort SortBy) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		direction := "ASC"
		if sort.Desc {
			direction = "DESC"
		}
		return stmt.Order(fmt.Sprintf("%s %s", sort.Column, direction))
	})
}
