package pagination

import "gorm.io/gorm"

// Pagination binds standard list query params.
type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=25"`
}

const maxPageSize = 250

func (p Pagination) normalized() (page, size int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	size = p.PageSize
	if size < 1 {
		size = 25
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// Apply adds offset/limit to the statement.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	page, size := p.normalized()
	return stmt.Offset((page - 1) * size).Limit(size)
}

type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	page, size := p.normalized()
	return PageInfo{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		HasMore:    int64(page*size) < total,
	}
}
