package persistence

import (
	"fmt"

	"github.com/schoolms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyFilter applies ordering and pagination from a shared filter.
// Pagination is applied only when both page and page size are positive;
// a PageSize of -1 returns the full result set.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyOrdering(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// applyOrdering applies the filter's ordering, defaulting to newest first.
func applyOrdering(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir != "asc" && orderDir != "desc" {
		orderDir = "desc"
	}
	return query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
}
