package service

import "github.com/edudesk/edudesk-api/internal/models"

// paginationFor clamps page and size the same way the repositories do,
// so the metadata matches the rows actually returned.
func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func emptyPagination(page, size int) *models.Pagination {
	return paginationFor(page, size, 0)
}
