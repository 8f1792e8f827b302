package paging

import "strconv"

// PageSize is fixed for every listing view.
const PageSize = 10

type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Clamp resolves a 1-based page index against a record count. Indexes
// below 1 resolve to the first page; indexes past the end resolve to
// the last page, so a stale link still renders content instead of
// erroring.
func Clamp(total int64, page int) (limit, offset uint64, meta Meta) {
	pages := int((total + PageSize - 1) / PageSize)
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	meta = Meta{
		Page:       page,
		PageSize:   PageSize,
		TotalItems: total,
		TotalPages: pages,
	}
	return PageSize, uint64(page-1) * PageSize, meta
}

// ParsePage reads a ?page= query value. Absent or garbage input means
// page 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
