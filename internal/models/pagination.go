package models

// Fixed page sizes per listing.
const (
	DepartmentPageSize = 10
	CoursePageSize     = 10
	InstructorPageSize = 10
	TraineePageSize    = 20
	RosterPageSize     = 20
)

// Pagination describes the slice returned by a listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NormalizePage clamps a requested page number to 1-based.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// PageOffset returns the row offset for the given page and size.
func PageOffset(page, size int) int {
	return (NormalizePage(page) - 1) * size
}

// NewPagination derives page metadata from a filtered total count.
func NewPagination(page, size, total int) *Pagination {
	page = NormalizePage(page)
	pages := 0
	if size > 0 && total > 0 {
		pages = (total + size - 1) / size
	}
	return &Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: pages}
}

// LookupItem is a value/text pair feeding selection dropdowns.
type LookupItem struct {
	Value string `db:"value" json:"value"`
	Text  string `db:"text" json:"text"`
}
