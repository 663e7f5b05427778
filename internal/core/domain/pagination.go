package domain

// Pagination describes one page of an ordered collection.
type Pagination struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	Offset      int   `json:"offset"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// InRange reports whether the current page holds any items.
func (p Pagination) InRange() bool {
	return p.CurrentPage >= 1 && p.CurrentPage <= p.TotalPages
}

// Paginate computes the metadata for a 1-based page of size offset over
// total items, and the number of items to skip. Callers validate that page
// and offset are positive. Skip is zero for a page past the end; check
// InRange before reading from the store.
func Paginate(total int64, page, offset int) (Pagination, int) {
	size := int64(offset)
	pages := total / size
	if total%size != 0 {
		pages++
	}

	p := Pagination{
		TotalItems:  total,
		TotalPages:  int(pages),
		CurrentPage: page,
		Offset:      offset,
		HasNext:     int64(page) < pages,
		HasPrevious: page > 1,
	}
	if !p.InRange() {
		return p, 0
	}
	// (page-1)*offset < total here, so it cannot overflow.
	return p, (page - 1) * offset
}
