package models

type Pagination struct {
	Page       int
	TotalPages int
}

// NewPagination clamps page and total to at least 1.
func NewPagination(page, totalPages int) Pagination {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, TotalPages: totalPages}
}

func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

func (p Pagination) PrevPage() int {
	if !p.HasPrev() {
		return p.Page
	}
	return p.Page - 1
}

func (p Pagination) NextPage() int {
	if !p.HasNext() {
		return p.Page
	}
	return p.Page + 1
}

// Multiple reports whether pagination controls are worth showing at all.
func (p Pagination) Multiple() bool {
	return p.TotalPages > 1
}
