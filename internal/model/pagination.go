package model

const (
	// DefaultPageSize is used when the caller does not supply per_page.
	DefaultPageSize = 20
	// MaxPageSize is the server-side cap on per_page.
	MaxPageSize = 100
)

// PageParams are caller-supplied pagination inputs, 1-indexed.
type PageParams struct {
	Page    int
	PerPage int
}

// Normalize clamps page to >= 1 and per-page to [1, MaxPageSize]. A zero or
// negative per-page falls back to the default.
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPageSize
	}
	if p.PerPage > MaxPageSize {
		p.PerPage = MaxPageSize
	}
	return p
}

// Offset returns the number of records to skip for this page.
func (p PageParams) Offset() int64 {
	return int64(p.Page-1) * int64(p.PerPage)
}

// Pagination describes one page of a listing. Out-of-range pages yield an
// empty page, not an error.
type Pagination struct {
	Page    int
	PerPage int
	Total   int64
	Pages   int
	HasPrev bool
	HasNext bool
}

// NewPagination computes page metadata from normalized params and the total
// record count: pages = ceil(total/perPage).
func NewPagination(p PageParams, total int64) Pagination {
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	return Pagination{
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   total,
		Pages:   pages,
		HasPrev: p.Page > 1,
		HasNext: p.Page < pages,
	}
}
