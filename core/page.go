package core

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Pagination is the offset-based paging requested by a client.
type Pagination struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

// Clamp normalizes out-of-range values; page_size is capped at MaxPageSize.
func (p *Pagination) Clamp() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is the uniform list response envelope. Total reflects the full
// filtered count independent of the requested page.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
}

// Paginate slices items in memory; repositories that cannot push paging into
// the store (e.g. the in-memory one) use it after filtering.
func Paginate[T any](items []T, p Pagination) ([]T, int) {
	total := len(items)
	start := p.Offset()
	if start >= total {
		return []T{}, total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return items[start:end], total
}
