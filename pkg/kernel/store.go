package kernel

// Paginated is a generic container for one page of records plus the
// pagination metadata the API exposes.
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPaginated creates a paginated result with calculated fields
func NewPaginated[T any](data []T, page, limit, total int) Paginated[T] {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit // Ceiling division
	}

	if data == nil {
		data = []T{}
	}

	return Paginated[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}
}

// HasNext returns whether there are more pages after the current one
func (p Paginated[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PaginationOptions holds options for pagination queries
type PaginationOptions struct {
	Page  int
	Limit int
}

// Normalize clamps the options to sane bounds.
func (o PaginationOptions) Normalize() PaginationOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	return o
}

// Offset returns the SQL offset for the normalized options.
func (o PaginationOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}
