package shared

import "context"

// Filter represents list query options shared by tenant repositories
type Filter struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]any
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		Filters:  make(map[string]any),
	}
}

// Offset returns the row offset for the filter page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size bounded to [1,100]
func (f Filter) Limit() int {
	switch {
	case f.PageSize < 1:
		return 20
	case f.PageSize > 100:
		return 100
	default:
		return f.PageSize
	}
}

// CRUDRepository is the basic contract of tenant entity repositories.
// Tenant tables use auto-increment integer keys.
type CRUDRepository[T any] interface {
	FindByID(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, filter Filter) ([]T, int64, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id int64) error
}
