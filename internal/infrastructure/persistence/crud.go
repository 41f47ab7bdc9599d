package persistence

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/erp/pymes/internal/domain/shared"
	"gorm.io/gorm"
)

// gormCRUD is the shared implementation behind the tenant entity
// repositories. Search is a LIKE over searchColumns; filter keys are
// accepted only when present in filterColumns. Update never writes the
// columns in preserved; those have dedicated atomic writers.
type gormCRUD[T any] struct {
	db            *gorm.DB
	searchColumns []string
	filterColumns map[string]string
	order         string
	preserved     []string
}

func newGormCRUD[T any](db *gorm.DB, order string, searchColumns []string, filterColumns map[string]string) gormCRUD[T] {
	return gormCRUD[T]{
		db:            db,
		searchColumns: searchColumns,
		filterColumns: filterColumns,
		order:         order,
	}
}

// FindByID finds a row by primary key
func (r *gormCRUD[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// List returns one page of rows and the total match count
func (r *gormCRUD[T]) List(ctx context.Context, filter shared.Filter) ([]T, int64, error) {
	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []T
	if err := r.scoped(ctx, filter).
		Order(r.order).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create inserts a new row
func (r *gormCRUD[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// Update writes every column of an existing row, zero values included,
// except created_at and the preserved columns
func (r *gormCRUD[T]) Update(ctx context.Context, entity *T) error {
	omit := append([]string{"created_at"}, r.preserved...)
	return r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit(omit...).
		Updates(entity).Error
}

// Delete removes a row by primary key
func (r *gormCRUD[T]) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *gormCRUD[T]) scoped(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(new(T))

	if filter.Search != "" && len(r.searchColumns) > 0 {
		pattern := "%" + filter.Search + "%"
		conds := make([]string, len(r.searchColumns))
		args := make([]any, len(r.searchColumns))
		for i, col := range r.searchColumns {
			conds[i] = col + " LIKE ?"
			args[i] = pattern
		}
		query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	for _, key := range slices.Sorted(maps.Keys(filter.Filters)) {
		col, ok := r.filterColumns[key]
		if !ok {
			continue
		}
		query = query.Where(col+" = ?", filter.Filters[key])
	}
	return query
}
