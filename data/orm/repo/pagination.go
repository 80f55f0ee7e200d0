package repo

import (
	"context"
	"math"
	"sort"

	"sqlbean/data/orm"
	"sqlbean/data/orm/session"
)

const defaultPageSize = 20

// ListPage 分页查询
func (r *Repo[T]) ListPage(ctx context.Context, options *QueryOptions) (*PagedResult[T], error) {
	if options == nil {
		options = &QueryOptions{}
	}
	page, size := options.Page, options.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}

	where, args := r.filterClause(options.Filters)
	total, err := r.session.Count(ctx, r.entityType(), where, args...)
	if err != nil {
		return nil, err
	}

	opts := []orm.QueryOption{
		orm.WithWhere(where, args...),
		orm.WithLimit(size),
		orm.WithOffset((page - 1) * size),
	}
	opts = append(opts, r.sortOptions(options.Sorts)...)

	data, err := session.Find[T](ctx, r.session, opts...)
	if err != nil {
		return nil, err
	}

	return &PagedResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// sortOptions 按属性名排序；未指定时按标识升序，保证分页稳定
func (r *Repo[T]) sortOptions(sorts map[string]SortDirection) []orm.QueryOption {
	fields := make([]string, 0, len(sorts))
	for f, dir := range sorts {
		if r.isAllowedField(f) && dir.IsValid() {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)

	opts := make([]orm.QueryOption, 0, len(fields)+1)
	for _, f := range fields {
		opts = append(opts, orm.WithOrderBy(f, sorts[f] == DESC))
	}
	if len(opts) == 0 && r.mapping.Identity != nil {
		opts = append(opts, orm.WithOrderBy(r.mapping.Identity.Property.Name, false))
	}
	return opts
}
