package repo

import (
	"context"
	"sort"
	"strings"

	"sqlbean/data/orm"
	"sqlbean/data/orm/session"
)

// Get 按标识获取，未命中返回 NOT_FOUND 错误
func (r *Repo[T]) Get(ctx context.Context, id any) (*T, error) {
	return session.FindByID[T](ctx, r.session, id)
}

// Exists 标识是否存在
func (r *Repo[T]) Exists(ctx context.Context, id any) (bool, error) {
	if r.mapping.Identity == nil {
		return false, orm.NewMappingError(r.mapping.Type.String() + " has no identity column")
	}
	n, err := r.session.Count(ctx, r.entityType(), r.mapping.Identity.Property.Name+" = ?", id)
	return n > 0, err
}

// List 偏移/限制列表，按标识排序（没有标识时保持存储顺序）
func (r *Repo[T]) List(ctx context.Context, offset, limit int) ([]*T, error) {
	opts := []orm.QueryOption{orm.WithOffset(offset), orm.WithLimit(limit)}
	if r.mapping.Identity != nil {
		opts = append(opts, orm.WithOrderBy(r.mapping.Identity.Property.Name, false))
	}
	return session.Find[T](ctx, r.session, opts...)
}

// ListAll 全部记录
func (r *Repo[T]) ListAll(ctx context.Context) ([]*T, error) {
	return r.List(ctx, 0, 0)
}

// Count 统计总数
func (r *Repo[T]) Count(ctx context.Context) (int64, error) {
	return r.session.Count(ctx, r.entityType(), "")
}

// Find 按过滤条件查询，见 QueryOptions.Filters
func (r *Repo[T]) Find(ctx context.Context, filters map[string]string) ([]*T, error) {
	where, args := r.filterClause(filters)
	return session.Find[T](ctx, r.session, orm.WithWhere(where, args...))
}

// CountWithFilters 按过滤条件统计
func (r *Repo[T]) CountWithFilters(ctx context.Context, filters map[string]string) (int64, error) {
	where, args := r.filterClause(filters)
	return r.session.Count(ctx, r.entityType(), where, args...)
}

// filterClause 把过滤条件转为以属性名书写的 WHERE 片段。
// 键按字典序处理以保证语句稳定；不在映射中的属性被忽略。
func (r *Repo[T]) filterClause(filters map[string]string) (string, []any) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		conds []string
		args  []any
	)
	for _, key := range keys {
		value := filters[key]
		field, op := splitFilterKey(key)
		if !r.isAllowedField(field) {
			continue
		}
		switch op {
		case "like":
			conds = append(conds, field+" LIKE ?")
			args = append(args, "%"+value+"%")
		case "in", "not_in":
			parts := strings.Split(value, ",")
			marks := strings.TrimSuffix(strings.Repeat("?, ", len(parts)), ", ")
			kw := " IN ("
			if op == "not_in" {
				kw = " NOT IN ("
			}
			conds = append(conds, field+kw+marks+")")
			for _, p := range parts {
				args = append(args, strings.TrimSpace(p))
			}
		default:
			conds = append(conds, field+" "+op+" ?")
			args = append(args, value)
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return strings.Join(conds, " AND "), args
}

var filterSuffixes = []struct {
	suffix string
	op     string
}{
	{"_not_in", "not_in"},
	{"_in", "in"},
	{"_like", "like"},
	{"_gte", ">="},
	{"_gt", ">"},
	{"_lte", "<="},
	{"_lt", "<"},
	{"_ne", "!="},
}

func splitFilterKey(key string) (string, string) {
	for _, s := range filterSuffixes {
		if strings.HasSuffix(key, s.suffix) {
			return strings.TrimSuffix(key, s.suffix), s.op
		}
	}
	return key, "="
}
