package orm

import (
	"strconv"
	"strings"
)

// Query 规范化查询的全部可选片段。
//
// 片段中可以使用属性名，执行前逐个经过 ForwardMapColumnNames 改写；空字符串表示不设置。
// Args 只对应 Where 中的 ? 占位符。
type Query struct {
	Distinct bool
	Where    string
	Args     []any
	GroupBy  string
	Having   string
	OrderBy  string
	Limit    string
}

// Condition 查询条件，Expr 使用占位符 ?
type Condition struct {
	Expr string
	Args []any
}

// OrderBy 排序项，Column 可以是属性名
type OrderBy struct {
	Column string
	Desc   bool
}

// QueryOptions 由 QueryOption 累积，最终折叠为 Query
type QueryOptions struct {
	Distinct bool
	Where    []Condition
	GroupBy  []string
	Having   string
	OrderBy  []OrderBy
	Limit    int
	Offset   int
}

// QueryOption 用于配置 QueryOptions
type QueryOption func(*QueryOptions)

// WithDistinct 去重
func WithDistinct() QueryOption {
	return func(opts *QueryOptions) {
		opts.Distinct = true
	}
}

// WithWhere 追加查询条件，多个条件以 AND 连接
func WithWhere(expr string, args ...any) QueryOption {
	return func(opts *QueryOptions) {
		if expr == "" {
			return
		}
		opts.Where = append(opts.Where, Condition{Expr: expr, Args: args})
	}
}

// WithGroupBy 追加分组字段
func WithGroupBy(columns ...string) QueryOption {
	return func(opts *QueryOptions) {
		opts.GroupBy = append(opts.GroupBy, columns...)
	}
}

// WithHaving 设置分组过滤
func WithHaving(expr string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Having = expr
	}
}

// WithOrderBy 追加排序
func WithOrderBy(column string, desc bool) QueryOption {
	return func(opts *QueryOptions) {
		if column == "" {
			return
		}
		opts.OrderBy = append(opts.OrderBy, OrderBy{Column: column, Desc: desc})
	}
}

// WithLimit 设置查询条数上限
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		if limit > 0 {
			opts.Limit = limit
		}
	}
}

// WithOffset 设置查询偏移
func WithOffset(offset int) QueryOption {
	return func(opts *QueryOptions) {
		if offset > 0 {
			opts.Offset = offset
		}
	}
}

// CollectQueryOptions 聚合 QueryOption
func CollectQueryOptions(options ...QueryOption) QueryOptions {
	var opts QueryOptions
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	return opts
}

// BuildQuery 把选项折叠为 Query
func BuildQuery(options ...QueryOption) Query {
	opts := CollectQueryOptions(options...)
	q := Query{Distinct: opts.Distinct, Having: opts.Having}

	switch len(opts.Where) {
	case 0:
	case 1:
		q.Where = opts.Where[0].Expr
		q.Args = opts.Where[0].Args
	default:
		exprs := make([]string, len(opts.Where))
		for i, c := range opts.Where {
			exprs[i] = "(" + c.Expr + ")"
			q.Args = append(q.Args, c.Args...)
		}
		q.Where = strings.Join(exprs, " AND ")
	}

	q.GroupBy = strings.Join(opts.GroupBy, ", ")

	orders := make([]string, len(opts.OrderBy))
	for i, o := range opts.OrderBy {
		orders[i] = o.Column
		if o.Desc {
			orders[i] += " DESC"
		}
	}
	q.OrderBy = strings.Join(orders, ", ")

	switch {
	case opts.Limit > 0 && opts.Offset > 0:
		q.Limit = strconv.Itoa(opts.Limit) + " OFFSET " + strconv.Itoa(opts.Offset)
	case opts.Limit > 0:
		q.Limit = strconv.Itoa(opts.Limit)
	case opts.Offset > 0:
		// SQLite 的 OFFSET 必须跟在 LIMIT 之后，-1 表示不限
		q.Limit = "-1 OFFSET " + strconv.Itoa(opts.Offset)
	}
	return q
}

// Forward 返回每个片段都经过列名改写的副本
func (q Query) Forward(em *EntityMapping) Query {
	q.Where = em.ForwardMapColumnNames(q.Where)
	q.GroupBy = em.ForwardMapColumnNames(q.GroupBy)
	q.Having = em.ForwardMapColumnNames(q.Having)
	q.OrderBy = em.ForwardMapColumnNames(q.OrderBy)
	return q
}
