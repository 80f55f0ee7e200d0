package sql

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	core "sqlbean/data/db"
)

type selectBuilder struct {
	exec core.IExecutor

	distinct bool
	cols     []string
	table    string
	where    []string
	args     []any
	groupBy  string
	having   string
	orderBy  string
	limit    string
}

func (b *selectBuilder) Distinct(distinct bool) ISelectBuilder {
	b.distinct = distinct
	return b
}

func (b *selectBuilder) From(table string) ISelectBuilder {
	b.table = table
	return b
}

func (b *selectBuilder) Where(cond string, args ...any) ISelectBuilder {
	if cond != "" {
		b.where = append(b.where, cond)
		b.args = append(b.args, args...)
	}
	return b
}

func (b *selectBuilder) GroupBy(expr string) ISelectBuilder {
	b.groupBy = expr
	return b
}

func (b *selectBuilder) Having(expr string) ISelectBuilder {
	b.having = expr
	return b
}

func (b *selectBuilder) OrderBy(expr string) ISelectBuilder {
	b.orderBy = expr
	return b
}

func (b *selectBuilder) Limit(expr string) ISelectBuilder {
	b.limit = strings.TrimSpace(expr)
	return b
}

func (b *selectBuilder) Build() (string, []any) {
	mustSafe("table", b.table)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(b.cols) == 0 {
		sb.WriteString("*")
	} else {
		for _, c := range b.cols {
			mustSafe("column", c)
		}
		sb.WriteString(strings.Join(b.cols, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	// 使用局部 args 副本，避免在多次 Build 调用之间污染 builder 状态。
	args := make([]any, 0, len(b.args))
	args = append(args, b.args...)

	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		if len(b.where) == 1 {
			sb.WriteString(b.where[0])
		} else {
			sb.WriteString("(" + strings.Join(b.where, ") AND (") + ")")
		}
	}
	if b.groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(b.groupBy)
	}
	if b.having != "" {
		sb.WriteString(" HAVING ")
		sb.WriteString(b.having)
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	if b.limit != "" {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.limit)
	}
	return sb.String(), args
}

func (b *selectBuilder) Query(ctx context.Context) (*sqlx.Rows, error) {
	q, args := b.Build()
	return b.exec.QueryxContext(ctx, b.exec.Rebind(q), args...)
}
