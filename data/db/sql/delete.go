package sql

import (
	"context"
	"database/sql"
	"strings"

	core "sqlbean/data/db"
)

type deleteBuilder struct {
	exec core.IExecutor

	table string
	where string
	args  []any
}

// Where 仅保留一个条件片段，空片段表示删除全表
func (b *deleteBuilder) Where(cond string, args ...any) IDeleteBuilder {
	b.where = cond
	b.args = args
	return b
}

func (b *deleteBuilder) Build() (string, []any) {
	mustSafe("table", b.table)

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(b.table)

	if b.where == "" {
		return sb.String(), nil
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(b.where)

	args := make([]any, len(b.args))
	copy(args, b.args)
	return sb.String(), args
}

func (b *deleteBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.exec.ExecContext(ctx, b.exec.Rebind(q), args...)
}
