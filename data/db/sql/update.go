package sql

import (
	"context"
	"database/sql"
	"strings"

	core "sqlbean/data/db"
)

type updateBuilder struct {
	exec core.IExecutor

	table     string
	setCols   []string
	setArgs   []any
	whereExpr string
	whereArgs []any
}

func (b *updateBuilder) Set(col string, val any) IUpdateBuilder {
	if col == "" {
		return b
	}
	b.setCols = append(b.setCols, col)
	b.setArgs = append(b.setArgs, val)
	return b
}

// Where 仅保留一个条件片段，空片段表示更新全表
func (b *updateBuilder) Where(cond string, args ...any) IUpdateBuilder {
	b.whereExpr = cond
	b.whereArgs = args
	return b
}

func (b *updateBuilder) Build() (string, []any) {
	mustSafe("table", b.table)
	if len(b.setCols) == 0 {
		panic("updateBuilder: no columns to set")
	}

	var sb strings.Builder
	args := make([]any, 0, len(b.setArgs)+len(b.whereArgs))

	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	for i, col := range b.setCols {
		mustSafe("column", col)
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ?")
	}
	args = append(args, b.setArgs...)

	if b.whereExpr != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(b.whereExpr)
		args = append(args, b.whereArgs...)
	}
	return sb.String(), args
}

func (b *updateBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.exec.ExecContext(ctx, b.exec.Rebind(q), args...)
}
