package sql

import (
	"context"
	"database/sql"
	"strings"

	core "sqlbean/data/db"
)

type insertBuilder struct {
	exec core.IExecutor

	table   string
	columns []string
	values  []any
}

func (b *insertBuilder) Columns(cols ...string) IInsertBuilder {
	b.columns = append(b.columns, cols...)
	return b
}

func (b *insertBuilder) Values(vals ...any) IInsertBuilder {
	b.values = append(b.values, vals...)
	return b
}

// Build 无列时生成 "INSERT INTO t DEFAULT VALUES"
func (b *insertBuilder) Build() (string, []any) {
	mustSafe("table", b.table)
	if len(b.values) != len(b.columns) {
		panic("insertBuilder: values length mismatch columns length")
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.table)
	if len(b.columns) == 0 {
		sb.WriteString(" DEFAULT VALUES")
		return sb.String(), nil
	}

	for _, col := range b.columns {
		mustSafe("column", col)
	}
	sb.WriteString(" (")
	sb.WriteString(strings.Join(b.columns, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(b.columns)), ", "))
	sb.WriteString(")")

	args := make([]any, len(b.values))
	copy(args, b.values)
	return sb.String(), args
}

func (b *insertBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.exec.ExecContext(ctx, b.exec.Rebind(q), args...)
}
