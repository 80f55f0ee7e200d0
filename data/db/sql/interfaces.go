// Package sql 提供面向 SQLite 的最小语句构建器。
//
// 构建器只负责拼接语句与参数顺序，WHERE/GROUP BY/HAVING/ORDER BY 片段由调用方提供并原样写入。
package sql

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	core "sqlbean/data/db"
)

// ISelectBuilder 构建 SELECT 语句。
type ISelectBuilder interface {
	Distinct(distinct bool) ISelectBuilder
	From(table string) ISelectBuilder
	Where(cond string, args ...any) ISelectBuilder
	GroupBy(expr string) ISelectBuilder
	Having(expr string) ISelectBuilder
	OrderBy(expr string) ISelectBuilder
	// Limit 原样写入 LIMIT 子句，例如 "10" 或 "10 OFFSET 20"
	Limit(expr string) ISelectBuilder
	Build() (query string, args []any)
	Query(ctx context.Context) (*sqlx.Rows, error)
}

// IInsertBuilder 构建 INSERT 语句。
type IInsertBuilder interface {
	Columns(cols ...string) IInsertBuilder
	Values(vals ...any) IInsertBuilder
	Build() (query string, args []any)
	Exec(ctx context.Context) (sql.Result, error)
}

// IUpdateBuilder 构建 UPDATE 语句。
type IUpdateBuilder interface {
	Set(column string, val any) IUpdateBuilder
	Where(cond string, args ...any) IUpdateBuilder
	Build() (query string, args []any)
	Exec(ctx context.Context) (sql.Result, error)
}

// IDeleteBuilder 构建 DELETE 语句。
type IDeleteBuilder interface {
	Where(cond string, args ...any) IDeleteBuilder
	Build() (query string, args []any)
	Exec(ctx context.Context) (sql.Result, error)
}

// Select 在执行器上构建 SELECT
func Select(exec core.IExecutor, columns ...string) ISelectBuilder {
	return &selectBuilder{exec: exec, cols: columns}
}

// InsertInto 在执行器上构建 INSERT
func InsertInto(exec core.IExecutor, table string) IInsertBuilder {
	return &insertBuilder{exec: exec, table: table}
}

// Update 在执行器上构建 UPDATE
func Update(exec core.IExecutor, table string) IUpdateBuilder {
	return &updateBuilder{exec: exec, table: table}
}

// DeleteFrom 在执行器上构建 DELETE
func DeleteFrom(exec core.IExecutor, table string) IDeleteBuilder {
	return &deleteBuilder{exec: exec, table: table}
}
