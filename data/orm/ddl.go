package orm

import (
	"reflect"
	"strings"
)

// CreateTableStatement 生成建表语句：
//
//	CREATE TABLE <table> (<col> <type>[(<size>)][ PRIMARY KEY[ AUTOINCREMENT]][ DEFAULT <value>], ...);
//
// PRIMARY KEY 只加在类型为 INTEGER 的标识列上，AUTOINCREMENT 还要求 reuse。
// 标识符不加引号，默认值原样输出。
func (m *EntityMapping) CreateTableStatement() string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(m.Table)
	sb.WriteString(" (")
	for i, c := range m.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Column)
		sb.WriteByte(' ')
		sb.WriteString(c.SQLType)
		if c.Size != "" {
			sb.WriteByte('(')
			sb.WriteString(c.Size)
			sb.WriteByte(')')
		}
		if c.IsIdentity() && strings.EqualFold(c.SQLType, "INTEGER") {
			sb.WriteString(" PRIMARY KEY")
			if c.Identity.Reuse {
				sb.WriteString(" AUTOINCREMENT")
			}
		}
		if c.Default != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(c.Default)
		}
	}
	sb.WriteString(");")
	return sb.String()
}

// CreateTableStatement 生成类型 t 的建表语句
func (m *Mapper) CreateTableStatement(t reflect.Type) (string, error) {
	em, err := m.MapType(t)
	if err != nil {
		return "", err
	}
	return em.CreateTableStatement(), nil
}
