package orm

import (
	"fmt"
	"strconv"
	"time"
)

// Value 一个列值对
type Value struct {
	Column string
	Value  any
}

// Values 有序的列值集合，顺序与映射列顺序一致
type Values []Value

// Get 按列名取值
func (vs Values) Get(column string) (any, bool) {
	for _, v := range vs {
		if v.Column == column {
			return v.Value, true
		}
	}
	return nil, false
}

// Columns 返回列名
func (vs Values) Columns() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Column
	}
	return out
}

// Args 返回与 Columns 对齐的参数
func (vs Values) Args() []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.Value
	}
	return out
}

// Without 返回去掉指定列的副本
func (vs Values) Without(column string) Values {
	out := make(Values, 0, len(vs))
	for _, v := range vs {
		if v.Column != column {
			out = append(out, v)
		}
	}
	return out
}

// Row 按列名访问的一行结果
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// NewRow 由列名与驱动返回的单元格构造行，重名列以第一个为准
func NewRow(columns []string, values []any) *Row {
	r := &Row{
		columns: columns,
		values:  values,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, ok := r.index[c]; !ok && i < len(values) {
			r.index[c] = i
		}
	}
	return r
}

// RowFromValues 把写入用的列值集合当作一行读取
func RowFromValues(vs Values) *Row {
	return NewRow(vs.Columns(), vs.Args())
}

// Columns 返回列名
func (r *Row) Columns() []string { return r.columns }

// Has 是否包含该列
func (r *Row) Has(column string) bool {
	_, ok := r.index[column]
	return ok
}

// IsNull 列不存在或为 SQL NULL
func (r *Row) IsNull(column string) bool {
	i, ok := r.index[column]
	return !ok || r.values[i] == nil
}

// Raw 返回驱动给出的原始单元格
func (r *Row) Raw(column string) (any, bool) {
	i, ok := r.index[column]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Text 以文本形式读取列，NULL 或列不存在时 ok 为 false
func (r *Row) Text(column string) (string, bool) {
	v, ok := r.Raw(column)
	if !ok {
		return "", false
	}
	return CellText(v)
}

// Blob 以原始字节读取列
func (r *Row) Blob(column string) ([]byte, bool) {
	v, ok := r.Raw(column)
	if !ok || v == nil {
		return nil, false
	}
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	default:
		s, _ := CellText(v)
		return []byte(s), true
	}
}

// CellText 把驱动单元格转为文本，nil 表示 SQL NULL
func CellText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return strconv.FormatInt(x.UnixMilli(), 10), true
	default:
		return fmt.Sprint(x), true
	}
}
