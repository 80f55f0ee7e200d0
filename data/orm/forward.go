package orm

import (
	"reflect"
	"sort"
	"strings"
)

// ForwardMapColumnNames 把 SQL 片段中出现的属性名替换为对应列名，例如 "firstName = ?" → "first_name = ?"。
//
// 这是纯文本替换，不做分词：属性名若是其他标识符的子串，或出现在字符串字面量中，同样会被改写。
// 替换单遍完成，较长的属性名优先匹配，已替换的结果不会被再次改写。
func (m *EntityMapping) ForwardMapColumnNames(fragment string) string {
	if fragment == "" {
		return fragment
	}
	return m.forwardReplacer().Replace(fragment)
}

func (m *EntityMapping) forwardReplacer() *strings.Replacer {
	m.replacerOnce.Do(func() {
		cols := make([]*ColumnMapping, 0, len(m.Columns))
		for _, c := range m.Columns {
			if c.Property.Name != c.Column {
				cols = append(cols, c)
			}
		}
		sort.SliceStable(cols, func(i, j int) bool {
			return len(cols[i].Property.Name) > len(cols[j].Property.Name)
		})
		pairs := make([]string, 0, 2*len(cols))
		for _, c := range cols {
			pairs = append(pairs, c.Property.Name, c.Column)
		}
		m.replacer = strings.NewReplacer(pairs...)
	})
	return m.replacer
}

// ForwardMapColumnNames 使用类型 t 的映射改写 SQL 片段
func (m *Mapper) ForwardMapColumnNames(fragment string, t reflect.Type) (string, error) {
	if fragment == "" {
		return fragment, nil
	}
	em, err := m.MapType(t)
	if err != nil {
		return "", err
	}
	return em.ForwardMapColumnNames(fragment), nil
}
