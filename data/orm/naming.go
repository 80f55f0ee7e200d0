package orm

import (
	"reflect"
	"strings"
	"unicode"
)

// lowerCamel 将 Go 成员名转为属性名：FirstName→firstName，ID→id，URLPath→urlPath
func lowerCamel(s string) string {
	r := []rune(s)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == len(r):
		return strings.ToLower(s)
	case n == 1:
		r[0] = unicode.ToLower(r[0])
	default:
		// 最后一个大写字母属于下一个单词
		for i := 0; i < n-1; i++ {
			r[i] = unicode.ToLower(r[i])
		}
	}
	return string(r)
}

// delimited 属性名到默认列名：分隔符 "." 归一为 "_"
func delimited(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// normalizeIdentifier 把任意非 [A-Za-z0-9_] 字符替换为 "_"
func normalizeIdentifier(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' {
			sb.WriteByte(ch)
		} else {
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// tableNameFor 优先使用 TableName()，否则由包路径与类型名推导
func tableNameFor(t reflect.Type) string {
	if tn, ok := reflect.New(t).Interface().(interface{ TableName() string }); ok {
		if name := tn.TableName(); name != "" {
			return name
		}
	}
	full := t.Name()
	if t.PkgPath() != "" {
		full = t.PkgPath() + "." + full
	}
	return normalizeIdentifier(full)
}

func isTimeType(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() == "time" && t.Name() == "Time"
}

func isBytesType(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
