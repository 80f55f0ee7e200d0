package orm

import (
	"fmt"
	"strconv"
	"strings"
)

// TagName 结构体标签键，例如 `orm:"column:first_name;size:64"`
const TagName = "orm"

// PropertyTagger 为只有访问器（没有字段）的属性提供标签，键为属性名。
// 同一属性同时存在字段标签时，按注解类别优先级合并，同类别以访问器为准。
type PropertyTagger interface {
	PropertyTags() map[string]string
}

type tagInfo struct {
	ann    Annotation
	ignore bool
	embed  bool
}

// parseTag 解析 orm 标签。
//
// 语法沿用 gorm 风格："key" 或 "key:value"，以 ";" 分隔，键大小写不敏感：
//
//	-, ignore                 忽略该属性
//	embed                     将具名结构体字段展开为 "field.sub" 属性
//	id, identity, primaryKey  标识列
//	enforce[:bool]            标识强校验（默认 true）
//	reuse[:bool], autoIncrement
//	column:name size:n type:SQLTYPE default:literal
//	assoc:kind target:Type    关联（只记录元信息）
func parseTag(tag string) (tagInfo, error) {
	var info tagInfo
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return info, nil
	}
	if tag == "-" {
		info.ignore = true
		return info, nil
	}

	ann := Annotation{Enforce: true}
	var hasID, hasColumn, hasAssoc bool

	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "-", "ignore":
			info.ignore = true
		case "embed":
			info.embed = true
		case "id", "identity", "primarykey", "primary_key":
			hasID = true
		case "enforce":
			b, err := parseFlag(key, value, hasValue)
			if err != nil {
				return info, err
			}
			ann.Enforce = b
		case "reuse", "autoincrement":
			b, err := parseFlag(key, value, hasValue)
			if err != nil {
				return info, err
			}
			ann.Reuse = b
		case "column", "size", "type", "default":
			if value == "" {
				return info, fmt.Errorf("tag key %q requires a value", key)
			}
			hasColumn = true
			switch key {
			case "column":
				ann.Column = value
			case "size":
				ann.Size = value
			case "type":
				ann.Type = value
			default:
				ann.Default = value
			}
		case "assoc":
			kind := AssociationKind(strings.ToLower(value))
			switch kind {
			case OneToOne, OneToMany, ManyToOne, ManyToMany:
			case "":
				kind = OneToMany
			default:
				return info, fmt.Errorf("unknown association kind %q", value)
			}
			ann.Association = kind
			hasAssoc = true
		case "target":
			ann.Target = value
		default:
			return info, fmt.Errorf("unknown tag key %q", key)
		}
	}

	switch {
	case hasID:
		ann.Kind = AnnotationIdentity
	case hasColumn:
		ann.Kind = AnnotationColumn
	case hasAssoc:
		ann.Kind = AnnotationAssociation
	}
	info.ann = ann
	return info, nil
}

func parseFlag(key, value string, hasValue bool) (bool, error) {
	if !hasValue || value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("tag key %q: invalid bool %q", key, value)
	}
	return b, nil
}

// mergeAnnotation 按 identity > column > association 选择唯一生效的注解，同类别以访问器为准
func mergeAnnotation(field, accessor Annotation) Annotation {
	if accessor.Kind != AnnotationNone && accessor.Kind >= field.Kind {
		return accessor
	}
	return field
}
