package orm

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ResolveProperties 枚举结构体类型 t 的可持久化属性，并为每个属性附上唯一生效的注解。
//
// 字段按声明顺序遍历（匿名结构体展开，embed 字段以 "a.b" 形式嵌套）；
// *T 方法集中的 GetX/IsX 与 SetX 构成访问器属性，同名时访问器优先、字段作为兜底。
// 结果顺序：带字段的属性按字段顺序，其后是仅有访问器的属性（按方法名）。
func ResolveProperties(t reflect.Type) ([]*Property, error) {
	t = indirectType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, NewMappingError(fmt.Sprintf("cannot resolve properties of %v", t))
	}

	r := &resolver{
		byName:  make(map[string]*resolved),
		ignored: make(map[string]bool),
	}
	if err := r.walkFields(t, nil, "", 0); err != nil {
		return nil, err
	}
	r.walkAccessors(t)
	if err := r.applyAccessorTags(t); err != nil {
		return nil, err
	}
	return r.result(), nil
}

type resolved struct {
	prop     *Property
	depth    int
	fieldAnn Annotation
	accAnn   Annotation
}

type resolver struct {
	fields    []*resolved
	accessors []*resolved
	byName    map[string]*resolved
	ignored   map[string]bool
}

func (r *resolver) walkFields(t reflect.Type, index []int, prefix string, depth int) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), index...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct && !isTimeType(f.Type) {
			if strings.TrimSpace(f.Tag.Get(TagName)) == "-" {
				continue
			}
			if err := r.walkFields(f.Type, path, prefix, depth+1); err != nil {
				return err
			}
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Ptr {
			continue
		}
		if !f.IsExported() {
			continue
		}

		name := prefix + lowerCamel(f.Name)
		info, err := parseTag(f.Tag.Get(TagName))
		if err != nil {
			return NewMappingError(fmt.Sprintf("%s.%s: %v", t, f.Name, err))
		}
		if dbName, ok := f.Tag.Lookup("db"); ok {
			dbName = strings.TrimSpace(strings.Split(dbName, ",")[0])
			switch {
			case dbName == "-":
				info.ignore = true
			case dbName != "" && info.ann.Column == "":
				info.ann.Column = dbName
				if info.ann.Kind == AnnotationNone {
					info.ann.Kind = AnnotationColumn
				}
			}
		}
		if info.ignore {
			r.ignored[name] = true
			continue
		}
		if info.embed {
			if f.Type.Kind() != reflect.Struct || isTimeType(f.Type) {
				return NewMappingError(fmt.Sprintf("%s.%s: embed requires a struct field", t, f.Name))
			}
			if err := r.walkFields(f.Type, path, name+".", depth+1); err != nil {
				return err
			}
			continue
		}
		if !persistable(f.Type) {
			continue
		}

		if prev, ok := r.byName[name]; ok {
			// 与 Go 的字段提升规则一致：浅层字段遮蔽深层字段
			if prev.depth <= depth {
				continue
			}
			prev.prop.Type = f.Type
			prev.prop.FieldIndex = path
			prev.depth = depth
			prev.fieldAnn = info.ann
			continue
		}
		rp := &resolved{
			prop: &Property{
				Name:       name,
				Type:       f.Type,
				FieldIndex: path,
				Getter:     -1,
				Setter:     -1,
			},
			depth:    depth,
			fieldAnn: info.ann,
		}
		r.fields = append(r.fields, rp)
		r.byName[name] = rp
	}
	return nil
}

func (r *resolver) walkAccessors(t reflect.Type) {
	pt := reflect.PointerTo(t)
	// reflect 返回的方法集已按名称排序
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		suffix, ok := getterSuffix(m)
		if !ok {
			continue
		}
		name := lowerCamel(suffix)
		if r.ignored[name] {
			continue
		}
		typ := m.Type.Out(0)
		if !persistable(typ) {
			continue
		}
		setter := -1
		if sm, ok := pt.MethodByName("Set" + suffix); ok && isSetterFor(sm, typ) {
			setter = sm.Index
		}

		if rp, ok := r.byName[name]; ok {
			rp.prop.Getter = m.Index
			rp.prop.Setter = setter
			if rp.prop.Type != typ {
				// 类型不一致时字段不能作为兜底
				rp.prop.Type = typ
				rp.prop.FieldIndex = nil
				rp.fieldAnn = Annotation{}
			}
			continue
		}
		if setter < 0 {
			continue
		}
		rp := &resolved{
			prop: &Property{
				Name:   name,
				Type:   typ,
				Getter: m.Index,
				Setter: setter,
			},
		}
		r.accessors = append(r.accessors, rp)
		r.byName[name] = rp
	}
}

func (r *resolver) applyAccessorTags(t reflect.Type) error {
	tagger, ok := reflect.New(t).Interface().(PropertyTagger)
	if !ok {
		return nil
	}
	tags := tagger.PropertyTags()
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rp, ok := r.byName[name]
		if !ok {
			if r.ignored[name] {
				continue
			}
			return NewMappingError(fmt.Sprintf("%s: PropertyTags names unknown property %q", t, name))
		}
		info, err := parseTag(tags[name])
		if err != nil {
			return NewMappingError(fmt.Sprintf("%s.%s: %v", t, name, err))
		}
		if info.ignore {
			r.ignored[name] = true
			continue
		}
		rp.accAnn = info.ann
	}
	return nil
}

func (r *resolver) result() []*Property {
	out := make([]*Property, 0, len(r.fields)+len(r.accessors))
	for _, group := range [][]*resolved{r.fields, r.accessors} {
		for _, rp := range group {
			if r.ignored[rp.prop.Name] {
				continue
			}
			// 至少要有一条读路径和一条写路径
			if !rp.prop.HasField() && (rp.prop.Getter < 0 || rp.prop.Setter < 0) {
				continue
			}
			rp.prop.Annotation = mergeAnnotation(rp.fieldAnn, rp.accAnn)
			out = append(out, rp.prop)
		}
	}
	return out
}

// getterSuffix 识别 GetX()/IsX() 形式的读方法，返回 X
func getterSuffix(m reflect.Method) (string, bool) {
	if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return "", false
	}
	var suffix string
	switch {
	case strings.HasPrefix(m.Name, "Get"):
		suffix = m.Name[3:]
	case strings.HasPrefix(m.Name, "Is"):
		if m.Type.Out(0).Kind() != reflect.Bool {
			return "", false
		}
		suffix = m.Name[2:]
	default:
		return "", false
	}
	if suffix == "" || suffix == "Class" {
		return "", false
	}
	if r, _ := utf8.DecodeRuneInString(suffix); !unicode.IsUpper(r) {
		return "", false
	}
	return suffix, true
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func isSetterFor(m reflect.Method, typ reflect.Type) bool {
	mt := m.Type
	if mt.NumIn() != 2 || mt.In(1) != typ {
		return false
	}
	return mt.NumOut() == 0 || (mt.NumOut() == 1 && mt.Out(0) == errorType)
}

func persistable(t reflect.Type) bool {
	switch indirectType(t).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Interface, reflect.Invalid:
		return false
	}
	return true
}
