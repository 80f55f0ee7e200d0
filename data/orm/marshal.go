package orm

import (
	"context"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"sqlbean/logging"
)

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	stringerType        = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

	zeroTimeMillis = time.Time{}.UnixMilli()
)

// Marshaller 在 bean 与列值之间转换。
//
// 单列转换失败只记录日志并保留零值，不会中断整行。
type Marshaller struct {
	logger logging.Logger
}

// NewMarshaller 创建转换器，logger 为 nil 时使用全局日志
func NewMarshaller(logger logging.Logger) *Marshaller {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Marshaller{logger: logger.WithFields(logging.Component("orm.marshaller"))}
}

// BeanToValues 按映射列顺序读取 bean 的属性值。
//
// nil 指针/切片/映射写为 NULL；bool、字符串、整数、浮点、[]byte 保持原生表示；
// time.Time 写为毫秒时间戳；其余类型依次尝试 TextMarshaler、Stringer、fmt.Sprint。
func (m *Marshaller) BeanToValues(ctx context.Context, em *EntityMapping, bean any) (Values, error) {
	ptr, err := beanPointer(em, bean)
	if err != nil {
		return nil, err
	}
	out := make(Values, 0, len(em.Columns))
	for _, c := range em.Columns {
		v, err := readProperty(ptr, c.Property)
		if err != nil {
			m.logger.Warn(ctx, "read property failed",
				logging.String("table", em.Table),
				logging.String("column", c.Column),
				logging.Error(err),
			)
			continue
		}
		out = append(out, Value{Column: c.Column, Value: nativeValue(v)})
	}
	return out, nil
}

// ValuesToBean 创建 em.Type 的新实例并用行数据填充，返回 *T
func (m *Marshaller) ValuesToBean(ctx context.Context, row *Row, em *EntityMapping) (any, error) {
	ptr := reflect.New(em.Type)
	m.fill(ctx, row, em, ptr)
	return ptr.Interface(), nil
}

// FillBean 用行数据填充已有 bean（必须是 *T）
func (m *Marshaller) FillBean(ctx context.Context, row *Row, em *EntityMapping, bean any) error {
	ptr := reflect.ValueOf(bean)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() || ptr.Elem().Type() != em.Type {
		return NewMappingError(fmt.Sprintf("FillBean requires a non-nil *%s, got %T", em.Type, bean))
	}
	m.fill(ctx, row, em, ptr)
	return nil
}

func (m *Marshaller) fill(ctx context.Context, row *Row, em *EntityMapping, ptr reflect.Value) {
	for _, c := range em.Columns {
		if !row.Has(c.Column) {
			m.logger.Debug(ctx, "column missing from row",
				logging.String("table", em.Table),
				logging.String("column", c.Column),
			)
			continue
		}
		v, err := decodeColumn(row, c)
		if err == nil {
			err = writeProperty(ptr, c.Property, v)
		}
		if err != nil {
			raw, _ := row.Raw(c.Column)
			m.logger.Warn(ctx, "column conversion failed",
				logging.String("table", em.Table),
				logging.String("column", c.Column),
				logging.Error(err),
			)
			m.logger.Debug(ctx, "column conversion input", logging.Dump("cell", raw))
		}
	}
	for _, col := range row.Columns() {
		if _, ok := em.ColumnByName(col); !ok {
			m.logger.Debug(ctx, "row column not mapped",
				logging.String("table", em.Table),
				logging.String("column", col),
			)
		}
	}
}

// IdentityValue 读取 bean 的标识值
func (em *EntityMapping) IdentityValue(bean any) (any, error) {
	if em.Identity == nil {
		return nil, NewMappingError(fmt.Sprintf("%s has no identity column", em.Type))
	}
	ptr, err := beanPointer(em, bean)
	if err != nil {
		return nil, err
	}
	v, err := readProperty(ptr, em.Identity.Property)
	if err != nil {
		return nil, WrapMappingError(err, fmt.Sprintf("read identity of %s", em.Type))
	}
	return nativeValue(v), nil
}

func beanPointer(em *EntityMapping, bean any) (reflect.Value, error) {
	v := reflect.ValueOf(bean)
	switch {
	case !v.IsValid():
		return reflect.Value{}, NewMappingError("bean is nil")
	case v.Kind() == reflect.Ptr && v.Type().Elem() == em.Type:
		if v.IsNil() {
			return reflect.Value{}, NewMappingError(fmt.Sprintf("bean is a nil *%s", em.Type))
		}
		return v, nil
	case v.Type() == em.Type:
		// 值类型只读，复制一份以便调用指针接收者的 getter
		p := reflect.New(em.Type)
		p.Elem().Set(v)
		return p, nil
	default:
		return reflect.Value{}, NewMappingError(fmt.Sprintf("bean of type %T does not match mapping %s", bean, em.Type))
	}
}

func readProperty(ptr reflect.Value, p *Property) (out reflect.Value, err error) {
	if p.Getter >= 0 {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("getter for %s panicked: %v", p.Name, r)
			}
		}()
		return ptr.Method(p.Getter).Call(nil)[0], nil
	}
	if p.FieldIndex == nil {
		return reflect.Value{}, fmt.Errorf("property %s has no read path", p.Name)
	}
	return ptr.Elem().FieldByIndex(p.FieldIndex), nil
}

func writeProperty(ptr reflect.Value, p *Property, v reflect.Value) (err error) {
	if p.Setter >= 0 {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("setter for %s panicked: %v", p.Name, r)
			}
		}()
		res := ptr.Method(p.Setter).Call([]reflect.Value{v})
		if len(res) == 1 && !res[0].IsNil() {
			return res[0].Interface().(error)
		}
		return nil
	}
	if p.FieldIndex == nil {
		return fmt.Errorf("property %s has no write path", p.Name)
	}
	f := ptr.Elem().FieldByIndex(p.FieldIndex)
	if !f.CanSet() {
		return fmt.Errorf("field for %s is not settable", p.Name)
	}
	f.Set(v)
	return nil
}

func nativeValue(v reflect.Value) any {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if isTimeType(v.Type()) {
		return v.Interface().(time.Time).UnixMilli()
	}
	if isBytesType(v.Type()) {
		if v.IsNil() {
			return nil
		}
		return v.Bytes()
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		// 超过 MaxInt64 的值按位存为负的 int64，读取时还原
		return int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return nil
		}
	}

	if v.Type().Implements(textMarshalerType) {
		if b, err := v.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(b)
		}
	}
	if reflect.PointerTo(v.Type()).Implements(textMarshalerType) {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		if b, err := p.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(b)
		}
	}
	if v.Type().Implements(stringerType) {
		return v.Interface().(fmt.Stringer).String()
	}
	return fmt.Sprint(v.Interface())
}

func decodeColumn(row *Row, c *ColumnMapping) (reflect.Value, error) {
	typ := c.Property.Type
	if row.IsNull(c.Column) {
		return reflect.Zero(typ), nil
	}
	if isBytesType(indirectType(typ)) {
		b, _ := row.Blob(c.Column)
		return wrapPointers(reflect.ValueOf(b).Convert(indirectType(typ)), typ), nil
	}
	text, _ := row.Text(c.Column)
	return decodeText(text, typ)
}

// decodeText 把文本解析为 typ 类型的值；非字符串类型的 "" 与 "null" 视为缺省值
func decodeText(s string, typ reflect.Type) (reflect.Value, error) {
	base := indirectType(typ)
	if base.Kind() != reflect.String && (s == "" || s == "null") {
		return reflect.Zero(typ), nil
	}

	v := reflect.New(base).Elem()
	switch {
	case isTimeType(base):
		ms, err := parseInteger(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse time millis %q: %w", s, err)
		}
		if ms != zeroTimeMillis {
			v.Set(reflect.ValueOf(time.UnixMilli(ms)))
		}
	case isBasicKind(base.Kind()):
		if err := setFromText(v, s); err != nil {
			return reflect.Value{}, err
		}
	case reflect.PointerTo(base).Implements(textUnmarshalerType):
		if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, err
		}
	default:
		return reflect.Value{}, fmt.Errorf("cannot decode %q into %s", s, base)
	}
	return wrapPointers(v, typ), nil
}

func setFromText(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		v.SetBool(s == "1" || strings.EqualFold(s, "true"))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := parseInteger(s)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", v.Type(), s, err)
		}
		if v.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, v.Type())
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			i, ierr := parseInteger(s)
			if ierr != nil {
				return fmt.Errorf("parse %s %q: %w", v.Type(), s, err)
			}
			if i < 0 && v.Type().Bits() < 64 {
				return fmt.Errorf("value %d overflows %s", i, v.Type())
			}
			n = uint64(i)
		}
		if v.OverflowUint(n) {
			return fmt.Errorf("value %d overflows %s", n, v.Type())
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", v.Type(), s, err)
		}
		v.SetFloat(f)
	}
	return nil
}

func isBasicKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// parseInteger 接受整数文本，也接受数值上为整数的浮点文本（NUMERIC 列可能以 REAL 返回）
func parseInteger(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, err
	}
	return int64(f), nil
}

// wrapPointers 把 base 值包装成 typ 所需的指针层级
func wrapPointers(v reflect.Value, typ reflect.Type) reflect.Value {
	if typ.Kind() != reflect.Ptr {
		return v
	}
	inner := wrapPointers(v, typ.Elem())
	p := reflect.New(typ.Elem())
	p.Elem().Set(inner)
	return p
}
