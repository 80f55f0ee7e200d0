package orm

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	dbsql "sqlbean/data/db/sql"
	"sqlbean/logging"
	"sqlbean/validation"
)

// Mapper 带缓存的实体映射器。
//
// 缓存由调用方持有，条目永不淘汰；并发首次查询同一类型时只构建一次，
// 所有调用方拿到同一个 *EntityMapping。
type Mapper struct {
	cache  sync.Map // reflect.Type -> *EntityMapping
	group  singleflight.Group
	logger logging.Logger
}

var _ IEntityMapper = (*Mapper)(nil)

// MapperOption 映射器选项
type MapperOption func(*Mapper)

// WithMapperLogger 设置映射器日志
func WithMapperLogger(logger logging.Logger) MapperOption {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMapper 创建映射器
func NewMapper(opts ...MapperOption) *Mapper {
	m := &Mapper{
		logger: logging.GetLogger().WithFields(logging.Component("orm.mapper")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup 只查缓存，不触发构建
func (m *Mapper) Lookup(t reflect.Type) (*EntityMapping, bool) {
	v, ok := m.cache.Load(indirectType(t))
	if !ok {
		return nil, false
	}
	return v.(*EntityMapping), true
}

// Map 返回 bean 动态类型的实体映射
func (m *Mapper) Map(bean any) (*EntityMapping, error) {
	if bean == nil {
		return nil, NewMappingError("cannot map nil bean")
	}
	return m.MapType(reflect.TypeOf(bean))
}

// MapType 返回类型的实体映射
func (m *Mapper) MapType(t reflect.Type) (*EntityMapping, error) {
	if t == nil {
		return nil, NewMappingError("cannot map nil type")
	}
	t = indirectType(t)
	if v, ok := m.cache.Load(t); ok {
		return v.(*EntityMapping), nil
	}

	key := t.PkgPath() + "." + t.String()
	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.cache.Load(t); ok {
			return v, nil
		}
		em, err := buildMapping(t)
		if err != nil {
			return nil, err
		}
		actual, loaded := m.cache.LoadOrStore(t, em)
		if !loaded {
			m.logger.Debug(context.Background(), "entity mapped",
				logging.String("type", t.String()),
				logging.String("table", em.Table),
				logging.Int("columns", len(em.Columns)),
			)
		}
		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	em := v.(*EntityMapping)
	if em.Type != t {
		// 不同类型的 key 碰撞，直接构建
		built, err := buildMapping(t)
		if err != nil {
			return nil, err
		}
		actual, _ := m.cache.LoadOrStore(t, built)
		return actual.(*EntityMapping), nil
	}
	return em, nil
}

func buildMapping(t reflect.Type) (*EntityMapping, error) {
	if t.Kind() != reflect.Struct {
		return nil, NewMappingError(fmt.Sprintf("type %s (%s) is not a persistable struct", t, t.Kind()))
	}
	if t.Name() == "" {
		return nil, NewMappingError(fmt.Sprintf("anonymous struct type %s cannot be persisted", t))
	}
	if isTimeType(t) {
		return nil, NewMappingError("time.Time cannot be persisted as an entity")
	}

	props, err := ResolveProperties(t)
	if err != nil {
		return nil, err
	}

	table := tableNameFor(t)
	if !dbsql.IsSafeIdentifier(table) {
		return nil, NewMappingError(fmt.Sprintf("%s: unsafe table name %q", t, table))
	}

	em := &EntityMapping{
		Type:       t,
		Table:      table,
		byProperty: make(map[string]*ColumnMapping, len(props)),
		byColumn:   make(map[string]*ColumnMapping, len(props)),
	}
	seen := make(map[string]string, len(props))
	var fallback *ColumnMapping

	for _, p := range props {
		ann := p.Annotation
		if ann.Kind == AnnotationAssociation {
			em.Associations = append(em.Associations, &Association{
				Property: p,
				Kind:     ann.Association,
				Target:   ann.Target,
				Column:   ann.Column,
			})
			continue
		}

		col := &ColumnMapping{
			Property: p,
			Column:   ann.Column,
			SQLType:  ann.Type,
			Size:     ann.Size,
			Default:  ann.Default,
		}
		if col.Column == "" {
			col.Column = delimited(p.Name)
		}
		if col.SQLType == "" {
			col.SQLType = inferSQLType(p.Type)
		}
		if err := validateColumn(t, col); err != nil {
			return nil, err
		}
		lower := strings.ToLower(col.Column)
		if other, dup := seen[lower]; dup {
			return nil, NewMappingError(fmt.Sprintf("%s: properties %q and %q map to the same column %q",
				t, other, p.Name, col.Column))
		}
		seen[lower] = p.Name

		if ann.Kind == AnnotationIdentity && em.Identity == nil {
			col.Identity = &Identity{Enforce: ann.Enforce, Reuse: ann.Reuse}
			em.Identity = col
		}
		if p.Name == "id" && fallback == nil {
			fallback = col
		}
		em.addColumn(col)
	}

	if len(em.Columns) == 0 {
		return nil, NewMappingError(fmt.Sprintf("%s has no mappable properties", t))
	}
	if em.Identity == nil && fallback != nil {
		fallback.Identity = &Identity{Enforce: true}
		em.Identity = fallback
	}
	return em, nil
}

// inferSQLType 由 Go 类型推导 SQLite 列类型
func inferSQLType(t reflect.Type) string {
	t = indirectType(t)
	switch {
	case isBytesType(t):
		return "BLOB"
	case isTimeType(t):
		return "NUMERIC"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "INTEGER"
	case reflect.Float32, reflect.Float64:
		return "NUMERIC"
	}
	return "VARCHAR"
}

func validateColumn(t reflect.Type, c *ColumnMapping) error {
	if !dbsql.IsSafeIdentifier(c.Column) || strings.Contains(c.Column, ".") {
		return NewMappingError(fmt.Sprintf("%s.%s: unsafe column name %q", t, c.Property.Name, c.Column))
	}
	if err := validation.ValidateSQLType(c.SQLType); err != nil {
		return WrapMappingError(err, fmt.Sprintf("%s.%s", t, c.Property.Name))
	}
	if err := validation.ValidateColumnSize(c.Size); err != nil {
		return WrapMappingError(err, fmt.Sprintf("%s.%s", t, c.Property.Name))
	}
	return nil
}
