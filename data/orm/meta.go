package orm

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// AnnotationKind 映射注解类别，数值越大优先级越高
type AnnotationKind int

const (
	AnnotationNone AnnotationKind = iota
	AnnotationAssociation
	AnnotationColumn
	AnnotationIdentity
)

func (k AnnotationKind) String() string {
	switch k {
	case AnnotationAssociation:
		return "association"
	case AnnotationColumn:
		return "column"
	case AnnotationIdentity:
		return "identity"
	default:
		return "none"
	}
}

// AssociationKind 表示关联类型。
type AssociationKind string

const (
	OneToOne   AssociationKind = "one_to_one"
	OneToMany  AssociationKind = "one_to_many"
	ManyToOne  AssociationKind = "many_to_one"
	ManyToMany AssociationKind = "many_to_many"
)

// Annotation 单个属性上生效的映射注解（来自 orm 标签或 PropertyTags）。
// 空字符串字段表示未设置，由约定推导。
type Annotation struct {
	Kind    AnnotationKind
	Column  string
	Size    string
	Type    string
	Default string

	// 仅 AnnotationIdentity 使用
	Enforce bool
	Reuse   bool

	// 仅 AnnotationAssociation 使用
	Association AssociationKind
	Target      string
}

// Property 实体的一个可持久化成员。
//
// 读优先走 getter，写优先走 setter，字段作为兜底；同一实体内按 Name 判等。
type Property struct {
	Name string
	Type reflect.Type

	// FieldIndex 字段路径，nil 表示没有对应字段
	FieldIndex []int
	// Getter/Setter 为 *T 方法集中的方法下标，-1 表示没有
	Getter int
	Setter int

	Annotation Annotation
}

// HasField 是否附带可直接读写的字段
func (p *Property) HasField() bool { return p.FieldIndex != nil }

// HasAccessor 是否通过 getter 发现
func (p *Property) HasAccessor() bool { return p.Getter >= 0 }

// Identity 标识列的附加标志
type Identity struct {
	// Enforce 插入前拒绝已存在的标识值（默认由数据库主键约束兜底，会话需显式开启校验）
	Enforce bool
	// Reuse 标识由数据库生成（自增），插入时不写入该列
	Reuse bool
}

// ColumnMapping 属性到列的映射；Identity 非 nil 时即为标识列。
type ColumnMapping struct {
	Property *Property
	Column   string
	SQLType  string
	Size     string
	Default  string
	Identity *Identity
}

// IsIdentity 是否为标识列
func (c *ColumnMapping) IsIdentity() bool { return c != nil && c.Identity != nil }

// Association 关联元信息：仅解析记录，不参与读写，也不生成列。
type Association struct {
	Property *Property
	Kind     AssociationKind
	Target   string
	Column   string
}

// EntityMapping 实体类型到表的完整映射。
type EntityMapping struct {
	Type         reflect.Type
	Table        string
	Columns      []*ColumnMapping
	Identity     *ColumnMapping
	Associations []*Association

	byProperty map[string]*ColumnMapping
	byColumn   map[string]*ColumnMapping
	verified   atomic.Bool

	replacerOnce sync.Once
	replacer     *strings.Replacer
}

// Column 按属性名查找列映射
func (m *EntityMapping) Column(property string) (*ColumnMapping, bool) {
	c, ok := m.byProperty[property]
	return c, ok
}

// ColumnByName 按列名查找列映射
func (m *EntityMapping) ColumnByName(column string) (*ColumnMapping, bool) {
	c, ok := m.byColumn[column]
	return c, ok
}

// ColumnNames 按映射顺序返回列名
func (m *EntityMapping) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Column
	}
	return names
}

// TableVerified 表是否已确认存在
func (m *EntityMapping) TableVerified() bool { return m.verified.Load() }

// MarkTableVerified 标记表已存在，之后的写操作跳过存在性检查
func (m *EntityMapping) MarkTableVerified() { m.verified.Store(true) }

// ResetTableVerified 清除标记（例如建表所在事务被回滚）
func (m *EntityMapping) ResetTableVerified() { m.verified.Store(false) }

func (m *EntityMapping) addColumn(c *ColumnMapping) {
	m.Columns = append(m.Columns, c)
	m.byProperty[c.Property.Name] = c
	m.byColumn[c.Column] = c
}
