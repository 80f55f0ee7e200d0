// Package repo 在会话之上提供按实体类型划分的通用仓储。
//
// 查询条件、过滤与排序字段都使用属性名，执行前由映射改写为列名；
// 不在映射中的字段名会被忽略。
package repo

import (
	"reflect"

	"sqlbean/data/orm"
	"sqlbean/data/orm/session"
)

// Repo 实体 T 的通用仓储
type Repo[T any] struct {
	session *session.Session
	mapping *orm.EntityMapping
}

// NewRepo 创建仓储，T 无法映射时返回映射错误
func NewRepo[T any](s *session.Session) (*Repo[T], error) {
	em, err := s.Mapper().MapType(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return &Repo[T]{session: s, mapping: em}, nil
}

// Session 返回绑定的会话
func (r *Repo[T]) Session() *session.Session { return r.session }

// Mapping 返回实体映射
func (r *Repo[T]) Mapping() *orm.EntityMapping { return r.mapping }

func (r *Repo[T]) entityType() reflect.Type { return r.mapping.Type }
