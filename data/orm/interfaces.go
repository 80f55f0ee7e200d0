// Package orm 把带标签的结构体类型映射为 SQLite 表，并在 bean 与行之间转换。
//
// 入口是 Mapper：按类型解析属性、构建并缓存 EntityMapping，生成建表语句，
// 改写 SQL 片段中的属性名；Marshaller 负责 bean 与列值的双向转换。
// 会话与事务见子包 session。
package orm

import "reflect"

// IEntityMapper 实体映射器
type IEntityMapper interface {
	// MapType 返回类型的实体映射（指针类型会被解引用），结果按类型缓存
	MapType(t reflect.Type) (*EntityMapping, error)
	// Map 返回 bean 动态类型的实体映射
	Map(bean any) (*EntityMapping, error)
	// CreateTableStatement 生成建表语句
	CreateTableStatement(t reflect.Type) (string, error)
	// ForwardMapColumnNames 把 SQL 片段中的属性名替换为列名
	ForwardMapColumnNames(fragment string, t reflect.Type) (string, error)
}
