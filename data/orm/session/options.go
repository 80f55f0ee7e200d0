package session

import (
	"sqlbean/data/orm"
	"sqlbean/logging"
)

// Option 会话选项
type Option func(*Session)

// WithMapper 使用外部映射器。
// 映射上的"表已确认"标记随映射共享，多个数据库文件不应共用同一个映射器。
func WithMapper(m *orm.Mapper) Option {
	return func(s *Session) {
		if m != nil {
			s.mapper = m
		}
	}
}

// WithLogger 设置会话日志
func WithLogger(logger logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAutoCommit 关闭会话时提交（true，默认）或回滚（false）未结束的事务
func WithAutoCommit(autoCommit bool) Option {
	return func(s *Session) {
		s.autoCommit = autoCommit
	}
}

// WithEnforceIdentity 插入前按标识列查重（默认关闭，由数据库主键约束兜底）
func WithEnforceIdentity(enforce bool) Option {
	return func(s *Session) {
		s.enforceIdentity = enforce
	}
}
