// Package session 实现持有单个 SQLite 句柄的会话状态机与 CRUD 接口。
//
// 状态：CLOSED（无句柄）→ OPEN（持有句柄）→ OPEN+TX（事务进行中）。
// 每个公开操作都会自动打开/关闭：会话关闭时按需打开，写操作包在隐式事务中，结束后提交并关闭；
// 会话已打开时复用现有句柄与事务，不改变状态。所有公开操作串行执行。
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sqlbean/config"
	"sqlbean/data/db"
	"sqlbean/data/db/basic"
	"sqlbean/data/orm"
	"sqlbean/errors"
	"sqlbean/logging"
)

// State 会话状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateInTransaction
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateInTransaction:
		return "open+tx"
	default:
		return "closed"
	}
}

// Session 数据库会话
type Session struct {
	mu sync.Mutex

	id         string
	provider   db.IProvider
	mapper     *orm.Mapper
	marshaller *orm.Marshaller
	logger     logging.Logger

	handle     *sqlx.DB
	tx         *sqlx.Tx
	mode       db.OpenMode
	autoOpened bool

	autoCommit      bool
	enforceIdentity bool

	// 当前事务中新建的表，回滚时清除其"表已确认"标记
	created []*orm.EntityMapping
}

// New 创建会话，初始状态为 CLOSED
func New(provider db.IProvider, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		provider:   provider,
		autoCommit: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetLogger()
	}
	s.logger = s.logger.WithFields(
		logging.Component("orm.session"),
		logging.String("session", s.id),
	)
	if s.mapper == nil {
		s.mapper = orm.NewMapper(orm.WithMapperLogger(s.logger))
	}
	s.marshaller = orm.NewMarshaller(s.logger)
	return s
}

// FromConfig 由配置创建提供者与会话
func FromConfig(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := basic.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithAutoCommit(cfg.Session.AutoCommit),
		WithEnforceIdentity(cfg.Session.EnforceIdentity),
	}
	return New(provider, append(base, opts...)...), nil
}

// ID 会话标识，出现在该会话的所有日志中
func (s *Session) ID() string { return s.id }

// Mapper 返回会话使用的映射器
func (s *Session) Mapper() *orm.Mapper { return s.mapper }

// State 当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.tx != nil:
		return StateInTransaction
	case s.handle != nil:
		return StateOpen
	default:
		return StateClosed
	}
}

// InTransaction 是否有进行中的事务
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// Mode 当前句柄的打开模式，关闭时为 db.ModeNone
func (s *Session) Mode() db.OpenMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// AutoCommit 关闭时是否提交未结束的事务
func (s *Session) AutoCommit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoCommit
}

// SetAutoCommit 修改关闭时的事务处理方式
func (s *Session) SetAutoCommit(autoCommit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoCommit = autoCommit
}

// Open CLOSED → OPEN；已打开时不做任何事
func (s *Session) Open(ctx context.Context, mode db.OpenMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		return nil
	}
	return s.openLocked(ctx, mode)
}

// Close 任意状态 → CLOSED。
// 有进行中的事务时先尽力提交（autoCommit=false 时回滚），再释放句柄。
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil
	}

	var first error
	if s.tx != nil {
		if s.autoCommit {
			first = s.commitLocked(ctx)
		} else {
			first = s.rollbackLocked(ctx)
		}
	}
	if err := s.closeLocked(ctx); err != nil && first == nil {
		first = err
	}
	return first
}

// Begin OPEN → OPEN+TX。
// 会话关闭时以写模式自动打开，并在 End/Rollback 时自动关闭；已在事务中时不做任何事。
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return nil
	}
	if s.handle == nil {
		if err := s.openLocked(ctx, db.ModeWrite); err != nil {
			return err
		}
		s.autoOpened = true
	}

	tx, err := s.handle.BeginTxx(ctx, nil)
	if err != nil {
		if s.autoOpened {
			_ = s.closeLocked(ctx)
		}
		return errors.WrapDatabaseError(ctx, err, "begin")
	}
	s.tx = tx
	s.logger.Debug(ctx, "transaction started", logging.Bool("auto_opened", s.autoOpened))
	return nil
}

// End 提交事务 OPEN+TX → OPEN；由 Begin 自动打开的句柄随之关闭
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return nil
	}
	err := s.commitLocked(ctx)
	if s.autoOpened {
		if cerr := s.closeLocked(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Rollback 放弃事务 OPEN+TX → OPEN；由 Begin 自动打开的句柄随之关闭
func (s *Session) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return nil
	}
	err := s.rollbackLocked(ctx)
	if s.autoOpened {
		if cerr := s.closeLocked(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Session) openLocked(ctx context.Context, mode db.OpenMode) error {
	h, err := db.Open(ctx, s.provider, mode)
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, "open", logging.String("mode", mode.String()))
	}
	s.handle = h
	s.mode = mode
	s.logger.Debug(ctx, "session opened", logging.String("mode", mode.String()))
	return nil
}

func (s *Session) closeLocked(ctx context.Context) error {
	if s.tx != nil {
		// 调用方已处理事务，这里只兜底释放
		_ = s.tx.Rollback()
		s.discardCreated()
		s.tx = nil
	}
	err := s.handle.Close()
	s.handle = nil
	s.mode = db.ModeNone
	s.autoOpened = false
	s.logger.Debug(ctx, "session closed")
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, "close")
	}
	return nil
}

// commitLocked 提交并清除事务，失败时事务同样结束
func (s *Session) commitLocked(ctx context.Context) error {
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		s.discardCreated()
		return errors.WrapDatabaseError(ctx, err, "commit")
	}
	s.created = nil
	s.logger.Debug(ctx, "transaction committed")
	return nil
}

func (s *Session) rollbackLocked(ctx context.Context) error {
	err := s.tx.Rollback()
	s.tx = nil
	s.discardCreated()
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, "rollback")
	}
	s.logger.Debug(ctx, "transaction rolled back")
	return nil
}

func (s *Session) discardCreated() {
	for _, em := range s.created {
		em.ResetTableVerified()
	}
	s.created = nil
}

// executor 事务中返回事务，否则返回句柄
func (s *Session) executor() db.IExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.handle
}

// run 自动打开/关闭的执行框架。
//
// 会话已打开时直接复用当前执行器；否则按 mode 打开，写模式在隐式事务中执行，
// fn 成功则提交、失败则回滚，最后关闭句柄。调用方必须持有 s.mu。
func (s *Session) run(ctx context.Context, mode db.OpenMode, fn func(exec db.IExecutor) error) (rerr error) {
	if s.handle != nil {
		return fn(s.executor())
	}

	if err := s.openLocked(ctx, mode); err != nil {
		return err
	}
	defer func() {
		if err := s.closeLocked(ctx); err != nil && rerr == nil {
			rerr = err
		}
	}()

	if mode != db.ModeWrite {
		return fn(s.handle)
	}

	tx, err := s.handle.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, "begin")
	}
	s.tx = tx
	if err := fn(tx); err != nil {
		if rbErr := s.rollbackLocked(ctx); rbErr != nil {
			s.logger.Warn(ctx, "implicit rollback failed", logging.Error(rbErr))
		}
		return err
	}
	return s.commitLocked(ctx)
}
