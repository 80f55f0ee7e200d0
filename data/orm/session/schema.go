package session

import (
	"context"
	"reflect"
	"strings"

	"sqlbean/data/db"
	"sqlbean/data/orm"
	"sqlbean/errors"
	"sqlbean/logging"
)

// EnsureTable 表不存在时按映射建表
func (s *Session) EnsureTable(ctx context.Context, t reflect.Type) error {
	em, err := s.mapper.MapType(t)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, db.ModeWrite, func(exec db.IExecutor) error {
		return s.ensureTable(ctx, exec, em)
	})
}

// ensureTable 每个映射只检查一次；在事务中建的表记录下来，回滚时撤销标记
func (s *Session) ensureTable(ctx context.Context, exec db.IExecutor, em *orm.EntityMapping) error {
	if em.TableVerified() {
		return nil
	}
	exists, err := tableExists(ctx, exec, em.Table)
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, "schema", logging.String("table", em.Table))
	}
	if !exists {
		ddl := em.CreateTableStatement()
		if _, err := exec.ExecContext(ctx, ddl); err != nil {
			return errors.WrapDatabaseError(ctx, err, "create table", logging.String("table", em.Table))
		}
		s.logger.Info(ctx, "table created", logging.String("table", em.Table))
		s.logger.Debug(ctx, "create table statement", logging.String("ddl", ddl))
		if s.tx != nil {
			s.created = append(s.created, em)
		}
	}
	em.MarkTableVerified()
	return nil
}

// tableReady 读路径使用：已确认的表直接返回 true，否则查询 sqlite_master，不建表
func tableReady(ctx context.Context, exec db.IExecutor, em *orm.EntityMapping) (bool, error) {
	if em.TableVerified() {
		return true, nil
	}
	return tableExists(ctx, exec, em.Table)
}

func tableExists(ctx context.Context, exec db.IExecutor, table string) (bool, error) {
	master := "sqlite_master"
	if schema, name, ok := strings.Cut(table, "."); ok {
		master = schema + ".sqlite_master"
		table = name
	}
	var n int
	err := exec.QueryRowxContext(ctx,
		exec.Rebind("SELECT COUNT(*) FROM "+master+" WHERE type = 'table' AND name = ?"), table,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
