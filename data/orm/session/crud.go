package session

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"sqlbean/data/db"
	dbsql "sqlbean/data/db/sql"
	"sqlbean/data/orm"
	"sqlbean/errors"
	"sqlbean/logging"
)

// Insert 插入 bean，返回数据库分配的 rowid。
//
// 首次写入某类型时自动建表；reuse 标识列不写入，由数据库生成。
// bean 为指针时，插入后按 rowid 回读整行刷新 bean（生成的标识、列默认值）。
func (s *Session) Insert(ctx context.Context, bean any) (int64, error) {
	em, err := s.mapper.Map(bean)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rowID int64
	err = s.run(ctx, db.ModeWrite, func(exec db.IExecutor) error {
		if err := s.ensureTable(ctx, exec, em); err != nil {
			return err
		}
		vals, err := s.marshaller.BeanToValues(ctx, em, bean)
		if err != nil {
			return err
		}

		if idCol := em.Identity; idCol != nil {
			switch {
			case idCol.Identity.Reuse:
				vals = vals.Without(idCol.Column)
			case s.enforceIdentity && idCol.Identity.Enforce:
				if err := s.checkDuplicate(ctx, exec, em, vals); err != nil {
					return err
				}
			}
		}

		res, err := dbsql.InsertInto(exec, em.Table).
			Columns(vals.Columns()...).
			Values(vals.Args()...).
			Exec(ctx)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "insert", logging.String("table", em.Table))
		}
		rowID, err = res.LastInsertId()
		if err != nil {
			s.logger.Debug(ctx, "insert id unavailable", logging.String("table", em.Table), logging.Error(err))
			return nil
		}
		s.logger.Debug(ctx, "row inserted", logging.String("table", em.Table), logging.Int64("rowid", rowID))
		s.refresh(ctx, exec, em, bean, rowID)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rowID, nil
}

func (s *Session) checkDuplicate(ctx context.Context, exec db.IExecutor, em *orm.EntityMapping, vals orm.Values) error {
	id, ok := vals.Get(em.Identity.Column)
	if !ok || id == nil {
		return nil
	}
	var n int
	q := "SELECT COUNT(*) FROM " + em.Table + " WHERE " + em.Identity.Column + " = ?"
	if err := exec.QueryRowxContext(ctx, exec.Rebind(q), id).Scan(&n); err != nil {
		return errors.WrapDatabaseError(ctx, err, "insert", logging.String("table", em.Table))
	}
	if n > 0 {
		s.logger.Debug(ctx, "duplicate identity rejected", logging.String("table", em.Table), logging.Any("id", id))
		return orm.NewDuplicateKeyError(em.Table, id)
	}
	return nil
}

// refresh 按 rowid 回读刚插入的行；失败只记录日志
func (s *Session) refresh(ctx context.Context, exec db.IExecutor, em *orm.EntityMapping, bean any, rowID int64) {
	if v := reflect.ValueOf(bean); v.Kind() != reflect.Ptr {
		return
	}
	rows, err := dbsql.Select(exec, em.ColumnNames()...).
		From(em.Table).
		Where("rowid = ?", rowID).
		Query(ctx)
	if err != nil {
		s.logger.Warn(ctx, "refresh after insert failed", logging.String("table", em.Table), logging.Error(err))
		return
	}
	defer rows.Close()

	if !rows.Next() {
		return
	}
	row, err := scanRow(rows)
	if err == nil {
		err = s.marshaller.FillBean(ctx, row, em, bean)
	}
	if err != nil {
		s.logger.Warn(ctx, "refresh after insert failed", logging.String("table", em.Table), logging.Error(err))
	}
}

// Update 按标识列更新 bean，没有标识列时返回映射错误且不执行任何写入
func (s *Session) Update(ctx context.Context, bean any) (int64, error) {
	em, where, id, err := s.identityCriteria(bean)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, em, bean, where, []any{id})
}

// UpdateWhere 按条件更新，where 中可以使用属性名；返回受影响行数
func (s *Session) UpdateWhere(ctx context.Context, bean any, where string, args ...any) (int64, error) {
	em, err := s.mapper.Map(bean)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, em, bean, em.ForwardMapColumnNames(where), args)
}

func (s *Session) updateLocked(ctx context.Context, em *orm.EntityMapping, bean any, where string, args []any) (int64, error) {
	vals, err := s.marshaller.BeanToValues(ctx, em, bean)
	if err != nil {
		return 0, err
	}
	if idCol := em.Identity; idCol != nil && idCol.Identity.Reuse {
		// 数据库生成的标识不随更新改写
		vals = vals.Without(idCol.Column)
	}
	if len(vals) == 0 {
		return 0, nil
	}

	var affected int64
	err = s.run(ctx, db.ModeWrite, func(exec db.IExecutor) error {
		ok, err := tableReady(ctx, exec, em)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "update", logging.String("table", em.Table))
		}
		if !ok {
			return nil
		}
		b := dbsql.Update(exec, em.Table)
		for _, v := range vals {
			b.Set(v.Column, v.Value)
		}
		res, err := b.Where(where, args...).Exec(ctx)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "update", logging.String("table", em.Table))
		}
		affected = s.rowsAffected(ctx, res, "update", em.Table)
		return nil
	})
	return affected, err
}

// Delete 按标识列删除 bean 对应的行
func (s *Session) Delete(ctx context.Context, bean any) (int64, error) {
	em, where, id, err := s.identityCriteria(bean)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(ctx, em, where, []any{id})
}

// DeleteWhere 按条件删除 bean 类型对应表中的行；where 为空时删除全部
func (s *Session) DeleteWhere(ctx context.Context, bean any, where string, args ...any) (int64, error) {
	em, err := s.mapper.Map(bean)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(ctx, em, em.ForwardMapColumnNames(where), args)
}

func (s *Session) deleteLocked(ctx context.Context, em *orm.EntityMapping, where string, args []any) (int64, error) {
	var affected int64
	err := s.run(ctx, db.ModeWrite, func(exec db.IExecutor) error {
		ok, err := tableReady(ctx, exec, em)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "delete", logging.String("table", em.Table))
		}
		if !ok {
			return nil
		}
		res, err := dbsql.DeleteFrom(exec, em.Table).Where(where, args...).Exec(ctx)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "delete", logging.String("table", em.Table))
		}
		affected = s.rowsAffected(ctx, res, "delete", em.Table)
		return nil
	})
	return affected, err
}

// rowsAffected 读取受影响行数；驱动不支持时记录日志并按 0 处理
func (s *Session) rowsAffected(ctx context.Context, res sql.Result, operation, table string) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		s.logger.Debug(ctx, "rows affected unavailable",
			logging.String("operation", operation),
			logging.String("table", table),
			logging.Error(err),
		)
		return 0
	}
	s.logger.Debug(ctx, "statement applied",
		logging.String("operation", operation),
		logging.String("table", table),
		logging.Int64("rows", n),
	)
	return n
}

// identityCriteria 返回 "<标识列> = ?" 条件与 bean 的标识值
func (s *Session) identityCriteria(bean any) (*orm.EntityMapping, string, any, error) {
	em, err := s.mapper.Map(bean)
	if err != nil {
		return nil, "", nil, err
	}
	if em.Identity == nil {
		return nil, "", nil, orm.NewMappingError(fmt.Sprintf("%s has no identity column", em.Type))
	}
	id, err := em.IdentityValue(bean)
	if err != nil {
		return nil, "", nil, err
	}
	return em, em.Identity.Column + " = ?", id, nil
}
