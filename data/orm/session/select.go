package session

import (
	"context"
	"reflect"

	"github.com/jmoiron/sqlx"

	"sqlbean/data/db"
	dbsql "sqlbean/data/db/sql"
	"sqlbean/data/orm"
	"sqlbean/errors"
	"sqlbean/logging"
)

// RowOutcome 单行读取结果：Err 非 nil 时该行被跳过
type RowOutcome struct {
	Bean any
	Err  error
}

// Select 规范化查询：列顺序与映射一致，Where/GroupBy/Having/OrderBy 中的属性名逐个改写为列名。
// 返回 *T 切片（以 any 承载）；无法读取的行记录日志后跳过；表从未创建时返回空结果。
func (s *Session) Select(ctx context.Context, t reflect.Type, q orm.Query) ([]any, error) {
	outcomes, err := s.SelectOutcomes(ctx, t, q)
	if err != nil {
		return nil, err
	}
	beans := make([]any, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			s.logger.Warn(ctx, "row skipped", logging.String("type", t.String()), logging.Error(o.Err))
			continue
		}
		beans = append(beans, o.Bean)
	}
	return beans, nil
}

// SelectOutcomes 与 Select 相同，但保留每一行的读取结果，由调用方决定如何处理失败行
func (s *Session) SelectOutcomes(ctx context.Context, t reflect.Type, q orm.Query) ([]RowOutcome, error) {
	em, err := s.mapper.MapType(t)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(ctx, em, q.Forward(em))
}

// selectLocked 执行已改写为列名的查询
func (s *Session) selectLocked(ctx context.Context, em *orm.EntityMapping, q orm.Query) ([]RowOutcome, error) {
	var outcomes []RowOutcome
	err := s.run(ctx, db.ModeRead, func(exec db.IExecutor) error {
		ok, err := tableReady(ctx, exec, em)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "select", logging.String("table", em.Table))
		}
		if !ok {
			return nil
		}

		rows, err := dbsql.Select(exec, em.ColumnNames()...).
			Distinct(q.Distinct).
			From(em.Table).
			Where(q.Where, q.Args...).
			GroupBy(q.GroupBy).
			Having(q.Having).
			OrderBy(q.OrderBy).
			Limit(q.Limit).
			Query(ctx)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "select", logging.String("table", em.Table))
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scanRow(rows)
			if err != nil {
				outcomes = append(outcomes, RowOutcome{Err: errors.Wrap(ctx, err, errors.ErrCodeDatabase, "scan row")})
				continue
			}
			bean, err := s.marshaller.ValuesToBean(ctx, row, em)
			outcomes = append(outcomes, RowOutcome{Bean: bean, Err: err})
		}
		if err := rows.Err(); err != nil {
			return errors.WrapDatabaseError(ctx, err, "select", logging.String("table", em.Table))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

func scanRow(rows *sqlx.Rows) (*orm.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	cells, err := rows.SliceScan()
	if err != nil {
		return nil, err
	}
	return orm.NewRow(cols, cells), nil
}

// Find 按选项查询 T，选项中的片段可以使用属性名
func Find[T any](ctx context.Context, s *Session, opts ...orm.QueryOption) ([]*T, error) {
	beans, err := s.Select(ctx, typeOf[T](), orm.BuildQuery(opts...))
	if err != nil {
		return nil, err
	}
	return typed[T](beans), nil
}

// FindDistinct 去重查询
func FindDistinct[T any](ctx context.Context, s *Session, opts ...orm.QueryOption) ([]*T, error) {
	return Find[T](ctx, s, append([]orm.QueryOption{orm.WithDistinct()}, opts...)...)
}

// FindByID 按标识列查询单个 T，未命中时返回 NOT_FOUND 错误
func FindByID[T any](ctx context.Context, s *Session, id any) (*T, error) {
	em, err := s.mapper.MapType(typeOf[T]())
	if err != nil {
		return nil, err
	}
	if em.Identity == nil {
		return nil, orm.NewMappingError(em.Type.String() + " has no identity column")
	}

	s.mu.Lock()
	outcomes, err := s.selectLocked(ctx, em, orm.Query{
		Where: em.Identity.Column + " = ?",
		Args:  []any{id},
		Limit: "1",
	})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		if o.Err == nil {
			return o.Bean.(*T), nil
		}
		s.logger.Warn(ctx, "row skipped", logging.String("table", em.Table), logging.Error(o.Err))
	}
	return nil, orm.NewNotFoundError(em.Table, id)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func typed[T any](beans []any) []*T {
	out := make([]*T, 0, len(beans))
	for _, b := range beans {
		if v, ok := b.(*T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Count 统计满足条件的行数，where 中可以使用属性名；表不存在时返回 0
func (s *Session) Count(ctx context.Context, t reflect.Type, where string, args ...any) (int64, error) {
	em, err := s.mapper.MapType(t)
	if err != nil {
		return 0, err
	}
	where = em.ForwardMapColumnNames(where)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err = s.run(ctx, db.ModeRead, func(exec db.IExecutor) error {
		ok, err := tableReady(ctx, exec, em)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "count", logging.String("table", em.Table))
		}
		if !ok {
			return nil
		}
		q := "SELECT COUNT(*) FROM " + em.Table
		if where != "" {
			q += " WHERE " + where
		}
		if err := exec.QueryRowxContext(ctx, exec.Rebind(q), args...).Scan(&n); err != nil {
			return errors.WrapDatabaseError(ctx, err, "count", logging.String("table", em.Table))
		}
		return nil
	})
	return n, err
}
