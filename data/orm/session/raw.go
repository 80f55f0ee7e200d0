package session

import (
	"context"
	"time"

	"sqlbean/data/db"
	"sqlbean/data/orm"
	"sqlbean/errors"
	"sqlbean/logging"
)

// ExecuteUpdate 执行任意语句，不经过映射；返回受影响行数
func (s *Session) ExecuteUpdate(ctx context.Context, query string, args ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	start := time.Now()
	err := s.run(ctx, db.ModeWrite, func(exec db.IExecutor) error {
		res, err := exec.ExecContext(ctx, exec.Rebind(query), args...)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "execute", logging.String("sql", query))
		}
		affected = s.rowsAffected(ctx, res, "execute", "")
		return nil
	})
	if err == nil {
		s.logger.Debug(ctx, "statement executed",
			logging.String("sql", query),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
	return affected, err
}

// RawQuery 执行任意查询，每个单元格以文本返回，nil 表示 NULL
func (s *Session) RawQuery(ctx context.Context, query string, args ...any) ([][]*string, error) {
	_, rows, err := s.RawQueryColumns(ctx, query, args...)
	return rows, err
}

// RawQueryColumns 与 RawQuery 相同，同时返回列名
func (s *Session) RawQueryColumns(ctx context.Context, query string, args ...any) ([]string, [][]*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		columns []string
		out     [][]*string
	)
	err := s.run(ctx, db.ModeRead, func(exec db.IExecutor) error {
		rows, err := exec.QueryxContext(ctx, exec.Rebind(query), args...)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "raw query", logging.String("sql", query))
		}
		defer rows.Close()

		if columns, err = rows.Columns(); err != nil {
			return errors.WrapDatabaseError(ctx, err, "raw query", logging.String("sql", query))
		}
		for rows.Next() {
			cells, err := rows.SliceScan()
			if err != nil {
				return errors.WrapDatabaseError(ctx, err, "raw query", logging.String("sql", query))
			}
			line := make([]*string, len(cells))
			for i, c := range cells {
				if text, ok := orm.CellText(c); ok {
					line[i] = &text
				}
			}
			out = append(out, line)
		}
		if err := rows.Err(); err != nil {
			return errors.WrapDatabaseError(ctx, err, "raw query", logging.String("sql", query))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return columns, out, nil
}
