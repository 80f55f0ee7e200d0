package repo

import (
	"context"

	"sqlbean/logging"
)

// Add 新增，生成的标识回写到 entity
func (r *Repo[T]) Add(ctx context.Context, entity *T) error {
	_, err := r.session.Insert(ctx, entity)
	return err
}

// Update 按标识更新，返回是否命中
func (r *Repo[T]) Update(ctx context.Context, entity *T) (bool, error) {
	n, err := r.session.Update(ctx, entity)
	return n > 0, err
}

// Delete 按标识删除，返回是否命中
func (r *Repo[T]) Delete(ctx context.Context, entity *T) (bool, error) {
	n, err := r.session.Delete(ctx, entity)
	return n > 0, err
}

// AddAll 批量新增。
// 会话没有进行中的事务时在一个事务内完成，任一失败整体回滚；否则并入调用方的事务。
func (r *Repo[T]) AddAll(ctx context.Context, entities []*T) (err error) {
	if len(entities) == 0 {
		return nil
	}
	if r.session.InTransaction() {
		return r.addEach(ctx, entities)
	}

	if err := r.session.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := r.session.Rollback(ctx); rbErr != nil {
			logging.GetLogger().Warn(ctx, "batch rollback failed",
				logging.Component("orm.repo"),
				logging.String("table", r.mapping.Table),
				logging.Error(rbErr),
			)
		}
	}()

	if err := r.addEach(ctx, entities); err != nil {
		return err
	}
	return r.session.End(ctx)
}

func (r *Repo[T]) addEach(ctx context.Context, entities []*T) error {
	for _, e := range entities {
		if _, err := r.session.Insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// DeleteWhere 按条件删除，where 中使用属性名
func (r *Repo[T]) DeleteWhere(ctx context.Context, where string, args ...any) (int64, error) {
	return r.session.DeleteWhere(ctx, new(T), where, args...)
}
